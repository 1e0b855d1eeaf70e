// Package calendar 港股交易日历：周末与公众假期休市。
// 内置假期表覆盖常用年份，可用JSON配置补充或覆盖。
package calendar

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu             sync.RWMutex
	customHolidays = make(map[string]bool)
)

// 港交所公众假期休市日。半日市按全日交易处理。
var builtinHolidays = map[string]bool{
	// 2025
	"2025-01-01": true, "2025-01-29": true, "2025-01-30": true, "2025-01-31": true,
	"2025-04-04": true, "2025-04-18": true, "2025-04-21": true, "2025-05-01": true,
	"2025-05-05": true, "2025-07-01": true, "2025-10-01": true, "2025-10-07": true,
	"2025-10-29": true, "2025-12-25": true, "2025-12-26": true,
	// 2026
	"2026-01-01": true, "2026-02-17": true, "2026-02-18": true, "2026-02-19": true,
	"2026-04-03": true, "2026-04-06": true, "2026-04-07": true, "2026-05-01": true,
	"2026-05-25": true, "2026-06-19": true, "2026-07-01": true, "2026-10-01": true,
	"2026-10-19": true, "2026-12-25": true,
}

// LoadCustomHolidays 从JSON文件加载自定义休市日配置
// 文件格式：{"holidays": ["2027-01-01", "2027-02-09", ...]}
func LoadCustomHolidays(filePath string) error {
	if filePath == "" {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // 文件不存在不算错误
		}
		return fmt.Errorf("读取休市日配置文件失败: %w", err)
	}

	var config struct {
		Holidays []string `json:"holidays"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("解析休市日配置文件失败: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, date := range config.Holidays {
		customHolidays[date] = true
	}

	log.Printf("[日历] 加载自定义休市日: %d个", len(config.Holidays))
	return nil
}

// IsTradingDay 判断是否为港股交易日：周六周日休市，公众假期休市
func IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}

	dateStr := date.Format("2006-01-02")
	if builtinHolidays[dateStr] {
		return false
	}

	mu.RLock()
	defer mu.RUnlock()
	return !customHolidays[dateStr]
}

// IsTradingDayNow 判断当前是否为交易日
func IsTradingDayNow() bool {
	return IsTradingDay(time.Now())
}

// IsTradingTimeNow 判断当前是否为港股连续交易时段（09:30-12:00, 13:00-16:00）
func IsTradingTimeNow() bool {
	now := time.Now()
	if !IsTradingDay(now) {
		return false
	}
	hhmm := now.Hour()*100 + now.Minute()
	morning := hhmm >= 930 && hhmm < 1200
	afternoon := hhmm >= 1300 && hhmm < 1600
	return morning || afternoon
}
