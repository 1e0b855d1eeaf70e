package model

import "fmt"

// Stock 港股基本信息
type Stock struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"` // HK: 港股主板, IDX: 指数
}

// KlineBar 单根K线（一个交易日）
type KlineBar struct {
	Date   string  `json:"date"` // 格式 2006-01-02
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"` // 成交额，部分数据源缺失时为0
}

// KlineResponse K线响应
type KlineResponse struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Period string     `json:"period"`
	Data   []KlineBar `json:"data"`
}

// ValidateSeries 校验K线序列是否满足分析管线的前置约束：
// 日期严格递增且不重复、价格为正、low <= open,close <= high、成交量非负。
// 数据源层在序列进入分析前调用一次，分析核心不再重复校验。
func ValidateSeries(bars []KlineBar) error {
	prev := ""
	for i, b := range bars {
		if b.Date == "" {
			return fmt.Errorf("第%d根K线缺少日期", i)
		}
		if b.Date <= prev {
			return fmt.Errorf("K线日期非严格递增: %s (索引%d)", b.Date, i)
		}
		if b.Open <= 0 || b.Close <= 0 || b.High <= 0 || b.Low <= 0 {
			return fmt.Errorf("K线 %s 存在非正价格", b.Date)
		}
		if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
			return fmt.Errorf("K线 %s 价格越界: low=%.4f open=%.4f close=%.4f high=%.4f",
				b.Date, b.Low, b.Open, b.Close, b.High)
		}
		if b.Volume < 0 {
			return fmt.Errorf("K线 %s 成交量为负", b.Date)
		}
		prev = b.Date
	}
	return nil
}
