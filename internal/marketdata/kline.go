package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"hk-quant-toolkit/internal/model"
)

// HTTPClient HTTP客户端
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// KlineCacheTTL K线缓存时长，日线盘后数据变化慢
var KlineCacheTTL = 30 * time.Minute

const defaultBars = 320

var hkCodePattern = regexp.MustCompile(`^\d{1,5}$`)

// NormalizeCode 港股代码规整为5位数字形式，如 700 -> 00700
func NormalizeCode(code string) (string, error) {
	c := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(code), "hk"))
	if !hkCodePattern.MatchString(c) {
		return "", fmt.Errorf("非法的港股代码: %q", code)
	}
	for len(c) < 5 {
		c = "0" + c
	}
	return c, nil
}

// GetKline 获取港股前复权日K线。
// 先走腾讯接口，失败或空数据时回退东方财富；结果缓存。
func GetKline(ctx context.Context, code string) (*model.KlineResponse, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	cacheKey := "kline:hk:" + normalized
	var cached model.KlineResponse
	if err := getCacheProvider().Get(cacheKey, &cached); err == nil && len(cached.Data) > 0 {
		return &cached, nil
	}

	bars, name, err := fetchWithRetry(ctx, func() ([]model.KlineBar, string, error) {
		return getKlineFromTencent(ctx, "hk"+normalized)
	})
	if err != nil || len(bars) == 0 {
		log.Printf("腾讯K线获取失败(%s)，回退东方财富: %v", normalized, err)
		bars, name, err = fetchWithRetry(ctx, func() ([]model.KlineBar, string, error) {
			return getKlineFromEM(ctx, "116."+normalized)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("获取K线数据失败: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("获取K线数据失败: 无数据")
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("K线数据校验失败: %w", err)
	}

	resp := &model.KlineResponse{
		Code:   normalized,
		Name:   name,
		Period: "daily",
		Data:   bars,
	}
	if err := getCacheProvider().Set(cacheKey, resp, KlineCacheTTL); err != nil {
		log.Printf("写入K线缓存失败(%s): %v", normalized, err)
	}
	return resp, nil
}

// GetIndexKline 获取基准指数日K线，symbol如 HSI/HSCEI/HSTECH
func GetIndexKline(ctx context.Context, symbol string) ([]model.KlineBar, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		s = "HSI"
	}

	cacheKey := "kline:index:" + s
	var cached []model.KlineBar
	if err := getCacheProvider().Get(cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	bars, _, err := fetchWithRetry(ctx, func() ([]model.KlineBar, string, error) {
		return getKlineFromTencent(ctx, "hk"+s)
	})
	if err != nil || len(bars) == 0 {
		log.Printf("腾讯指数K线获取失败(%s)，回退东方财富: %v", s, err)
		bars, _, err = fetchWithRetry(ctx, func() ([]model.KlineBar, string, error) {
			return getKlineFromEM(ctx, "100."+s)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("获取指数K线失败: %w", err)
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("指数K线校验失败: %w", err)
	}

	if err := getCacheProvider().Set(cacheKey, bars, KlineCacheTTL); err != nil {
		log.Printf("写入指数K线缓存失败(%s): %v", s, err)
	}
	return bars, nil
}

// fetchWithRetry 指数退避重试，上限3次
func fetchWithRetry(ctx context.Context, fn func() ([]model.KlineBar, string, error)) ([]model.KlineBar, string, error) {
	var bars []model.KlineBar
	var name string
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	err := backoff.Retry(func() error {
		var err error
		bars, name, err = fn()
		return err
	}, policy)
	return bars, name, err
}

// getKlineFromTencent 腾讯港股前复权K线。
// 响应按请求符号做动态键嵌套，复权序列在qfqday，指数在day。
func getKlineFromTencent(ctx context.Context, symbol string) ([]model.KlineBar, string, error) {
	url := fmt.Sprintf("https://web.ifzq.gtimg.cn/appstock/app/hkfqkline/get?param=%s,day,,,%d,qfq",
		symbol, defaultBars)

	body, err := doGet(ctx, url, "https://gu.qq.com")
	if err != nil {
		return nil, "", err
	}

	var outer struct {
		Code int                        `json:"code"`
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, "", fmt.Errorf("响应格式错误: %w", err)
	}
	if outer.Code != 0 {
		return nil, "", fmt.Errorf("接口返回码 %d", outer.Code)
	}
	raw, ok := outer.Data[symbol]
	if !ok {
		return nil, "", fmt.Errorf("响应缺少 %s 数据", symbol)
	}

	var inner struct {
		QfqDay [][]string          `json:"qfqday"`
		Day    [][]string          `json:"day"`
		Qt     map[string][]string `json:"qt"`
	}
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, "", fmt.Errorf("K线数据格式错误: %w", err)
	}
	rows := inner.QfqDay
	if len(rows) == 0 {
		rows = inner.Day
	}

	var bars []model.KlineBar
	for _, row := range rows {
		// 行结构: 日期,开,收,高,低,量
		if len(row) < 6 {
			continue
		}
		open, _ := strconv.ParseFloat(row[1], 64)
		closePrice, _ := strconv.ParseFloat(row[2], 64)
		high, _ := strconv.ParseFloat(row[3], 64)
		low, _ := strconv.ParseFloat(row[4], 64)
		volume, _ := strconv.ParseFloat(row[5], 64)
		bars = append(bars, model.KlineBar{
			Date:   row[0],
			Open:   open,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
		})
	}

	name := ""
	if qt, ok := inner.Qt[symbol]; ok && len(qt) > 1 {
		name = qt[1]
	}
	return bars, name, nil
}

// getKlineFromEM 东方财富K线。港股secid前缀116，港股指数100。
func getKlineFromEM(ctx context.Context, secid string) ([]model.KlineBar, string, error) {
	url := fmt.Sprintf("https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=20500101&lmt=%d",
		secid, defaultBars)

	body, err := doGet(ctx, url, "https://quote.eastmoney.com")
	if err != nil {
		return nil, "", err
	}

	var emResp struct {
		Data struct {
			Name   string   `json:"name"`
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &emResp); err != nil {
		return nil, "", fmt.Errorf("响应格式错误: %w", err)
	}

	var bars []model.KlineBar
	for _, line := range emResp.Data.Klines {
		// 行结构: 日期,开,收,高,低,量,额
		parts := strings.Split(line, ",")
		if len(parts) < 7 {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		closePrice, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseFloat(parts[5], 64)
		amount, _ := strconv.ParseFloat(parts[6], 64)
		bars = append(bars, model.KlineBar{
			Date:   parts[0],
			Open:   open,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
			Amount: amount,
		})
	}
	return bars, emResp.Data.Name, nil
}

func doGet(ctx context.Context, url, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", referer)

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP状态码 %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
