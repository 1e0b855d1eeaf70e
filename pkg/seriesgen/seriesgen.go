// Package seriesgen 生成确定性的合成K线序列，用于测试与离线实验。
// 日期从基准日起按自然日递增，保证严格递增且不重复。
package seriesgen

import (
	"time"

	"hk-quant-toolkit/internal/model"
)

var baseDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func dateAt(i int) string {
	return baseDate.AddDate(0, 0, i).Format("2006-01-02")
}

// Flat 生成价格与成交量完全走平的序列
func Flat(n int, price, volume float64) []model.KlineBar {
	bars := make([]model.KlineBar, n)
	for i := 0; i < n; i++ {
		bars[i] = model.KlineBar{
			Date: dateAt(i), Open: price, Close: price,
			High: price, Low: price, Volume: volume,
		}
	}
	return bars
}

// Trend 生成每日按step线性变动的序列。step为负时生成下跌序列，
// 价格下限保护在base的1%处避免出现非正价格。
func Trend(n int, base, step, volume float64) []model.KlineBar {
	bars := make([]model.KlineBar, n)
	price := base
	floor := base * 0.01
	for i := 0; i < n; i++ {
		open := price
		close := price + step
		if close < floor {
			close = floor
		}
		hi, lo := open, close
		if hi < lo {
			hi, lo = lo, hi
		}
		bars[i] = model.KlineBar{
			Date: dateAt(i), Open: open, Close: close,
			High: hi * 1.002, Low: lo * 0.998, Volume: volume,
		}
		price = close
	}
	return bars
}

// VShape 先跌后涨：前downBars根每日跌downStep，之后每日涨upStep
func VShape(downBars, upBars int, base, downStep, upStep, volume float64) []model.KlineBar {
	bars := make([]model.KlineBar, 0, downBars+upBars)
	price := base
	floor := base * 0.01
	for i := 0; i < downBars+upBars; i++ {
		step := -downStep
		if i >= downBars {
			step = upStep
		}
		open := price
		close := price + step
		if close < floor {
			close = floor
		}
		hi, lo := open, close
		if hi < lo {
			hi, lo = lo, hi
		}
		bars = append(bars, model.KlineBar{
			Date: dateAt(i), Open: open, Close: close,
			High: hi * 1.002, Low: lo * 0.998, Volume: volume,
		})
		price = close
	}
	return bars
}

// WithVolumeAt 返回副本并将索引idx处的成交量改为volume
func WithVolumeAt(bars []model.KlineBar, idx int, volume float64) []model.KlineBar {
	out := make([]model.KlineBar, len(bars))
	copy(out, bars)
	if idx >= 0 && idx < len(out) {
		out[idx].Volume = volume
	}
	return out
}

// WithCloseAt 返回副本并将索引idx处的收盘价改为close（同步修正高低价）
func WithCloseAt(bars []model.KlineBar, idx int, close float64) []model.KlineBar {
	out := make([]model.KlineBar, len(bars))
	copy(out, bars)
	if idx >= 0 && idx < len(out) {
		b := &out[idx]
		b.Close = close
		if close > b.High {
			b.High = close
		}
		if close < b.Low {
			b.Low = close
		}
	}
	return out
}
