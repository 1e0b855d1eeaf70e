package analysis

import (
	"fmt"
	"strings"
)

// 信号层RSI/布林判定阈值（TAV评分层的阈值由资产画像单独配置）
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// SignalKind 信号方向
type SignalKind string

const (
	SignalBuy  SignalKind = "buy"
	SignalSell SignalKind = "sell"
)

// SignalEvent 单根K线上触发的信号事件。
// 同一根K线允许买卖信号并存：这是刻意保留的行为而非互斥裁决，
// 消费方需要自行决定如何处置同日双向信号。
type SignalEvent struct {
	Index   int         `json:"index"`
	Date    string      `json:"date"`
	Kind    SignalKind  `json:"kind"`
	Reasons []string    `json:"reasons"`
	Tier    ConfirmTier `json:"-"`
	TierStr string      `json:"confirmed_tier"`
}

// SignalResult 信号序列：逐K线的买卖标记、理由串以及事件列表
type SignalResult struct {
	Buy         []bool
	Sell        []bool
	BuyReasons  []string
	SellReasons []string
	Events      []SignalEvent
}

// DetectSignals 对指标序列做一次前向遍历，识别穿越类事件并做量能确认。
// 索引0不参与判定（所有穿越检测都需要前一根K线）；
// 信号只在状态翻转的那一根K线上触发，持续状态不重复触发。
func DetectSignals(f *IndicatorFrame, vs *VolumeSignals) *SignalResult {
	n := f.Len()
	res := &SignalResult{
		Buy:         make([]bool, n),
		Sell:        make([]bool, n),
		BuyReasons:  make([]string, n),
		SellReasons: make([]string, n),
	}

	for i := 1; i < n; i++ {
		ratio := vs.Ratio[i]
		tier := TierForRatio(ratio)

		var buyReasons, sellReasons []string
		buyTier, sellTier := TierNone, TierNone

		record := func(kind SignalKind, label string, t ConfirmTier) {
			tagged := fmt.Sprintf("%s(量能确认:%s)", label, t.Label())
			if kind == SignalBuy {
				buyReasons = append(buyReasons, tagged)
				if t > buyTier {
					buyTier = t
				}
			} else {
				sellReasons = append(sellReasons, tagged)
				if t > sellTier {
					sellTier = t
				}
			}
		}

		// 均线交叉：趋势信号的量能闸门刻意放宽
		trendGate := tier >= TierWeak || vs.VolumeTrendUp[i] || (Valid(ratio) && ratio > 0.9)
		if freshAbove(f.MA20, f.MA50, i) && trendGate {
			record(SignalBuy, "MA20上穿MA50", tier)
		}
		if freshBelow(f.MA20, f.MA50, i) && trendGate {
			record(SignalSell, "MA20下穿MA50", tier)
		}

		// MACD交叉
		macdGate := tier >= TierWeak || vs.VolumeTrendUp[i]
		if freshAbove(f.MACD, f.MACDSignal, i) && macdGate {
			record(SignalBuy, "MACD金叉", tier)
		}
		if freshBelow(f.MACD, f.MACDSignal, i) && macdGate {
			record(SignalSell, "MACD死叉", tier)
		}

		// RSI离开极值区：出区那一根触发
		if Valid(f.RSI[i]) && Valid(f.RSI[i-1]) {
			if f.RSI[i-1] < rsiOversold && f.RSI[i] >= rsiOversold && tier >= TierWeak {
				record(SignalBuy, "RSI脱离超卖区", tier)
			}
			if f.RSI[i-1] > rsiOverbought && f.RSI[i] <= rsiOverbought && tier >= TierWeak {
				record(SignalSell, "RSI脱离超买区", tier)
			}
		}

		// 布林带回归：要求中等及以上量能
		if Valid(f.BollLower[i]) && Valid(f.BollLower[i-1]) {
			c, p := f.Bars[i].Close, f.Bars[i-1].Close
			if p < f.BollLower[i-1] && c >= f.BollLower[i] && tier >= TierMedium {
				record(SignalBuy, "下轨回归", tier)
			}
			if p > f.BollUpper[i-1] && c <= f.BollUpper[i] && tier >= TierMedium {
				record(SignalSell, "上轨回落", tier)
			}
		}

		// 量价共振：形态本身已含量比门槛
		if f.Bars[i].Close > f.Bars[i-1].Close && vs.BullishPattern(i) {
			label := "量价齐升"
			if vs.ReversalBullish[i] {
				label = "放量反转上涨"
			}
			record(SignalBuy, label, tier)
		}
		if f.Bars[i].Close < f.Bars[i-1].Close && vs.BearishPattern(i) {
			label := "量价齐跌"
			if vs.ReversalBearish[i] {
				label = "放量反转下跌"
			}
			record(SignalSell, label, tier)
		}

		if len(buyReasons) > 0 {
			res.Buy[i] = true
			res.BuyReasons[i] = strings.Join(buyReasons, "；")
			res.Events = append(res.Events, SignalEvent{
				Index:   i,
				Date:    f.Bars[i].Date,
				Kind:    SignalBuy,
				Reasons: buyReasons,
				Tier:    buyTier,
				TierStr: buyTier.String(),
			})
		}
		if len(sellReasons) > 0 {
			res.Sell[i] = true
			res.SellReasons[i] = strings.Join(sellReasons, "；")
			res.Events = append(res.Events, SignalEvent{
				Index:   i,
				Date:    f.Bars[i].Date,
				Kind:    SignalSell,
				Reasons: sellReasons,
				Tier:    sellTier,
				TierStr: sellTier.String(),
			})
		}
	}
	return res
}

// freshAbove a在i处刚刚上穿b：本根a>b成立且上一根不成立
func freshAbove(a, b []float64, i int) bool {
	if !Valid(a[i]) || !Valid(b[i]) || !Valid(a[i-1]) || !Valid(b[i-1]) {
		return false
	}
	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// freshBelow a在i处刚刚下穿b
func freshBelow(a, b []float64, i int) bool {
	if !Valid(a[i]) || !Valid(b[i]) || !Valid(a[i-1]) || !Valid(b[i-1]) {
		return false
	}
	return a[i] < b[i] && a[i-1] >= b[i-1]
}
