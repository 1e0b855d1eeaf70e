package analysis

import (
	"math"

	"hk-quant-toolkit/internal/model"
)

// IndicatorFrame 指标序列集合。每一列与K线序列等长、按索引对齐，
// 预热期内的值为 NaN（表示"历史不足"，下游逻辑必须视为弃权而非0）。
// 所有列在 ComputeFrame 返回后不再被修改，后续阶段各自产出新的序列。
type IndicatorFrame struct {
	Bars []model.KlineBar

	// 移动平均
	MA5   []float64
	MA10  []float64
	MA20  []float64
	MA50  []float64
	MA100 []float64
	MA200 []float64

	// 震荡指标
	RSI    []float64
	StochK []float64
	StochD []float64
	CCI    []float64

	// MACD三件套
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	// 布林带
	BollUpper  []float64
	BollMiddle []float64
	BollLower  []float64
	BollPos    []float64 // (close-lower)/(upper-lower)，上下轨重合时为NaN

	// 波动与资金流
	ATR []float64
	OBV []float64
	CMF []float64

	// 量能
	VolumeMA20  []float64
	VolumeRatio []float64 // volume / volume_MA20
}

// Len 序列长度
func (f *IndicatorFrame) Len() int {
	return len(f.Bars)
}

// MA 按周期取对应均线列，未计算的周期返回nil
func (f *IndicatorFrame) MA(period int) []float64 {
	switch period {
	case 5:
		return f.MA5
	case 10:
		return f.MA10
	case 20:
		return f.MA20
	case 50:
		return f.MA50
	case 100:
		return f.MA100
	case 200:
		return f.MA200
	}
	return nil
}

// Valid 判断指标值是否有效（非NaN）
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// nanSlice 生成全NaN的序列
func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// clip 将v裁剪到[lo, hi]
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
