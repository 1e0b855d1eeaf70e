package analysis

// 量能分级阈值：量比相对20日均量
const (
	surgeWeakRatio   = 1.2
	surgeMediumRatio = 1.5
	surgeStrongRatio = 2.0
	shrinkRatio      = 0.8
)

// ConfirmTier 量能确认强度
type ConfirmTier int

const (
	TierNone ConfirmTier = iota
	TierWeak
	TierMedium
	TierStrong
)

// String 返回强度的接口表示
func (t ConfirmTier) String() string {
	switch t {
	case TierWeak:
		return "weak"
	case TierMedium:
		return "medium"
	case TierStrong:
		return "strong"
	}
	return "none"
}

// Label 返回强度的中文标注
func (t ConfirmTier) Label() string {
	switch t {
	case TierWeak:
		return "弱"
	case TierMedium:
		return "中"
	case TierStrong:
		return "强"
	}
	return "无"
}

// TierForRatio 按量比划分确认强度
func TierForRatio(ratio float64) ConfirmTier {
	switch {
	case !Valid(ratio):
		return TierNone
	case ratio > surgeStrongRatio:
		return TierStrong
	case ratio > surgeMediumRatio:
		return TierMedium
	case ratio > surgeWeakRatio:
		return TierWeak
	}
	return TierNone
}

// VolumeSignals 量能确认序列。布尔列与K线序列对齐；
// 量比无效（预热期）时所有布尔列为false，不向下游传播空值。
type VolumeSignals struct {
	Ratio []float64 // 与frame.VolumeRatio同一数据

	SurgeWeak   []bool // 量比 > 1.2
	SurgeMedium []bool // 量比 > 1.5
	SurgeStrong []bool // 量比 > 2.0
	Shrink      []bool // 量比 < 0.8

	VolumeTrendUp []bool // 当日成交量高于前一日

	// 量价共振形态。reversal与continuation在同方向上互斥。
	ReversalBullish     []bool // 今涨昨跌 + 量比>1.5
	ContinuationBullish []bool // 今涨昨涨 + 量比>1.2
	ReversalBearish     []bool // 今跌昨涨 + 量比>1.5
	ContinuationBearish []bool // 今跌昨跌 + 量比>1.2
}

// ClassifyVolume 在指标序列上做量能分级与量价共振识别。
// 前两根K线没有"昨日方向"，共振列一律为false。
func ClassifyVolume(f *IndicatorFrame) *VolumeSignals {
	n := f.Len()
	vs := &VolumeSignals{
		Ratio:               f.VolumeRatio,
		SurgeWeak:           make([]bool, n),
		SurgeMedium:         make([]bool, n),
		SurgeStrong:         make([]bool, n),
		Shrink:              make([]bool, n),
		VolumeTrendUp:       make([]bool, n),
		ReversalBullish:     make([]bool, n),
		ContinuationBullish: make([]bool, n),
		ReversalBearish:     make([]bool, n),
		ContinuationBearish: make([]bool, n),
	}

	for i := 0; i < n; i++ {
		ratio := f.VolumeRatio[i]
		if Valid(ratio) {
			vs.SurgeWeak[i] = ratio > surgeWeakRatio
			vs.SurgeMedium[i] = ratio > surgeMediumRatio
			vs.SurgeStrong[i] = ratio > surgeStrongRatio
			vs.Shrink[i] = ratio < shrinkRatio
		}
		if i >= 1 {
			vs.VolumeTrendUp[i] = f.Bars[i].Volume > f.Bars[i-1].Volume
		}
		if i < 2 {
			continue
		}

		upToday := f.Bars[i].Close > f.Bars[i-1].Close
		downToday := f.Bars[i].Close < f.Bars[i-1].Close
		upYesterday := f.Bars[i-1].Close > f.Bars[i-2].Close
		downYesterday := f.Bars[i-1].Close < f.Bars[i-2].Close

		if Valid(ratio) {
			vs.ReversalBullish[i] = upToday && downYesterday && ratio > surgeMediumRatio
			vs.ContinuationBullish[i] = upToday && upYesterday && ratio > surgeWeakRatio
			vs.ReversalBearish[i] = downToday && upYesterday && ratio > surgeMediumRatio
			vs.ContinuationBearish[i] = downToday && downYesterday && ratio > surgeWeakRatio
		}
	}
	return vs
}

// BullishPattern 当日是否存在看涨量价形态
func (vs *VolumeSignals) BullishPattern(i int) bool {
	return vs.ReversalBullish[i] || vs.ContinuationBullish[i]
}

// BearishPattern 当日是否存在看跌量价形态
func (vs *VolumeSignals) BearishPattern(i int) bool {
	return vs.ReversalBearish[i] || vs.ContinuationBearish[i]
}
