package analysis

import (
	"math"
	"sort"

	"hk-quant-toolkit/internal/model"
)

// 趋势健康度模型参数
const (
	slopeWindow       = 5   // 均线斜率回归的取样点数
	slopeMAPeriod     = 20  // 斜率所用均线
	extremaWing       = 2   // 局部极值两侧各比较2根（5根窗口）
	srLookback        = 60  // 支撑压力检测回看
	srClusterTol      = 0.01 // 价位聚类相对容差1%
	rsLookback        = 20  // 相对强弱回看
)

// 综合权重：排列+斜率40%、动量/乖离30%、支撑压力20%、相对强弱10%
const (
	alignmentWeight = 0.40
	deviationWeight = 0.30
	srWeight        = 0.20
	rsWeight        = 0.10
)

// PriceLevel 聚类后的支撑/压力价位
type PriceLevel struct {
	Price   float64 `json:"price"`
	Touches int     `json:"touches"`
}

// TrendHealth 趋势健康度评分结果
type TrendHealth struct {
	Score          float64 `json:"score"`
	Recommendation string  `json:"recommendation"` // strong_buy/buy/hold/sell/strong_sell

	AlignmentScore float64 `json:"alignment_score"`
	DeviationScore float64 `json:"deviation_score"`
	SRScore        float64 `json:"sr_score"`
	RSScore        float64 `json:"rs_score"`

	TrendLabel     string  `json:"trend_label"`     // 斜率五档
	DeviationLabel string  `json:"deviation_label"` // 乖离五档
	Support        float64 `json:"support"`         // 最近下方支撑，无则为0
	Resistance     float64 `json:"resistance"`      // 最近上方压力，无则为0
	Beta           float64 `json:"beta"`
	Alpha          float64 `json:"alpha"`
	RelativeReturn float64 `json:"relative_return"` // 区间累计收益差(%)
}

// ScoreTrendHealth 在序列末端计算趋势可持续性0-100评分。
// benchmark为基准指数K线，可为nil（相对强弱子分退化为中性50）。
func ScoreTrendHealth(f *IndicatorFrame, benchmark []model.KlineBar) TrendHealth {
	th := TrendHealth{}
	i := f.Len() - 1
	if i < 0 {
		th.Score = 50
		th.Recommendation = recommendFor(50)
		return th
	}

	th.AlignmentScore, th.TrendLabel = alignmentSlopeScore(f, i)
	th.DeviationScore, th.DeviationLabel = deviationScore(f, i)

	support, resistance, srScore := supportResistanceScore(f, i)
	th.Support, th.Resistance, th.SRScore = support, resistance, srScore

	th.RSScore, th.RelativeReturn, th.Beta, th.Alpha = relativeStrengthScore(f.Bars, benchmark)

	th.Score = clip(th.AlignmentScore*alignmentWeight+
		th.DeviationScore*deviationWeight+
		th.SRScore*srWeight+
		th.RSScore*rsWeight, 0, 100)
	th.Recommendation = recommendFor(th.Score)
	return th
}

func recommendFor(score float64) string {
	switch {
	case score >= 80:
		return "strong_buy"
	case score >= 65:
		return "buy"
	case score >= 45:
		return "hold"
	case score >= 30:
		return "sell"
	}
	return "strong_sell"
}

// alignmentSlopeScore 均线排列与斜率的合成子分。
// 排列按相邻周期逐对比较；完整排列时强度随最短/最长均线的比值放大。
// 斜率用MA20最近5个值做线性回归，角度按±5°/±2°分为五档。
func alignmentSlopeScore(f *IndicatorFrame, i int) (float64, string) {
	// 排列部分
	type maVal struct {
		period int
		value  float64
	}
	var mas []maVal
	for _, p := range maPeriods {
		col := f.MA(p)
		if col != nil && Valid(col[i]) {
			mas = append(mas, maVal{p, col[i]})
		}
	}

	alignScore := 50.0
	if len(mas) >= 2 {
		bullPairs, bearPairs := 0, 0
		for j := 0; j+1 < len(mas); j++ {
			if mas[j].value > mas[j+1].value {
				bullPairs++
			} else if mas[j].value < mas[j+1].value {
				bearPairs++
			}
		}
		pairs := len(mas) - 1
		shortest, longest := mas[0].value, mas[len(mas)-1].value
		switch {
		case bullPairs == pairs:
			// 完整多头：基础75，短长均线比值放大强度
			strength := (shortest/longest - 1) * 100
			alignScore = clip(75+strength*2, 75, 95)
		case bearPairs == pairs:
			strength := (1 - shortest/longest) * 100
			alignScore = clip(25-strength*2, 5, 25)
		case bullPairs > bearPairs:
			alignScore = 62
		case bearPairs > bullPairs:
			alignScore = 38
		}
	}

	// 斜率部分
	slopeScore, label := maSlopeScore(f, i)

	return clip(alignScore*0.5+slopeScore*0.5, 0, 100), label
}

// maSlopeScore MA20斜率角度五档评分
func maSlopeScore(f *IndicatorFrame, i int) (float64, string) {
	col := f.MA(slopeMAPeriod)
	if col == nil || i < slopeWindow-1 {
		return 50, "数据不足"
	}
	var vals []float64
	for j := i - slopeWindow + 1; j <= i; j++ {
		if !Valid(col[j]) {
			return 50, "数据不足"
		}
		vals = append(vals, col[j])
	}

	slope := linearSlope(vals)
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	if mean == 0 {
		return 50, "数据不足"
	}
	angle := math.Atan(slope/mean*100) * 180 / math.Pi

	switch {
	case angle > 5:
		return 90, "强势上行"
	case angle > 2:
		return 70, "温和上行"
	case angle >= -2:
		return 50, "走平"
	case angle >= -5:
		return 30, "温和下行"
	}
	return 10, "加速下行"
}

// linearSlope 最小二乘斜率，x取0..n-1
func linearSlope(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range data {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

// deviationScore 乖离子分：收盘价相对各可用均线的平均偏离百分比，
// 按±5%/±10%分五档。贴近均线视为趋势健康，极端偏离减分。
func deviationScore(f *IndicatorFrame, i int) (float64, string) {
	price := f.Bars[i].Close
	var sum float64
	count := 0
	for _, p := range maPeriods {
		col := f.MA(p)
		if col != nil && Valid(col[i]) && col[i] > 0 {
			sum += (price - col[i]) / col[i] * 100
			count++
		}
	}
	if count == 0 {
		return 50, "数据不足"
	}
	avgDev := sum / float64(count)

	switch {
	case avgDev > 10:
		return 30, "严重超买"
	case avgDev > 5:
		return 55, "偏高"
	case avgDev >= -5:
		return 75, "健康区间"
	case avgDev >= -10:
		return 45, "偏低"
	}
	return 25, "严重超卖"
}

// supportResistanceScore 支撑压力子分。
// 在回看窗口内用5根K线窗口的严格局部极值作为候选价位，
// 1%相对容差聚类，按触碰次数加权，取当前价下方最近支撑与上方最近压力。
func supportResistanceScore(f *IndicatorFrame, i int) (support, resistance, score float64) {
	price := f.Bars[i].Close
	start := i - srLookback + 1
	if start < 0 {
		start = 0
	}

	var candidates []float64
	for j := start + extremaWing; j <= i-extremaWing; j++ {
		if isLocalMax(f.Bars, j) {
			candidates = append(candidates, f.Bars[j].High)
		}
		if isLocalMin(f.Bars, j) {
			candidates = append(candidates, f.Bars[j].Low)
		}
	}
	levels := clusterLevels(candidates, srClusterTol)

	bestSupDist, bestResDist := math.MaxFloat64, math.MaxFloat64
	var supTouches, resTouches int
	for _, lv := range levels {
		if lv.Price < price {
			d := price - lv.Price
			if d < bestSupDist {
				bestSupDist = d
				support = lv.Price
				supTouches = lv.Touches
			}
		} else if lv.Price > price {
			d := lv.Price - price
			if d < bestResDist {
				bestResDist = d
				resistance = lv.Price
				resTouches = lv.Touches
			}
		}
	}

	// 贴近多次验证的支撑加分，贴近压力减分，居中中性
	score = 50
	if support > 0 {
		supDist := (price - support) / price * 100
		if supDist < 3 {
			score += 20 + clip(float64(supTouches)*2, 0, 10)
		} else if supDist < 8 {
			score += 8
		}
	}
	if resistance > 0 {
		resDist := (resistance - price) / price * 100
		if resDist < 3 {
			score -= 15 + clip(float64(resTouches)*2, 0, 10)
		} else if resDist < 8 {
			score -= 5
		}
	}
	return support, resistance, clip(score, 0, 100)
}

// isLocalMax j处最高价严格高于两侧各extremaWing根
func isLocalMax(bars []model.KlineBar, j int) bool {
	if j < extremaWing || j+extremaWing >= len(bars) {
		return false
	}
	for k := 1; k <= extremaWing; k++ {
		if bars[j].High <= bars[j-k].High || bars[j].High <= bars[j+k].High {
			return false
		}
	}
	return true
}

// isLocalMin j处最低价严格低于两侧各extremaWing根
func isLocalMin(bars []model.KlineBar, j int) bool {
	if j < extremaWing || j+extremaWing >= len(bars) {
		return false
	}
	for k := 1; k <= extremaWing; k++ {
		if bars[j].Low >= bars[j-k].Low || bars[j].Low >= bars[j+k].Low {
			return false
		}
	}
	return true
}

// clusterLevels 把相邻1%以内的候选价位并为一个价位，触碰数累计
func clusterLevels(candidates []float64, tol float64) []PriceLevel {
	if len(candidates) == 0 {
		return nil
	}
	sort.Float64s(candidates)

	var levels []PriceLevel
	clusterSum := candidates[0]
	clusterCount := 1
	anchor := candidates[0]
	for _, v := range candidates[1:] {
		if anchor > 0 && (v-anchor)/anchor <= tol {
			clusterSum += v
			clusterCount++
			continue
		}
		levels = append(levels, PriceLevel{Price: clusterSum / float64(clusterCount), Touches: clusterCount})
		clusterSum = v
		clusterCount = 1
		anchor = v
	}
	levels = append(levels, PriceLevel{Price: clusterSum / float64(clusterCount), Touches: clusterCount})
	return levels
}

// relativeStrengthScore 相对强弱子分：
// 回看区间的累计收益差按±2%分四档；Beta/Alpha由收益序列的协方差/方差得出。
func relativeStrengthScore(bars, benchmark []model.KlineBar) (score, relReturn, beta, alpha float64) {
	if len(benchmark) < 2 || len(bars) < 2 {
		return 50, 0, 1.0, 0
	}

	period := rsLookback + 1
	if len(bars) < period {
		period = len(bars)
	}
	if len(benchmark) < period {
		period = len(benchmark)
	}
	if period < 2 {
		return 50, 0, 1.0, 0
	}

	stockRet := compoundReturn(bars[len(bars)-period:])
	benchRet := compoundReturn(benchmark[len(benchmark)-period:])
	relReturn = (stockRet - benchRet) * 100

	beta, alpha = betaAlpha(bars, benchmark, period)

	switch {
	case relReturn > 2:
		score = 85
	case relReturn > 0:
		score = 65
	case relReturn > -2:
		score = 45
	default:
		score = 25
	}
	return score, relReturn, beta, alpha
}

// compoundReturn 区间复合收益率
func compoundReturn(bars []model.KlineBar) float64 {
	if len(bars) < 2 || bars[0].Close == 0 {
		return 0
	}
	return bars[len(bars)-1].Close/bars[0].Close - 1
}

// betaAlpha 协方差/方差法Beta，以及区间平均超额收益Alpha。
// 基准方差为0时Beta取1。
func betaAlpha(bars, benchmark []model.KlineBar, period int) (float64, float64) {
	sRet := dailyReturns(bars, period)
	bRet := dailyReturns(benchmark, period)
	n := len(sRet)
	if len(bRet) < n {
		n = len(bRet)
	}
	if n < 2 {
		return 1.0, 0
	}
	sRet = sRet[len(sRet)-n:]
	bRet = bRet[len(bRet)-n:]

	var sMean, bMean float64
	for i := 0; i < n; i++ {
		sMean += sRet[i]
		bMean += bRet[i]
	}
	sMean /= float64(n)
	bMean /= float64(n)

	var cov, bVar float64
	for i := 0; i < n; i++ {
		cov += (sRet[i] - sMean) * (bRet[i] - bMean)
		bVar += (bRet[i] - bMean) * (bRet[i] - bMean)
	}
	if bVar == 0 {
		return 1.0, 0
	}
	beta := cov / bVar
	alpha := sMean - beta*bMean
	return beta, alpha
}

// dailyReturns 末端period根K线的逐日收益率
func dailyReturns(bars []model.KlineBar, period int) []float64 {
	if len(bars) < period {
		period = len(bars)
	}
	sub := bars[len(bars)-period:]
	var out []float64
	for i := 1; i < len(sub); i++ {
		if sub[i-1].Close > 0 {
			out = append(out, sub[i].Close/sub[i-1].Close-1)
		}
	}
	return out
}
