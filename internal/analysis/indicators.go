package analysis

import (
	"math"

	"hk-quant-toolkit/internal/model"
)

// 指标默认参数，与数据源无关，资产画像只影响评分层的取用。
const (
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignalLen = 9
	bollPeriod    = 20
	bollWidth     = 2.0
	stochKPeriod  = 14
	stochDPeriod  = 3
	atrPeriod     = 14
	cciPeriod     = 20
	volumeMAPer   = 20
)

var maPeriods = []int{5, 10, 20, 50, 100, 200}

// ComputeFrame 对一段按日期升序排列的K线序列计算全部技术指标。
// 每个指标在自身窗口不足时输出NaN；任意索引i处的值只依赖索引<=i的K线。
func ComputeFrame(bars []model.KlineBar) *IndicatorFrame {
	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	f := &IndicatorFrame{Bars: bars}

	f.MA5 = calcSMA(closes, 5)
	f.MA10 = calcSMA(closes, 10)
	f.MA20 = calcSMA(closes, 20)
	f.MA50 = calcSMA(closes, 50)
	f.MA100 = calcSMA(closes, 100)
	f.MA200 = calcSMA(closes, 200)

	f.RSI = calcRSI(closes, rsiPeriod)
	f.MACD, f.MACDSignal, f.MACDHist = calcMACD(closes, macdFast, macdSlow, macdSignalLen)
	f.BollUpper, f.BollMiddle, f.BollLower, f.BollPos = calcBollinger(closes, bollPeriod, bollWidth)
	f.StochK, f.StochD = calcStochastic(highs, lows, closes, stochKPeriod, stochDPeriod)
	f.ATR = calcATR(highs, lows, closes, atrPeriod)
	f.CCI = calcCCI(highs, lows, closes, cciPeriod)
	f.OBV = calcOBV(closes, volumes)
	f.CMF = calcCMF(highs, lows, closes, volumes, bollPeriod)

	f.VolumeMA20 = calcSMA(volumes, volumeMAPer)
	f.VolumeRatio = nanSlice(n)
	for i := 0; i < n; i++ {
		if Valid(f.VolumeMA20[i]) && f.VolumeMA20[i] > 0 {
			f.VolumeRatio[i] = volumes[i] / f.VolumeMA20[i]
		}
	}

	return f
}

// calcSMA 简单移动平均，窗口不足时为NaN
func calcSMA(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) < period {
		return out
	}
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= period {
			sum -= data[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// calcEMA 指数移动平均，首个有效值用前period个数据的SMA做种子
func calcEMA(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) < period {
		return out
	}
	multiplier := 2.0 / float64(period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < len(data); i++ {
		out[i] = (data[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// calcRSI Wilder平滑的RSI序列。
// 约定：avg_gain与avg_loss同时为0（价格完全走平）时RSI=50；
// 仅avg_loss为0时RSI饱和为100。
func calcRSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = alpha*gain + (1-alpha)*avgGain
		avgLoss = alpha*loss + (1-alpha)*avgLoss
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return clip(100-100/(1+rs), 0, 100)
}

// calcMACD DIF/DEA/柱状图三条序列。
// DIF自慢线EMA就绪起有效，DEA再需signal个有效DIF做种子。
func calcMACD(closes []float64, fast, slow, signal int) (macd, dea, hist []float64) {
	n := len(closes)
	macd = nanSlice(n)
	dea = nanSlice(n)
	hist = nanSlice(n)
	if n < slow {
		return
	}

	emaFast := calcEMA(closes, fast)
	emaSlow := calcEMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	// DEA = EMA(signal) over 有效DIF区段
	start := slow - 1
	if n-start < signal {
		return
	}
	multiplier := 2.0 / float64(signal+1)
	sum := 0.0
	for i := start; i < start+signal; i++ {
		sum += macd[i]
	}
	seedIdx := start + signal - 1
	dea[seedIdx] = sum / float64(signal)
	for i := seedIdx + 1; i < n; i++ {
		dea[i] = (macd[i]-dea[i-1])*multiplier + dea[i-1]
	}
	for i := seedIdx; i < n; i++ {
		hist[i] = macd[i] - dea[i]
	}
	return
}

// calcBollinger 布林带及带内位置
func calcBollinger(closes []float64, period int, width float64) (upper, middle, lower, pos []float64) {
	n := len(closes)
	middle = calcSMA(closes, period)
	upper = nanSlice(n)
	lower = nanSlice(n)
	pos = nanSlice(n)
	for i := period - 1; i < n; i++ {
		m := middle[i]
		if !Valid(m) {
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - m
			sum += d * d
		}
		std := math.Sqrt(sum / float64(period))
		upper[i] = m + width*std
		lower[i] = m - width*std
		if upper[i] > lower[i] {
			pos[i] = (closes[i] - lower[i]) / (upper[i] - lower[i])
		}
	}
	return
}

// calcStochastic 随机指标%K/%D。窗口内最高=最低时%K取50。
func calcStochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	k = nanSlice(n)
	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - kPeriod + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			k[i] = 50
		} else {
			k[i] = (closes[i] - ll) / (hh - ll) * 100
		}
	}

	// %D是%K的简单均线，只在%K连续有效处计算
	d = nanSlice(n)
	for i := kPeriod - 1 + dPeriod - 1; i < n; i++ {
		sum := 0.0
		ok := true
		for j := i - dPeriod + 1; j <= i; j++ {
			if !Valid(k[j]) {
				ok = false
				break
			}
			sum += k[j]
		}
		if ok {
			d[i] = sum / float64(dPeriod)
		}
	}
	return
}

// calcATR 真实波幅的滚动均值。TR[0]=high-low，其后含跳空修正。
func calcATR(highs, lows, closes []float64, period int) []float64 {
	n := len(highs)
	out := nanSlice(n)
	if n == 0 {
		return out
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return calcSMA(tr, period)
}

// calcCCI 顺势指标。平均绝对偏差为0时取0。
func calcCCI(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}
	smaTP := calcSMA(tp, period)
	for i := period - 1; i < n; i++ {
		m := smaTP[i]
		if !Valid(m) {
			continue
		}
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - m)
		}
		mad /= float64(period)
		if mad == 0 {
			out[i] = 0
		} else {
			out[i] = (tp[i] - m) / (0.015 * mad)
		}
	}
	return out
}

// calcOBV 能量潮，首根K线记0
func calcOBV(closes, volumes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = 0
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// calcCMF 蔡金资金流。high=low当日资金流乘数记0，窗口成交量和为0时记0。
func calcCMF(highs, lows, closes, volumes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	mfv := make([]float64, n)
	for i := 0; i < n; i++ {
		rng := highs[i] - lows[i]
		if rng > 0 {
			multiplier := ((closes[i] - lows[i]) - (highs[i] - closes[i])) / rng
			mfv[i] = multiplier * volumes[i]
		}
	}
	for i := period - 1; i < n; i++ {
		var sumMFV, sumVol float64
		for j := i - period + 1; j <= i; j++ {
			sumMFV += mfv[j]
			sumVol += volumes[j]
		}
		if sumVol == 0 {
			out[i] = 0
		} else {
			out[i] = sumMFV / sumVol
		}
	}
	return out
}
