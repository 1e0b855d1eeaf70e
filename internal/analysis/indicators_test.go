package analysis

import (
	"math"
	"testing"

	"hk-quant-toolkit/pkg/seriesgen"
)

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) < 1e-9
}

func TestSMAWarmup(t *testing.T) {
	bars := seriesgen.Trend(40, 100, 0.5, 1000)
	f := ComputeFrame(bars)

	for i := 0; i < 19; i++ {
		if Valid(f.MA20[i]) {
			t.Fatalf("MA20[%d] should be NaN during warm-up, got %f", i, f.MA20[i])
		}
	}
	for i := 19; i < f.Len(); i++ {
		if !Valid(f.MA20[i]) {
			t.Fatalf("MA20[%d] should be valid after warm-up", i)
		}
	}
	// 成交量均线与量比同步预热
	if Valid(f.VolumeRatio[18]) {
		t.Error("VolumeRatio[18] should be NaN")
	}
	if !almostEqual(f.VolumeRatio[19], 1.0) {
		t.Errorf("VolumeRatio[19] = %f, want 1.0", f.VolumeRatio[19])
	}
}

func TestRSIBounds(t *testing.T) {
	bars := seriesgen.VShape(60, 60, 100, 0.8, 1.2, 1000)
	f := ComputeFrame(bars)

	for i, v := range f.RSI {
		if i < rsiPeriod {
			if Valid(v) {
				t.Fatalf("RSI[%d] should be NaN during warm-up", i)
			}
			continue
		}
		if !Valid(v) || v < 0 || v > 100 {
			t.Fatalf("RSI[%d] = %f out of [0,100]", i, v)
		}
	}
}

func TestRSIFlatSeriesIsNeutral(t *testing.T) {
	// 价格完全走平时avg_gain与avg_loss同时为0，约定RSI=50
	f := ComputeFrame(seriesgen.Flat(250, 50, 1000))
	for i := rsiPeriod; i < f.Len(); i++ {
		if !almostEqual(f.RSI[i], 50) {
			t.Fatalf("RSI[%d] = %f on flat series, want 50", i, f.RSI[i])
		}
	}
}

func TestRSISaturatesAt100(t *testing.T) {
	// 连续上涨且没有任何下跌，avg_loss=0，RSI饱和为100
	f := ComputeFrame(seriesgen.Trend(40, 100, 1.0, 1000))
	last := f.RSI[f.Len()-1]
	if !almostEqual(last, 100) {
		t.Errorf("RSI on pure uptrend = %f, want 100", last)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	bars := seriesgen.VShape(80, 80, 100, 0.3, 0.5, 1000)
	f := ComputeFrame(bars)

	sawValid := false
	for i := 0; i < f.Len(); i++ {
		if !Valid(f.MACDHist[i]) {
			continue
		}
		sawValid = true
		if !almostEqual(f.MACDHist[i], f.MACD[i]-f.MACDSignal[i]) {
			t.Fatalf("hist[%d] = %f, macd-signal = %f", i, f.MACDHist[i], f.MACD[i]-f.MACDSignal[i])
		}
	}
	if !sawValid {
		t.Fatal("expected at least one valid MACD histogram value")
	}
}

// 任意索引处的指标值只依赖该索引之前的K线：
// 对前缀重新计算必须得到逐点相同的结果。
func TestNoLookAhead(t *testing.T) {
	bars := seriesgen.VShape(120, 120, 100, 0.4, 0.7, 1000)
	full := ComputeFrame(bars)
	prefix := ComputeFrame(bars[:150])

	cols := map[string][2][]float64{
		"MA20":       {full.MA20, prefix.MA20},
		"MA50":       {full.MA50, prefix.MA50},
		"RSI":        {full.RSI, prefix.RSI},
		"MACD":       {full.MACD, prefix.MACD},
		"MACDSignal": {full.MACDSignal, prefix.MACDSignal},
		"BollUpper":  {full.BollUpper, prefix.BollUpper},
		"BollPos":    {full.BollPos, prefix.BollPos},
		"StochK":     {full.StochK, prefix.StochK},
		"StochD":     {full.StochD, prefix.StochD},
		"ATR":        {full.ATR, prefix.ATR},
		"CCI":        {full.CCI, prefix.CCI},
		"OBV":        {full.OBV, prefix.OBV},
		"CMF":        {full.CMF, prefix.CMF},
		"VolRatio":   {full.VolumeRatio, prefix.VolumeRatio},
	}
	for name, pair := range cols {
		for i := 0; i < 150; i++ {
			if !almostEqual(pair[0][i], pair[1][i]) {
				t.Fatalf("%s[%d] differs between full (%f) and prefix (%f) computation",
					name, i, pair[0][i], pair[1][i])
			}
		}
	}
}

func TestStochasticFlatWindow(t *testing.T) {
	// 窗口内最高=最低时%K取50而非崩溃
	f := ComputeFrame(seriesgen.Flat(30, 80, 1000))
	for i := stochKPeriod - 1; i < f.Len(); i++ {
		if !almostEqual(f.StochK[i], 50) {
			t.Fatalf("StochK[%d] = %f on flat series, want 50", i, f.StochK[i])
		}
	}
}

func TestBollingerDegenerateBands(t *testing.T) {
	// 标准差为0时上下轨重合，带内位置未定义(NaN)
	f := ComputeFrame(seriesgen.Flat(30, 80, 1000))
	i := f.Len() - 1
	if !almostEqual(f.BollUpper[i], f.BollLower[i]) {
		t.Fatal("expected coincident bands on flat series")
	}
	if Valid(f.BollPos[i]) {
		t.Errorf("BollPos should be NaN when upper==lower, got %f", f.BollPos[i])
	}
}

func TestOBVAccumulation(t *testing.T) {
	bars := seriesgen.Trend(5, 100, 1.0, 500)
	f := ComputeFrame(bars)
	// 首根记0，之后连续上涨逐日累加成交量
	want := []float64{0, 500, 1000, 1500, 2000}
	for i, w := range want {
		if !almostEqual(f.OBV[i], w) {
			t.Fatalf("OBV[%d] = %f, want %f", i, f.OBV[i], w)
		}
	}
}

func TestCMFDegenerateRange(t *testing.T) {
	// high==low的K线资金流乘数记0，CMF整体为0而不是NaN
	f := ComputeFrame(seriesgen.Flat(30, 80, 1000))
	i := f.Len() - 1
	if !Valid(f.CMF[i]) || !almostEqual(f.CMF[i], 0) {
		t.Errorf("CMF on flat series = %f, want 0", f.CMF[i])
	}
}
