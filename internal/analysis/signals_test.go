package analysis

import (
	"math"
	"strings"
	"testing"

	"hk-quant-toolkit/pkg/seriesgen"
)

const maCrossLabel = "MA20上穿MA50"

func eventsWithReason(events []SignalEvent, kind SignalKind, label string) []SignalEvent {
	var out []SignalEvent
	for _, e := range events {
		if e.Kind != kind {
			continue
		}
		for _, r := range e.Reasons {
			if strings.Contains(r, label) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// findFreshCross 定位MA20首次上穿MA50的索引，未发生返回-1
func findFreshCross(f *IndicatorFrame) int {
	for i := 1; i < f.Len(); i++ {
		if freshAbove(f.MA20, f.MA50, i) {
			return i
		}
	}
	return -1
}

// 持续10根的MA20>MA50状态只在形成交叉的那一根触发一次信号
func TestTrendCrossFiresOnTransitionNotState(t *testing.T) {
	bars := seriesgen.VShape(150, 150, 100, 0.2, 0.4, 1000)
	f := ComputeFrame(bars)
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	crosses := eventsWithReason(res.Events, SignalBuy, maCrossLabel)
	if len(crosses) != 1 {
		t.Fatalf("expected exactly 1 trend-cross buy event, got %d", len(crosses))
	}
	if crosses[0].Index != findFreshCross(f) {
		t.Errorf("event index %d does not match the cross bar %d", crosses[0].Index, findFreshCross(f))
	}
}

// V形序列中唯一一次金叉配1.3倍弱级放量：
// 恰好一个趋势买入事件，确认强度weak，全序列再无其他趋势买入。
func TestScenarioSingleCrossWithWeakConfirmation(t *testing.T) {
	base := seriesgen.VShape(150, 150, 100, 0.2, 0.4, 1000)
	crossIdx := findFreshCross(ComputeFrame(base))
	if crossIdx < 0 {
		t.Fatal("synthetic series must contain one golden cross")
	}

	bars := seriesgen.WithVolumeAt(base, crossIdx, 1300)
	f := ComputeFrame(bars)
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	crosses := eventsWithReason(res.Events, SignalBuy, maCrossLabel)
	if len(crosses) != 1 {
		t.Fatalf("expected exactly 1 trend-cross buy event, got %d", len(crosses))
	}
	ev := crosses[0]
	if ev.Index != crossIdx {
		t.Errorf("event at index %d, want %d", ev.Index, crossIdx)
	}
	if ev.TierStr != "weak" {
		t.Errorf("confirmed tier = %s, want weak (ratio ≈ 1.28)", ev.TierStr)
	}
	if !res.Buy[crossIdx] || res.BuyReasons[crossIdx] == "" {
		t.Error("per-bar buy flag and rationale string must be set")
	}
}

// 完全走平的序列不产生任何信号，RSI稳定在中性50
func TestFlatSeriesEmitsNothing(t *testing.T) {
	f := ComputeFrame(seriesgen.Flat(250, 50, 1000))
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	if len(res.Events) != 0 {
		t.Fatalf("flat series produced %d events, want 0", len(res.Events))
	}
	for i := rsiPeriod; i < f.Len(); i++ {
		if f.RSI[i] != 50 {
			t.Fatalf("RSI[%d] = %f on flat series, want the documented neutral 50", i, f.RSI[i])
		}
	}
}

// RSI脱离超卖区：在离开<30区间的那一根触发，区间内持续不触发
func TestRSIOversoldExit(t *testing.T) {
	bars := seriesgen.VShape(40, 2, 200, 1.0, 10, 1000)
	bars = seriesgen.WithVolumeAt(bars, 40, 1600)
	f := ComputeFrame(bars)
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	if f.RSI[39] >= rsiOversold {
		t.Fatalf("precondition: RSI[39] = %f should be oversold", f.RSI[39])
	}
	if f.RSI[40] < rsiOversold {
		t.Fatalf("precondition: RSI[40] = %f should have exited the zone", f.RSI[40])
	}

	exits := eventsWithReason(res.Events, SignalBuy, "RSI脱离超卖区")
	if len(exits) != 1 || exits[0].Index != 40 {
		t.Fatalf("expected exactly one RSI-exit buy at index 40, got %+v", exits)
	}
	// 下跌途中RSI一直在超卖区内，不得触发
	for _, e := range exits {
		if e.Index < 40 {
			t.Errorf("RSI exit fired at %d while still inside the zone", e.Index)
		}
	}
}

// 同一根K线允许买卖信号并存（刻意保留的行为）
func TestBuyAndSellMayCoexist(t *testing.T) {
	n := 3
	bars := seriesgen.Flat(n, 100, 1000)
	f := &IndicatorFrame{
		Bars:        bars,
		MA5:         nanSlice(n),
		MA10:        nanSlice(n),
		MA20:        []float64{10, 10, 12},
		MA50:        []float64{11, 11, 11},
		MA100:       nanSlice(n),
		MA200:       nanSlice(n),
		RSI:         []float64{80, 75, 65},
		MACD:        nanSlice(n),
		MACDSignal:  nanSlice(n),
		MACDHist:    nanSlice(n),
		BollUpper:   nanSlice(n),
		BollMiddle:  nanSlice(n),
		BollLower:   nanSlice(n),
		BollPos:     nanSlice(n),
		StochK:      nanSlice(n),
		StochD:      nanSlice(n),
		ATR:         nanSlice(n),
		OBV:         make([]float64, n),
		CMF:         nanSlice(n),
		VolumeMA20:  []float64{1000, 1000, 1000},
		VolumeRatio: []float64{1.3, 1.3, 1.3},
	}
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	if !res.Buy[2] {
		t.Error("expected a trend-cross buy at index 2")
	}
	if !res.Sell[2] {
		t.Error("expected an RSI-overbought-exit sell at index 2")
	}
}

// 预热期（指标为NaN）不触发任何穿越判定
func TestWarmupAbstains(t *testing.T) {
	f := ComputeFrame(seriesgen.Trend(25, 100, 0.5, 1000))
	vs := ClassifyVolume(f)
	res := DetectSignals(f, vs)

	for _, e := range res.Events {
		for _, r := range e.Reasons {
			if strings.Contains(r, maCrossLabel) {
				t.Fatalf("MA cross fired at %d although MA50 never becomes valid", e.Index)
			}
		}
	}
}

func TestFreshCrossHelpers(t *testing.T) {
	a := []float64{1, 3}
	b := []float64{2, 2}
	if !freshAbove(a, b, 1) {
		t.Error("freshAbove should detect 1<=2 then 3>2")
	}
	if freshAbove(b, a, 1) {
		t.Error("freshAbove misfired on the mirrored input")
	}
	nan := math.NaN()
	c := []float64{nan, 3}
	if freshAbove(c, b, 1) {
		t.Error("freshAbove must abstain when the previous value is NaN")
	}
}
