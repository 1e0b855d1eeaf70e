package analysis

import (
	"math"
	"testing"

	"hk-quant-toolkit/internal/model"
	"hk-quant-toolkit/pkg/seriesgen"
)

func TestRecommendationBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{92, "strong_buy"},
		{80, "strong_buy"},
		{79.9, "buy"},
		{65, "buy"},
		{64.9, "hold"},
		{45, "hold"},
		{44.9, "sell"},
		{30, "sell"},
		{29.9, "strong_sell"},
		{0, "strong_sell"},
	}
	for _, c := range cases {
		if got := recommendFor(c.score); got != c.want {
			t.Errorf("recommendFor(%.1f) = %s, want %s", c.score, got, c.want)
		}
	}
}

// 持续上行与持续下行的序列在各子分上必须拉开方向性差距
func TestUpVersusDownTrend(t *testing.T) {
	bench := seriesgen.Flat(260, 100, 1000)

	up := ScoreTrendHealth(ComputeFrame(seriesgen.Trend(260, 100, 0.3, 1000)), bench)
	down := ScoreTrendHealth(ComputeFrame(seriesgen.Trend(260, 100, -0.3, 1000)), bench)

	if up.AlignmentScore <= down.AlignmentScore {
		t.Errorf("alignment: up %f should exceed down %f", up.AlignmentScore, down.AlignmentScore)
	}
	if up.RSScore <= down.RSScore {
		t.Errorf("relative strength: up %f should exceed down %f", up.RSScore, down.RSScore)
	}
	if up.Score <= down.Score {
		t.Errorf("composite: up %f should exceed down %f", up.Score, down.Score)
	}
	if up.TrendLabel != "强势上行" {
		t.Errorf("up trend label = %s, want 强势上行", up.TrendLabel)
	}
	if down.TrendLabel != "加速下行" {
		t.Errorf("down trend label = %s, want 加速下行", down.TrendLabel)
	}
	if up.RelativeReturn <= 2 {
		t.Errorf("up vs flat benchmark relative return %f should clear +2%%", up.RelativeReturn)
	}
}

func TestFlatSeriesIsNeutral(t *testing.T) {
	th := ScoreTrendHealth(ComputeFrame(seriesgen.Flat(260, 100, 1000)), nil)
	if th.TrendLabel != "走平" {
		t.Errorf("flat trend label = %s, want 走平", th.TrendLabel)
	}
	if th.DeviationLabel != "健康区间" {
		t.Errorf("flat deviation label = %s, want 健康区间", th.DeviationLabel)
	}
	if th.Recommendation != "hold" {
		t.Errorf("flat recommendation = %s, want hold", th.Recommendation)
	}
}

// 平坦序列里人工压出一处低点：应聚类出唯一支撑位并加分
func TestSupportDetection(t *testing.T) {
	bars := seriesgen.Flat(30, 100, 1000)
	bars = seriesgen.WithCloseAt(bars, 10, 98.5)
	f := ComputeFrame(bars)

	support, resistance, score := supportResistanceScore(f, f.Len()-1)
	if support != 98.5 {
		t.Errorf("support = %f, want 98.5", support)
	}
	if resistance != 0 {
		t.Errorf("resistance = %f, want none", resistance)
	}
	// 基准50 + 近支撑20 + 单次触碰2
	if score != 72 {
		t.Errorf("sr score = %f, want 72", score)
	}
}

func TestResistanceDetection(t *testing.T) {
	bars := seriesgen.Flat(30, 100, 1000)
	bars = seriesgen.WithCloseAt(bars, 10, 98.5)
	bars = seriesgen.WithCloseAt(bars, 20, 101.5)
	f := ComputeFrame(bars)

	support, resistance, score := supportResistanceScore(f, f.Len()-1)
	if support != 98.5 || resistance != 101.5 {
		t.Errorf("levels = (%f, %f), want (98.5, 101.5)", support, resistance)
	}
	// 72 − 近压力15 − 单次触碰2
	if score != 55 {
		t.Errorf("sr score = %f, want 55", score)
	}
}

func TestClusterLevels(t *testing.T) {
	levels := clusterLevels([]float64{100, 100.5, 105}, 0.01)
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(levels))
	}
	if !almostEqual(levels[0].Price, 100.25) || levels[0].Touches != 2 {
		t.Errorf("first level = %+v, want price 100.25 with 2 touches", levels[0])
	}
	if !almostEqual(levels[1].Price, 105) || levels[1].Touches != 1 {
		t.Errorf("second level = %+v, want price 105 with 1 touch", levels[1])
	}
}

// 收益序列恰为基准2倍时Beta应为2、Alpha为0
func TestBetaFromProportionalReturns(t *testing.T) {
	const n = 21
	bench := make([]model.KlineBar, n)
	stock := make([]model.KlineBar, n)
	bp, sp := 100.0, 100.0
	bench[0].Close, stock[0].Close = bp, sp
	for i := 1; i < n; i++ {
		r := 0.01
		if i%2 == 0 {
			r = -0.01
		}
		bp *= 1 + r
		sp *= 1 + 2*r
		bench[i].Close = bp
		stock[i].Close = sp
	}

	_, _, beta, alpha := relativeStrengthScore(stock, bench)
	if math.Abs(beta-2) > 1e-9 {
		t.Errorf("beta = %f, want 2", beta)
	}
	if math.Abs(alpha) > 1e-9 {
		t.Errorf("alpha = %f, want 0", alpha)
	}
}

func TestBenchmarkDegenerateCases(t *testing.T) {
	bars := seriesgen.Trend(60, 100, 0.5, 1000)

	// 无基准
	score, rel, beta, alpha := relativeStrengthScore(bars, nil)
	if score != 50 || rel != 0 || beta != 1.0 || alpha != 0 {
		t.Errorf("nil benchmark: got (%f, %f, %f, %f), want (50, 0, 1, 0)", score, rel, beta, alpha)
	}

	// 零方差基准
	_, _, beta, alpha = relativeStrengthScore(bars, seriesgen.Flat(60, 100, 1000))
	if beta != 1.0 || alpha != 0 {
		t.Errorf("flat benchmark: beta=%f alpha=%f, want beta 1 and alpha 0", beta, alpha)
	}
}

func TestEmptyFrame(t *testing.T) {
	th := ScoreTrendHealth(ComputeFrame(nil), nil)
	if th.Score != 50 || th.Recommendation != "hold" {
		t.Errorf("empty frame: score=%f rec=%s, want neutral 50/hold", th.Score, th.Recommendation)
	}
}
