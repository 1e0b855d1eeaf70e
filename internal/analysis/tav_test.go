package analysis

import (
	"testing"

	"hk-quant-toolkit/pkg/seriesgen"
)

func TestCompositeClipping(t *testing.T) {
	hot := AssetProfile{Class: AssetStock, TrendWeight: 0.8, MomentumWeight: 0.8, VolumeWeight: 0.8}
	if got := composite(TAVScore{Trend: 95, Momentum: 95, Volume: 95}, hot); got != 100 {
		t.Errorf("over-weighted composite = %f, want clipped to 100", got)
	}
	if got := composite(TAVScore{Trend: 0, Momentum: 0, Volume: 0}, hot); got != 0 {
		t.Errorf("zero sub-scores composite = %f, want 0", got)
	}
}

func TestCompositeEqualSubScores(t *testing.T) {
	// 权重和为1时，三项同分的复合分必须等于该分值
	for _, p := range profiles {
		got := composite(TAVScore{Trend: 60, Momentum: 60, Volume: 60}, p)
		if !almostEqual(got, 60) {
			t.Errorf("%s: equal sub-scores gave composite %f, want 60", p.Class, got)
		}
	}
}

func TestStatusBands(t *testing.T) {
	p := profiles[AssetStock] // 阈值 75/50/25
	cases := []struct {
		composite float64
		want      string
	}{
		{90, "strong"},
		{75, "strong"},
		{74.9, "medium"},
		{50, "medium"},
		{49.9, "weak"},
		{25, "weak"},
		{24.9, "none"},
		{0, "none"},
	}
	for _, c := range cases {
		if got := statusFor(c.composite, p); got != c.want {
			t.Errorf("statusFor(%.1f) = %s, want %s", c.composite, got, c.want)
		}
	}
}

// 温和上行的长序列应给出高趋势分，并且复合分只随资产画像的权重变化：
// 三个子分数跨画像不变，股票画像的趋势权重0.40高于加密画像的0.35，
// 在趋势分为最高子分数时股票复合分应更高。
func TestProfileWeightsShiftComposite(t *testing.T) {
	bars := seriesgen.Trend(260, 100, 0.1, 1000)
	f := ComputeFrame(bars)
	vs := ClassifyVolume(f)

	stock := ScoreTAV(f, vs, profiles[AssetStock])
	crypto := ScoreTAV(f, vs, profiles[AssetCrypto])

	if stock.Trend != crypto.Trend || stock.Volume != crypto.Volume {
		t.Fatalf("sub-scores must not depend on profile weights: stock=%+v crypto=%+v", stock, crypto)
	}
	if stock.Trend <= stock.Momentum || stock.Trend <= stock.Volume {
		t.Fatalf("uptrend should make trend the dominant sub-score, got %+v", stock)
	}
	if stock.Composite <= crypto.Composite {
		t.Errorf("stock composite %f should exceed crypto composite %f under a higher trend weight",
			stock.Composite, crypto.Composite)
	}
}

func TestTrendScoreFullBullChain(t *testing.T) {
	f := ComputeFrame(seriesgen.Trend(260, 100, 0.1, 1000))
	i := f.Len() - 1
	if got := trendScore(f, profiles[AssetStock], i); got != 95 {
		t.Errorf("full bull alignment trend score = %f, want 95", got)
	}
}

func TestTrendScoreDegradesWithHistory(t *testing.T) {
	// 15根K线：MA5/MA10可用，构成两均线的简化链
	f := ComputeFrame(seriesgen.Trend(15, 100, 1, 1000))
	if got := trendScore(f, profiles[AssetStock], f.Len()-1); got != 75 {
		t.Errorf("two-MA bull chain trend score = %f, want 75", got)
	}
	// 8根K线：只有MA5可用，数据不足
	f = ComputeFrame(seriesgen.Trend(8, 100, 1, 1000))
	if got := trendScore(f, profiles[AssetStock], f.Len()-1); got != 40 {
		t.Errorf("insufficient-history trend score = %f, want 40", got)
	}
}

func TestVolumeScoreUsesProfileThresholds(t *testing.T) {
	bars := seriesgen.Trend(260, 100, 0.1, 1000)
	bars = seriesgen.WithVolumeAt(bars, 259, 1250)
	f := ComputeFrame(bars)
	vs := ClassifyVolume(f)
	i := f.Len() - 1

	// ratio ≈ 1.23：超过股票画像的1.2弱门槛，低于加密画像的1.3弱门槛
	stockScore := volumeScore(vs, profiles[AssetStock], i)
	cryptoScore := volumeScore(vs, profiles[AssetCrypto], i)
	if stockScore <= cryptoScore {
		t.Errorf("ratio 1.23 clears the stock weak tier but not crypto's, got stock=%f crypto=%f",
			stockScore, cryptoScore)
	}
}

func TestScoreTAVAtWarmup(t *testing.T) {
	f := ComputeFrame(seriesgen.Trend(260, 100, 0.1, 1000))
	vs := ClassifyVolume(f)
	s := ScoreTAVAt(f, vs, profiles[AssetStock], 3)
	if s.Composite < 0 || s.Composite > 100 {
		t.Errorf("warm-up composite %f escaped [0,100]", s.Composite)
	}
}
