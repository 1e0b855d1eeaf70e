package analysis

// TAV（Trend-Acceleration-Volume）三因子共振评分。
// 三个子分各自落在[0,100]，按资产画像的权重合成并裁剪到[0,100]，
// 再按画像阈值映射为共振状态。

// 量价形态净计数的回看窗口
const tavPatternLookback = 10

// TAVScore TAV评分结果
type TAVScore struct {
	Trend     float64 `json:"trend_score"`
	Momentum  float64 `json:"momentum_score"`
	Volume    float64 `json:"volume_score"`
	Composite float64 `json:"composite_score"`
	Status    string  `json:"status"` // none/weak/medium/strong
	Class     string  `json:"asset_class"`
}

// ScoreTAV 在序列最后一根K线上计算TAV评分
func ScoreTAV(f *IndicatorFrame, vs *VolumeSignals, p AssetProfile) TAVScore {
	return ScoreTAVAt(f, vs, p, f.Len()-1)
}

// ScoreTAVAt 在指定索引处计算TAV评分。每次调用全新计算，不做增量缓存。
func ScoreTAVAt(f *IndicatorFrame, vs *VolumeSignals, p AssetProfile, i int) TAVScore {
	s := TAVScore{Class: p.Class.String()}
	if i < 0 || i >= f.Len() {
		s.Trend, s.Momentum, s.Volume = 40, 50, 40
		s.Composite = composite(s, p)
		s.Status = statusFor(s.Composite, p)
		return s
	}

	s.Trend = trendScore(f, p, i)
	s.Momentum = momentumScore(f, p, i)
	s.Volume = volumeScore(vs, p, i)
	s.Composite = composite(s, p)
	s.Status = statusFor(s.Composite, p)
	return s
}

func composite(s TAVScore, p AssetProfile) float64 {
	c := s.Trend*p.TrendWeight + s.Momentum*p.MomentumWeight + s.Volume*p.VolumeWeight
	return clip(c, 0, 100)
}

func statusFor(composite float64, p AssetProfile) string {
	switch {
	case composite >= p.StrongThreshold:
		return "strong"
	case composite >= p.MediumThreshold:
		return "medium"
	case composite >= p.WeakThreshold:
		return "weak"
	}
	return "none"
}

// trendScore 趋势子分：看价格与可用均线的排列。
// 完整多头排列95、偏多80、混乱50、偏空30、完整空头15；
// 只有2条均线时退化为{75,50,25}三档；不足2条返回中性默认40。
func trendScore(f *IndicatorFrame, p AssetProfile, i int) float64 {
	price := f.Bars[i].Close

	// 画像指定的周期里凑齐当前有效的均线值
	var mas []float64
	for _, period := range p.MAPeriods {
		col := f.MA(period)
		if col != nil && Valid(col[i]) {
			mas = append(mas, col[i])
		}
	}
	// 画像周期不够时回退到全部标准周期
	if len(mas) < 2 {
		mas = mas[:0]
		for _, period := range maPeriods {
			col := f.MA(period)
			if col != nil && Valid(col[i]) {
				mas = append(mas, col[i])
			}
		}
	}
	if len(mas) < 2 {
		return 40
	}

	// 链条：价格、短均线…长均线，统计相邻比较的方向
	chain := append([]float64{price}, mas...)
	ups, downs := 0, 0
	for j := 0; j+1 < len(chain); j++ {
		if chain[j] > chain[j+1] {
			ups++
		} else if chain[j] < chain[j+1] {
			downs++
		}
	}
	total := len(chain) - 1

	if len(mas) == 2 {
		switch {
		case ups == total:
			return 75
		case downs == total:
			return 25
		}
		return 50
	}

	switch {
	case ups == total:
		return 95
	case downs == total:
		return 15
	case ups > downs:
		return 80
	case downs > ups:
		return 30
	}
	return 50
}

// momentumScore 动量子分：基准50，RSI/MACD/随机指标逐项加减后裁剪
func momentumScore(f *IndicatorFrame, p AssetProfile, i int) float64 {
	score := 50.0

	if Valid(f.RSI[i]) {
		switch {
		case f.RSI[i] > p.RSIOverbought:
			score += 15
		case f.RSI[i] < p.RSIOversold:
			score -= 15
		case f.RSI[i] > 50:
			score += 10
		case f.RSI[i] < 50:
			score -= 10
		}
	}

	if i >= 1 && Valid(f.MACD[i]) && Valid(f.MACDSignal[i]) {
		switch {
		case freshAbove(f.MACD, f.MACDSignal, i):
			score += 20
		case freshBelow(f.MACD, f.MACDSignal, i):
			score -= 20
		case Valid(f.MACDHist[i]) && f.MACDHist[i] > 0:
			score += 10
		case Valid(f.MACDHist[i]) && f.MACDHist[i] < 0:
			score -= 10
		}
	}

	if Valid(f.StochK[i]) && Valid(f.StochD[i]) {
		if f.StochK[i] > f.StochD[i] {
			score += 10
			if i >= 1 && Valid(f.StochK[i-1]) && f.StochK[i] > f.StochK[i-1] {
				score += 5
			}
		} else if f.StochK[i] < f.StochD[i] {
			score -= 10
			if i >= 1 && Valid(f.StochK[i-1]) && f.StochK[i] < f.StochK[i-1] {
				score -= 5
			}
		}
	}

	return clip(score, 0, 100)
}

// volumeScore 量能子分：基准40，按画像的放量档位加分、缩量减分，
// 再按回看窗口内量价形态的净方向做±5/个、±20封顶的修正。
func volumeScore(vs *VolumeSignals, p AssetProfile, i int) float64 {
	score := 40.0

	if ratio := vs.Ratio[i]; Valid(ratio) {
		switch {
		case ratio > p.SurgeStrong:
			score += 40
		case ratio > p.SurgeMedium:
			score += 25
		case ratio > p.SurgeWeak:
			score += 15
		case ratio < p.Shrink:
			score -= 20
		}
	}

	net := 0
	start := i - tavPatternLookback + 1
	if start < 0 {
		start = 0
	}
	for j := start; j <= i; j++ {
		if vs.BullishPattern(j) {
			net++
		}
		if vs.BearishPattern(j) {
			net--
		}
	}
	score += clip(float64(net)*5, -20, 20)

	return clip(score, 0, 100)
}
