package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hk-quant-toolkit/internal/analysis"
	"hk-quant-toolkit/internal/marketdata"
	"hk-quant-toolkit/internal/metrics"
	"hk-quant-toolkit/internal/recorder"
)

// 返回给调用方的信号事件条数与落库条数上限
const recentEventLimit = 90

// Analyzer 把行情拉取、指标计算、信号识别和评分串成一次完整分析
type Analyzer struct {
	rec         *recorder.Recorder // 可为nil，此时不落库
	benchmark   string
	limiter     *rate.Limiter
	maxParallel int
}

// AnalysisResult 单只股票的完整分析产出
type AnalysisResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Date string `json:"date"` // 最新交易日

	Close       float64 `json:"close"`
	VolumeRatio float64 `json:"volume_ratio"`

	TAV     analysis.TAVScore      `json:"tav"`
	Health  analysis.TrendHealth   `json:"health"`
	Signals []analysis.SignalEvent `json:"signals"` // 最近的信号事件，新在前
}

// BatchItem 批量分析中单只股票的结果或错误
type BatchItem struct {
	Code   string          `json:"code"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// NewAnalyzer rec可为nil；ratePerSec限制对外部行情源的请求频率
func NewAnalyzer(rec *recorder.Recorder, benchmark string, ratePerSec float64, maxParallel int) *Analyzer {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Analyzer{
		rec:         rec,
		benchmark:   benchmark,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
		maxParallel: maxParallel,
	}
}

// AnalyzeStock 对单只港股执行一次完整分析
func (a *Analyzer) AnalyzeStock(ctx context.Context, code string) (*AnalysisResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	kline, err := marketdata.GetKline(ctx, code)
	metrics.KlineFetchSeconds.WithLabelValues("stock").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(kline.Data) == 0 {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("股票 %s 无K线数据", code)
	}

	// 基准指数失败不阻断分析，相对强弱子分退化为中性
	benchStart := time.Now()
	benchmark, err := marketdata.GetIndexKline(ctx, a.benchmark)
	metrics.KlineFetchSeconds.WithLabelValues("index").Observe(time.Since(benchStart).Seconds())
	if err != nil {
		log.Printf("获取基准指数 %s 失败: %v", a.benchmark, err)
		benchmark = nil
	}

	frame := analysis.ComputeFrame(kline.Data)
	volumes := analysis.ClassifyVolume(frame)
	signals := analysis.DetectSignals(frame, volumes)

	profile := analysis.ProfileForSymbol(kline.Code)
	tav := analysis.ScoreTAV(frame, volumes, profile)
	health := analysis.ScoreTrendHealth(frame, benchmark)

	last := frame.Len() - 1
	result := &AnalysisResult{
		Code:   kline.Code,
		Name:   kline.Name,
		Date:   kline.Data[last].Date,
		Close:  kline.Data[last].Close,
		TAV:    tav,
		Health: health,
	}
	if analysis.Valid(frame.VolumeRatio[last]) {
		result.VolumeRatio = frame.VolumeRatio[last]
	}

	events := signals.Events
	if len(events) > recentEventLimit {
		events = events[len(events)-recentEventLimit:]
	}
	// 新事件在前
	result.Signals = make([]analysis.SignalEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		result.Signals = append(result.Signals, events[i])
	}

	a.persist(ctx, result, events, tav, health)

	for _, e := range events {
		metrics.SignalEventsTotal.WithLabelValues(string(e.Kind)).Inc()
	}
	metrics.AnalyzeTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// persist 信号与快照落库。落库失败只记日志，不影响返回。
func (a *Analyzer) persist(ctx context.Context, r *AnalysisResult, events []analysis.SignalEvent, tav analysis.TAVScore, health analysis.TrendHealth) {
	if a.rec == nil {
		return
	}
	for _, e := range events {
		if err := a.rec.SaveSignal(ctx, r.Code, e.Date, string(e.Kind), e.Reasons, e.TierStr); err != nil {
			log.Printf("信号落库失败(%s %s): %v", r.Code, e.Date, err)
		}
	}
	snap := recorder.SnapshotRecord{
		Code:           r.Code,
		Date:           r.Date,
		Composite:      tav.Composite,
		TrendScore:     tav.Trend,
		MomentumScore:  tav.Momentum,
		VolumeScore:    tav.Volume,
		Status:         tav.Status,
		HealthScore:    health.Score,
		Recommendation: health.Recommendation,
	}
	if err := a.rec.SaveSnapshot(ctx, snap); err != nil {
		log.Printf("快照落库失败(%s): %v", r.Code, err)
	}
}

// AnalyzeBatch 并发分析一组股票，单只失败不影响其余
func (a *Analyzer) AnalyzeBatch(ctx context.Context, codes []string) []BatchItem {
	start := time.Now()
	defer func() {
		metrics.BatchRunSeconds.Observe(time.Since(start).Seconds())
	}()

	results := make([]BatchItem, len(codes))
	sem := make(chan struct{}, a.maxParallel)
	var wg sync.WaitGroup

	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item := BatchItem{Code: code}
			res, err := a.AnalyzeStock(ctx, code)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Result = res
			}
			results[i] = item
		}(i, code)
	}
	wg.Wait()
	return results
}

// History 查询某只股票的历史信号与评分快照
func (a *Analyzer) History(ctx context.Context, code string, limit int) ([]recorder.SignalRecord, []recorder.SnapshotRecord, error) {
	if a.rec == nil {
		return nil, nil, fmt.Errorf("历史查询未启用")
	}
	normalized, err := marketdata.NormalizeCode(code)
	if err != nil {
		return nil, nil, err
	}
	sigs, err := a.rec.Signals(ctx, normalized, limit)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := a.rec.Snapshots(ctx, normalized, limit)
	if err != nil {
		return nil, nil, err
	}
	return sigs, snaps, nil
}

// Benchmark 当前配置的基准指数符号
func (a *Analyzer) Benchmark() string {
	return a.benchmark
}

// 供日报使用的落库访问
func (a *Analyzer) Recorder() *recorder.Recorder {
	return a.rec
}
