// Package metrics 进程内Prometheus指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalyzeTotal 分析请求计数，按结果区分
	AnalyzeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hkquant",
		Name:      "analyze_total",
		Help:      "Number of stock analyses, labelled by outcome.",
	}, []string{"outcome"})

	// SignalEventsTotal 产出的信号事件计数，按方向区分
	SignalEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hkquant",
		Name:      "signal_events_total",
		Help:      "Number of emitted signal events, labelled by kind.",
	}, []string{"kind"})

	// KlineFetchSeconds 行情拉取耗时
	KlineFetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hkquant",
		Name:      "kline_fetch_seconds",
		Help:      "Latency of upstream kline fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	// BatchRunSeconds 批量分析整体耗时
	BatchRunSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hkquant",
		Name:      "batch_run_seconds",
		Help:      "Wall time of watchlist batch analyses.",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
	})
)

// Handler 暴露/metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}
