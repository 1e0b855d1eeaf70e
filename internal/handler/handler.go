package handler

import (
	"github.com/gin-gonic/gin"

	"hk-quant-toolkit/internal/service"
)

// Handler 持有服务依赖的HTTP处理器集合
type Handler struct {
	analyzer *service.Analyzer
}

func New(analyzer *service.Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

// RegisterRoutes 注册全部API路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		stocks := api.Group("/stocks/:code")
		{
			stocks.GET("/kline", h.GetKline)
			stocks.GET("/indicators", h.GetIndicators)
			stocks.GET("/signals", h.GetSignals)
			stocks.GET("/tav", h.GetTAV)
			stocks.GET("/health", h.GetTrendHealth)
		}

		api.POST("/analyze", h.Analyze)
		api.GET("/history/:code", h.GetHistory)
		api.POST("/trade/simulate", h.SimulateTrade)
	}
}
