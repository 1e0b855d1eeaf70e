package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hk-quant-toolkit/internal/analysis"
	"hk-quant-toolkit/internal/marketdata"
)

// GetKline 获取K线数据
func (h *Handler) GetKline(c *gin.Context) {
	code := c.Param("code")

	kline, err := marketdata.GetKline(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, kline)
}

// GetIndicators 获取全量技术指标序列。NaN预热段序列化为null。
func (h *Handler) GetIndicators(c *gin.Context) {
	code := c.Param("code")

	kline, err := marketdata.GetKline(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	f := analysis.ComputeFrame(kline.Data)
	dates := make([]string, f.Len())
	for i, b := range f.Bars {
		dates[i] = b.Date
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  kline.Code,
		"name":  kline.Name,
		"dates": dates,
		"indicators": gin.H{
			"ma5":          nullable(f.MA5),
			"ma10":         nullable(f.MA10),
			"ma20":         nullable(f.MA20),
			"ma50":         nullable(f.MA50),
			"ma100":        nullable(f.MA100),
			"ma200":        nullable(f.MA200),
			"rsi":          nullable(f.RSI),
			"macd":         nullable(f.MACD),
			"macd_signal":  nullable(f.MACDSignal),
			"macd_hist":    nullable(f.MACDHist),
			"boll_upper":   nullable(f.BollUpper),
			"boll_middle":  nullable(f.BollMiddle),
			"boll_lower":   nullable(f.BollLower),
			"boll_pos":     nullable(f.BollPos),
			"stoch_k":      nullable(f.StochK),
			"stoch_d":      nullable(f.StochD),
			"atr":          nullable(f.ATR),
			"cci":          nullable(f.CCI),
			"obv":          nullable(f.OBV),
			"cmf":          nullable(f.CMF),
			"volume_ma20":  nullable(f.VolumeMA20),
			"volume_ratio": nullable(f.VolumeRatio),
		},
	})
}

// GetSignals 获取信号事件序列
func (h *Handler) GetSignals(c *gin.Context) {
	code := c.Param("code")

	kline, err := marketdata.GetKline(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	f := analysis.ComputeFrame(kline.Data)
	vs := analysis.ClassifyVolume(f)
	res := analysis.DetectSignals(f, vs)

	c.JSON(http.StatusOK, gin.H{
		"code":   kline.Code,
		"name":   kline.Name,
		"events": res.Events,
	})
}

// GetTAV 获取TAV评分
func (h *Handler) GetTAV(c *gin.Context) {
	code := c.Param("code")

	kline, err := marketdata.GetKline(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	f := analysis.ComputeFrame(kline.Data)
	vs := analysis.ClassifyVolume(f)
	profile := analysis.ProfileForSymbol(kline.Code)
	score := analysis.ScoreTAV(f, vs, profile)

	c.JSON(http.StatusOK, gin.H{
		"code": kline.Code,
		"name": kline.Name,
		"tav":  score,
	})
}

// GetTrendHealth 获取趋势健康度评分
func (h *Handler) GetTrendHealth(c *gin.Context) {
	code := c.Param("code")

	kline, err := marketdata.GetKline(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	benchmark, err := marketdata.GetIndexKline(c.Request.Context(), h.analyzer.Benchmark())
	if err != nil {
		benchmark = nil
	}

	f := analysis.ComputeFrame(kline.Data)
	health := analysis.ScoreTrendHealth(f, benchmark)

	c.JSON(http.StatusOK, gin.H{
		"code":      kline.Code,
		"name":      kline.Name,
		"benchmark": h.analyzer.Benchmark(),
		"health":    health,
	})
}

// Analyze 对一组股票执行完整分析
func (h *Handler) Analyze(c *gin.Context) {
	var req struct {
		Codes []string `json:"codes" binding:"required,min=1,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	items := h.analyzer.AnalyzeBatch(c.Request.Context(), req.Codes)
	c.JSON(http.StatusOK, gin.H{
		"data": items,
	})
}

// GetHistory 查询历史信号与评分快照
func (h *Handler) GetHistory(c *gin.Context) {
	code := c.Param("code")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	signals, snapshots, err := h.analyzer.History(c.Request.Context(), code, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"signals":   signals,
		"snapshots": snapshots,
	})
}

// nullable 把NaN转成null，保证JSON可序列化
func nullable(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		if analysis.Valid(xs[i]) {
			v := xs[i]
			out[i] = &v
		}
	}
	return out
}
