package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hk-quant-toolkit/internal/model"
	"hk-quant-toolkit/internal/service"
)

// SimulateTrade 模拟港股交易成本
func (h *Handler) SimulateTrade(c *gin.Context) {
	var req model.TradeSimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	result, err := service.SimulateTrade(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
