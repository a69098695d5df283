package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"propguard/internal/engine"
	"propguard/internal/logger"
	"propguard/internal/order"
	"propguard/internal/risk"
)

type handlers struct {
	engine *engine.Engine
}

// status 返回账户与追踪概览。
func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.AccountStatus(c.Request.Context()))
}

// marketData 返回全部符号的最新快照。
func (h *handlers) marketData(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.MarketState())
}

func (h *handlers) positions(c *gin.Context) {
	book, err := h.engine.Positions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, book)
}

// analyze 对单个符号触发一次建议请求。
func (h *handlers) analyze(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	verdict, err := h.engine.Advisory(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (h *handlers) riskGate(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CheckRiskGate(c.Request.Context()))
}

// trade 接收下单意图：风控闸门 -> 规范化 -> 路由到经纪通道。
func (h *handlers) trade(c *gin.Context) {
	var intent order.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.engine.Trade(c.Request.Context(), intent)
	if err != nil {
		var blocked *risk.BlockedError
		var invalid *order.ValidationError
		switch {
		case errors.As(err, &blocked):
			logger.Warnf("下单被风控拦截: %s", blocked.Verdict.Reason)
			c.JSON(http.StatusBadRequest, gin.H{"status": "blocked", "reason": blocked.Verdict.Reason})
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "reason": invalid.Reason})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"status": "error", "reason": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// addSymbol 运行时追加一个追踪符号，下一轮数据循环生效。
func (h *handlers) addSymbol(c *gin.Context) {
	var req struct {
		Symbol string `json:"symbol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	if err := h.engine.AddSymbol(c.Request.Context(), req.Symbol); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tracked": h.engine.Symbols()})
}

func (h *handlers) modifyPosition(c *gin.Context) {
	var req struct {
		Ticket int64   `json:"ticket" binding:"required"`
		SL     float64 `json:"sl"`
		TP     float64 `json:"tp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket is required"})
		return
	}
	if err := h.engine.ModifyPosition(c.Request.Context(), req.Ticket, req.SL, req.TP); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) closePosition(c *gin.Context) {
	var req struct {
		Ticket int64 `json:"ticket" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket is required"})
		return
	}
	if err := h.engine.ClosePosition(c.Request.Context(), req.Ticket); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
