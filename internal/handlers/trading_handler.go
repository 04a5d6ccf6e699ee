package handlers

import (
	"net/http"
	"strconv"

	"trading-contests/internal/auth"
	"trading-contests/internal/repository"
	"trading-contests/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TradingHandler struct {
	riskService *services.RiskService
	repo        *repository.Repository
}

func NewTradingHandler(riskService *services.RiskService, repo *repository.Repository) *TradingHandler {
	return &TradingHandler{
		riskService: riskService,
		repo:        repo,
	}
}

// OpenPosition opens a leveraged position in a contest
// POST /api/positions
func (h *TradingHandler) OpenPosition(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req services.OpenPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.riskService.OpenPosition(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, position)
}

// ClosePosition closes the user's open position at market
// POST /api/positions/:id/close
func (h *TradingHandler) ClosePosition(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	positionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}

	position, err := h.riskService.ClosePosition(c.Request.Context(), userID, positionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// GetOpenPositions lists the user's open positions in a contest
// GET /api/contests/:id/positions
func (h *TradingHandler) GetOpenPositions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	positions, err := h.riskService.GetOpenPositions(contestID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list positions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

// GetTradeHistory lists the user's settled trades in a contest
// GET /api/contests/:id/trades
func (h *TradingHandler) GetTradeHistory(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	trades, err := h.riskService.GetTradeHistory(contestID, userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// GetInstruments lists tradable instruments
// GET /api/instruments
func (h *TradingHandler) GetInstruments(c *gin.Context) {
	instruments, err := h.repo.GetActiveInstruments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list instruments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}
