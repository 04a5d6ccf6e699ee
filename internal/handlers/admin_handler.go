package handlers

import (
	"net/http"
	"time"

	"trading-contests/internal/auth"
	"trading-contests/internal/models"
	"trading-contests/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminHandler exposes the operator surface: contest management, manual
// settlement triggers and balance adjustments. Every mutating action writes
// an AdminLog row.
type AdminHandler struct {
	db             *gorm.DB
	contestService *services.ContestService
	riskService    *services.RiskService
	ledgerService  *services.LedgerService
	paymentService *services.PaymentService
	userService    *services.UserService
}

func NewAdminHandler(db *gorm.DB, contestService *services.ContestService, riskService *services.RiskService,
	ledgerService *services.LedgerService, paymentService *services.PaymentService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		db:             db,
		contestService: contestService,
		riskService:    riskService,
		ledgerService:  ledgerService,
		paymentService: paymentService,
		userService:    userService,
	}
}

// RequireAdmin aborts the request unless the authenticated user is an admin.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		admin, ok := h.userService.IsAdmin(userID)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Set("admin_id", admin.ID)
		c.Next()
	}
}

func (h *AdminHandler) logAction(c *gin.Context, action, resourceType string, resourceID *uint, details models.JSONB) {
	adminID, _ := c.Get("admin_id")
	id, _ := adminID.(uint)
	entry := models.AdminLog{
		AdminID:      id,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
	_ = h.db.Create(&entry).Error
}

// CreateContest creates a contest in draft status
// POST /api/admin/contests
func (h *AdminHandler) CreateContest(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req services.CreateContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contest, err := h.contestService.CreateContest(req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "create_contest", "contest", &contest.ID, models.JSONB{"name": contest.Name})
	c.JSON(http.StatusCreated, contest)
}

// PublishContest opens a draft contest for joining
// POST /api/admin/contests/:id/publish
func (h *AdminHandler) PublishContest(c *gin.Context) {
	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	contest, err := h.contestService.Publish(contestID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "publish_contest", "contest", &contestID, nil)
	c.JSON(http.StatusOK, contest)
}

// TriggerFinalize finalizes a contest ahead of the sweep
// POST /api/admin/contests/:id/finalize
func (h *AdminHandler) TriggerFinalize(c *gin.Context) {
	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	result, err := h.contestService.Finalize(c.Request.Context(), contestID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "trigger_finalize", "contest", &contestID, models.JSONB{"replayed": result.Replayed})
	c.JSON(http.StatusOK, result)
}

// TriggerCancel cancels a contest and refunds entry fees
// POST /api/admin/contests/:id/cancel
func (h *AdminHandler) TriggerCancel(c *gin.Context) {
	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contestService.CancelAndRefund(c.Request.Context(), contestID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "trigger_cancel", "contest", &contestID,
		models.JSONB{"reason": req.Reason, "failed_refunds": result.Failed})
	c.JSON(http.StatusOK, result)
}

// ForceClosePosition closes any open position at market
// POST /api/admin/positions/:id/close
func (h *AdminHandler) ForceClosePosition(c *gin.Context) {
	positionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}

	var position models.Position
	if err := h.db.First(&position, "id = ?", positionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}

	closed, err := h.riskService.ClosePosition(c.Request.Context(), position.UserID, positionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "force_close_position", "position", nil,
		models.JSONB{"position_id": positionID.String(), "user_id": position.UserID})
	c.JSON(http.StatusOK, closed)
}

// AdjustBalance applies a signed manual correction to a user's wallet
// POST /api/admin/users/:id/adjust
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		Amount        decimal.Decimal `json:"amount" binding:"required"`
		CorrelationID string          `json:"correlation_id" binding:"required"`
		Reason        string          `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.ledgerService.Adjust(userID, req.Amount, req.CorrelationID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "adjust_balance", "user", &userID,
		models.JSONB{"amount": req.Amount.String(), "reason": req.Reason})
	c.JSON(http.StatusOK, transaction)
}

// StaleWithdrawals reports payout requests stuck in processing
// GET /api/admin/withdrawals/stale?hours=24
func (h *AdminHandler) StaleWithdrawals(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		if v, err := parseID(raw); err == nil && v > 0 {
			hours = int(v)
		}
	}

	stale, err := h.paymentService.StaleProcessing(time.Duration(hours) * time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stale withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": stale, "count": len(stale)})
}
