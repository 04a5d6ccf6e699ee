package handlers

import (
	"net/http"

	"trading-contests/internal/auth"
	"trading-contests/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	ledgerService  *services.LedgerService
	paymentService *services.PaymentService
}

func NewWalletHandler(ledgerService *services.LedgerService, paymentService *services.PaymentService) *WalletHandler {
	return &WalletHandler{
		ledgerService:  ledgerService,
		paymentService: paymentService,
	}
}

// GetWallet returns the user's credit wallet
// GET /api/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	wallet, err := h.ledgerService.GetWallet(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// GetTransactions returns the user's ledger history
// GET /api/wallet/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	transactions, err := h.ledgerService.GetTransactions(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// RequestWithdrawal debits credits and opens a payout request
// POST /api/wallet/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.paymentService.RequestWithdrawal(userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// DepositWebhook is called by the payment provider when a deposit clears.
// Replays of the same provider transaction are acknowledged without a
// second credit.
// POST /webhooks/deposit
func (h *WalletHandler) DepositWebhook(c *gin.Context) {
	var req struct {
		UserID       uint            `json:"user_id" binding:"required"`
		Amount       decimal.Decimal `json:"amount" binding:"required"`
		ProviderTxID string          `json:"provider_tx_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.paymentService.HandleDepositConfirmed(req.UserID, req.Amount, req.ProviderTxID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction_id": transaction.ID})
}

// PayoutWebhook is called by the payment provider with a withdrawal verdict
// POST /webhooks/payout
func (h *WalletHandler) PayoutWebhook(c *gin.Context) {
	var req struct {
		WithdrawalID string `json:"withdrawal_id" binding:"required"`
		Status       string `json:"status" binding:"required"`
		FailReason   string `json:"fail_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawalID, err := uuid.Parse(req.WithdrawalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	request, err := h.paymentService.HandlePayoutResult(withdrawalID, req.Status == "completed", req.FailReason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
