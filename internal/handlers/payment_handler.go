package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	reportService  *services.ReportService
}

func NewPaymentHandler(paymentService *services.PaymentService, reportService *services.ReportService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, reportService: reportService}
}

func parsePaymentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return 0, false
	}
	return uint(id), true
}

// Create records a pending payment request
func (h *PaymentHandler) Create(c *gin.Context) {
	var req struct {
		UserID        int64           `json:"user_id" binding:"required"`
		Amount        decimal.Decimal `json:"amount" binding:"required"`
		TransactionID string          `json:"transaction_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.CreateRequest(req.UserID, req.Amount, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payment,
	})
}

// ListPending returns all pending payment requests
func (h *PaymentHandler) ListPending(c *gin.Context) {
	pending, err := h.paymentService.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pending,
		"count":   len(pending),
	})
}

// Confirm finalizes a pending payment and credits the user
func (h *PaymentHandler) Confirm(c *gin.Context) {
	paymentID, ok := parsePaymentID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.Confirm(paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payment,
	})
}

// Cancel rejects a pending payment
func (h *PaymentHandler) Cancel(c *gin.Context) {
	paymentID, ok := parsePaymentID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.Cancel(paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payment,
	})
}

// GrantBonus applies the patience bonus for a delayed payment
func (h *PaymentHandler) GrantBonus(c *gin.Context) {
	paymentID, ok := parsePaymentID(c)
	if !ok {
		return
	}

	entry, err := h.paymentService.GrantPatienceBonus(paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// Lookup finds payment requests by the user-supplied reference
func (h *PaymentHandler) Lookup(c *gin.Context) {
	txID := c.Query("transaction_id")
	if txID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id is required"})
		return
	}

	matches, err := h.reportService.FindPaymentByTransactionID(txID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    matches,
		"count":   len(matches),
	})
}
