package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/services"
)

type CreditHandler struct {
	adminService *services.AdminService
}

func NewCreditHandler(adminService *services.AdminService) *CreditHandler {
	return &CreditHandler{adminService: adminService}
}

// Give credits a single user from the admin dashboard
func (h *CreditHandler) Give(c *gin.Context) {
	var req struct {
		UserID int64           `json:"user_id" binding:"required"`
		Amount decimal.Decimal `json:"amount" binding:"required"`
		Note   string          `json:"note"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.adminService.GiveCredit(req.UserID, req.Amount, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}

// GiveAll credits every registered user
func (h *CreditHandler) GiveAll(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credited, err := h.adminService.GiveCreditToAll(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"credited": credited,
	})
}
