package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
	"tts-credit-bot/internal/services"
)

type HealthHandler struct {
	db          *gorm.DB
	userService *services.UserService
	startedAt   time.Time
}

func NewHealthHandler(db *gorm.DB, userService *services.UserService) *HealthHandler {
	return &HealthHandler{db: db, userService: userService, startedAt: time.Now()}
}

// Health reports liveness
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "running",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// Stats returns top-level platform counters
func (h *HealthHandler) Stats(c *gin.Context) {
	var totalTransactions int64
	var pendingPayments int64
	var activeLinks int64

	totalUsers, err := h.userService.CountUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	h.db.Model(&models.CreditTransaction{}).Count(&totalTransactions)
	h.db.Model(&models.PaymentRequest{}).Where("status = ?", models.PaymentStatusPending).Count(&pendingPayments)
	h.db.Model(&models.RewardLink{}).Where("status = ?", models.LinkStatusActive).Count(&activeLinks)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_users":        totalUsers,
			"total_transactions": totalTransactions,
			"pending_payments":   pendingPayments,
			"active_links":       activeLinks,
		},
	})
}
