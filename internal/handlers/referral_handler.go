package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

type ReferralHandler struct {
	referralService *services.ReferralService
	botUsername     string
}

func NewReferralHandler(referralService *services.ReferralService, botUsername string) *ReferralHandler {
	return &ReferralHandler{referralService: referralService, botUsername: botUsername}
}

// Apply processes a referral code for a newly joined user
func (h *ReferralHandler) Apply(c *gin.Context) {
	var req struct {
		Code   string `json:"code" binding:"required"`
		UserID int64  `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.referralService.Process(req.Code, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// Stats returns a user's referral code, link, and totals
func (h *ReferralHandler) Stats(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	stats, err := h.referralService.Stats(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats": stats,
			"link":  h.referralService.LinkFor(userID, h.botUsername),
		},
	})
}
