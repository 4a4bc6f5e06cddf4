package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

type LinkHandler struct {
	linkService *services.RewardLinkService
}

func NewLinkHandler(linkService *services.RewardLinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// Request hands the user a reward link, minting one if needed
func (h *LinkHandler) Request(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.linkService.RequestLink(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// Claim credits a user for following their link
func (h *LinkHandler) Claim(c *gin.Context) {
	var req struct {
		UserID  int64  `json:"user_id" binding:"required"`
		Payload string `json:"payload" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.linkService.Claim(req.UserID, req.Payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// Revoke deactivates a link administratively
func (h *LinkHandler) Revoke(c *gin.Context) {
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	if err := h.linkService.Revoke(uint(linkID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Link revoked"})
}
