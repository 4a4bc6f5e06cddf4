package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

type TTSHandler struct {
	ttsService *services.TTSService
}

func NewTTSHandler(ttsService *services.TTSService) *TTSHandler {
	return &TTSHandler{ttsService: ttsService}
}

// Quote prices a text without spending
func (h *TTSHandler) Quote(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	words, cost := h.ttsService.Quote(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"word_count": words,
			"cost":       cost,
		},
	})
}

// Speak synthesizes text for a user and debits the cost
func (h *TTSHandler) Speak(c *gin.Context) {
	var req struct {
		UserID int64  `json:"user_id" binding:"required"`
		Text   string `json:"text" binding:"required"`
		Voice  string `json:"voice"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ttsService.Speak(c.Request.Context(), req.UserID, req.Text, req.Voice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"word_count":  result.WordCount,
			"cost":        result.Cost,
			"new_balance": result.NewBalance,
			"audio_bytes": len(result.Audio),
		},
	})
}

// Voices lists the selectable voices
func (h *TTSHandler) Voices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.ttsService.Voices(),
	})
}
