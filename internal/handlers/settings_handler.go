package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
	adminService    *services.AdminService
}

func NewSettingsHandler(settingsService *services.SettingsService, adminService *services.AdminService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, adminService: adminService}
}

// List returns all bot settings
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settingsService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// Update sets a single setting value
func (h *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		Value       decimal.Decimal `json:"value" binding:"required"`
		Description string          `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsService.Update(req.Name, req.Value, req.Description); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Setting updated"})
}

// RotateShortener replaces the active URL shortener provider
func (h *SettingsHandler) RotateShortener(c *gin.Context) {
	var req struct {
		Domain string `json:"domain" binding:"required"`
		APIKey string `json:"api_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.RotateShortener(req.Domain, req.APIKey); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shortener updated"})
}
