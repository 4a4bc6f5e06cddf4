package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

type UserHandler struct {
	userService  *services.UserService
	ledger       *services.LedgerService
	adminService *services.AdminService
}

func NewUserHandler(userService *services.UserService, ledger *services.LedgerService, adminService *services.AdminService) *UserHandler {
	return &UserHandler{userService: userService, ledger: ledger, adminService: adminService}
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return id, true
}

// Register creates a user if needed and reports whether the welcome bonus ran
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		UserID    int64  `json:"user_id" binding:"required"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, created, err := h.userService.GetOrCreate(req.UserID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"data":    user,
		"created": created,
	})
}

// Get returns a user with their balance and summary
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.ledger.GetSummary(userID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":    user,
			"summary": summary,
		},
	})
}

// History returns a user's recent transactions
func (h *UserHandler) History(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.ledger.GetHistory(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// Ban blocks a user from the bot
func (h *UserHandler) Ban(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.SetBanned(userID, true); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User banned"})
}

// Unban lifts a user's ban
func (h *UserHandler) Unban(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.SetBanned(userID, false); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User unbanned"})
}
