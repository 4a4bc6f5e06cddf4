package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrSelfReferral):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyProcessed), errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyReferred):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientCredits):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrUserBanned), errors.Is(err, services.ErrUserInactive):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrLinkExpired):
		status = http.StatusGone
	case errors.Is(err, services.ErrShortenerUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
