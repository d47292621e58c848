// Package profiles provides REST API handlers for user onboarding profiles.
package profiles

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/nutrition"
	"github.com/nutriwise/nutriwise-api/internal/service/profile"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ProfileService interface for profile operations.
type ProfileService interface {
	Save(ctx context.Context, userID uint, input profile.Input) (*models.UserProfile, error)
	Get(ctx context.Context, userID uint) (*models.UserProfile, error)
	GetDietaryProfile(ctx context.Context, userID uint) (*nutrition.DietaryProfile, error)
}

// Handler handles profile API requests.
type Handler struct {
	service ProfileService
	log     *logger.Logger
}

// NewHandler creates a new profiles handler.
func NewHandler(service *profile.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new profiles handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service ProfileService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Save creates or updates the caller's profile.
// POST /api/user-details.
func (h *Handler) Save(c *gin.Context) {
	userID := middleware.AccountID(c)

	var input profile.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.Save(c.Request.Context(), userID, input)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to save profile")
		h.errorResponse(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// Get returns the caller's profile.
// GET /api/user-details.
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.AccountID(c)

	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get profile")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetDietary returns the derived diet label and exclusion lists.
// GET /api/user-details/dietary.
func (h *Handler) GetDietary(c *gin.Context) {
	userID := middleware.AccountID(c)

	dietary, err := h.service.GetDietaryProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to derive dietary profile")
		h.errorResponse(c, http.StatusInternalServerError, "failed to derive dietary profile")
		return
	}

	c.JSON(http.StatusOK, dietary)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
