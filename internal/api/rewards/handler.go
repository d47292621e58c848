// Package rewards provides REST API handlers for the gamification surface:
// reward evaluation, the rewards state view, and shop redemption.
package rewards

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/rewards"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// RewardsService interface for reward operations.
type RewardsService interface {
	Evaluate(ctx context.Context, userID uint, input rewards.StepInput) (*rewards.EvaluationResult, error)
	GetState(ctx context.Context, userID uint) (*rewards.RewardsState, error)
	Redeem(ctx context.Context, userID uint, itemID string) (*rewards.RedemptionResult, error)
}

// Handler handles rewards API requests.
type Handler struct {
	service RewardsService
	log     *logger.Logger
}

// NewHandler creates a new rewards handler.
func NewHandler(service *rewards.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new rewards handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service RewardsService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Check evaluates the user's rewards with the step data the client carries.
// POST /api/rewards/check.
func (h *Handler) Check(c *gin.Context) {
	userID := middleware.AccountID(c)

	var input rewards.StepInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to evaluate rewards")
		h.errorResponse(c, http.StatusInternalServerError, "failed to evaluate rewards")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetState returns the rewards view: active unlocks, totals, inventory.
// GET /api/rewards.
func (h *Handler) GetState(c *gin.Context) {
	userID := middleware.AccountID(c)

	state, err := h.service.GetState(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get rewards state")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get rewards state")
		return
	}

	c.JSON(http.StatusOK, state)
}

// Redeem exchanges coins for a shop item.
// POST /api/rewards/redeem.
func (h *Handler) Redeem(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		ItemID string `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "itemId is required")
		return
	}

	result, err := h.service.Redeem(c.Request.Context(), userID, req.ItemID)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrUnknownItem):
			h.errorResponse(c, http.StatusBadRequest, "unknown shop item")
		case errors.Is(err, rewards.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "not enough coins",
			})
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "user not found")
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Str("item_id", req.ItemID).Msg("Failed to redeem item")
			h.errorResponse(c, http.StatusInternalServerError, "failed to redeem item")
		}
		return
	}

	h.log.Info().
		Uint("user_id", userID).
		Str("item_id", req.ItemID).
		Int("coins_left", result.Coins).
		Msg("Item redeemed")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"coins":       result.Coins,
		"loggedEntry": result.Entry,
		"message":     "item redeemed",
	})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
