// Package progress provides REST API handlers for the tracking surface:
// the progress hub, water/weight logging, workouts and food log entries.
package progress

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/progress"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ProgressService interface for tracking operations.
type ProgressService interface {
	GetHub(ctx context.Context, userID uint, stepsToday int, weeklySteps []int) (*progress.HubData, error)
	LogWater(ctx context.Context, userID uint, amountML int) (int, error)
	LogWeight(ctx context.Context, userID uint, weight float64) (*models.WeightLog, error)
	LogActivity(ctx context.Context, userID uint, name string, durationMin int, caloriesBurned float64) (*models.ActivityLog, error)
	LogFood(ctx context.Context, userID uint, input progress.FoodLogInput) (*models.FoodLog, error)
	GetFoodLogsForDate(ctx context.Context, userID uint, day time.Time) ([]models.FoodLog, error)
}

// Handler handles progress API requests.
type Handler struct {
	service ProgressService
	log     *logger.Logger
}

// NewHandler creates a new progress handler.
func NewHandler(service *progress.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new progress handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service ProgressService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetHub returns the aggregated progress view. The client posts its step
// data because steps live on the device, not the server.
// POST /api/progress/my-hub.
func (h *Handler) GetHub(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		Steps       int   `json:"steps"`
		WeeklySteps []int `json:"weeklySteps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	hub, err := h.service.GetHub(c.Request.Context(), userID, req.Steps, req.WeeklySteps)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to build progress hub")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load progress data")
		return
	}

	c.JSON(http.StatusOK, hub)
}

// LogWater adds to today's water intake.
// POST /api/progress/log-water.
func (h *Handler) LogWater(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	total, err := h.service.LogWater(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidInput) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to log water")
		h.errorResponse(c, http.StatusInternalServerError, "failed to log water")
		return
	}

	c.JSON(http.StatusOK, gin.H{"waterConsumedToday": total})
}

// LogWeight upserts today's weight entry and mirrors it onto the profile.
// POST /api/progress/log-weight.
func (h *Handler) LogWeight(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		Weight float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.LogWeight(c.Request.Context(), userID, req.Weight)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidInput) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to log weight")
		h.errorResponse(c, http.StatusInternalServerError, "failed to log weight")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// LogActivity records a workout. Calories burned are estimated server-side
// when the client does not supply them.
// POST /api/activities.
func (h *Handler) LogActivity(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		ActivityType   string  `json:"activityType"`
		Duration       int     `json:"duration"`
		CaloriesBurned float64 `json:"caloriesBurned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.LogActivity(c.Request.Context(), userID, req.ActivityType, req.Duration, req.CaloriesBurned)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidInput) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to log activity")
		h.errorResponse(c, http.StatusInternalServerError, "failed to log activity")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// LogFood records a custom food entry.
// POST /api/foodlog.
func (h *Handler) LogFood(c *gin.Context) {
	userID := middleware.AccountID(c)

	var input progress.FoodLogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.LogFood(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidInput) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to log food")
		h.errorResponse(c, http.StatusInternalServerError, "failed to log food")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetFoodLogs returns the food entries for one day.
// GET /api/foodlog/:date (YYYY-MM-DD).
func (h *Handler) GetFoodLogs(c *gin.Context) {
	userID := middleware.AccountID(c)

	day, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.Local)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.service.GetFoodLogsForDate(c.Request.Context(), userID, day)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get food logs")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get food logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
