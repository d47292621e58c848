// Package mealplans provides REST API handlers for stored weekly meal plans.
package mealplans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/mealplan"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// MealPlanService interface for meal plan operations.
type MealPlanService interface {
	SavePlan(ctx context.Context, userID uint, weekStart time.Time, meals, nutrients json.RawMessage) (*models.MealPlan, error)
	GetLatest(ctx context.Context, userID uint) (*models.MealPlan, error)
	GetTodayMeals(ctx context.Context, userID uint) ([]models.PlanMeal, error)
	LogMeal(ctx context.Context, userID uint, mealID int) (*models.PlanMeal, error)
}

// Handler handles meal plan API requests.
type Handler struct {
	service MealPlanService
	log     *logger.Logger
}

// NewHandler creates a new meal plan handler.
func NewHandler(service *mealplan.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new meal plan handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service MealPlanService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Save stores a client-built weekly plan.
// POST /api/mealplan.
func (h *Handler) Save(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		WeekStart string          `json:"weekStart"`
		Meals     json.RawMessage `json:"meals" binding:"required"`
		Nutrients json.RawMessage `json:"nutrients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "meals document is required")
		return
	}

	weekStart, err := time.ParseInLocation("2006-01-02", req.WeekStart, time.Local)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid weekStart, expected YYYY-MM-DD")
		return
	}

	plan, err := h.service.SavePlan(c.Request.Context(), userID, weekStart, req.Meals, req.Nutrients)
	if err != nil {
		if errors.Is(err, mealplan.ErrInvalidPlan) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to save meal plan")
		h.errorResponse(c, http.StatusInternalServerError, "failed to save meal plan")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetLatest returns the user's most recent plan.
// GET /api/mealplan.
func (h *Handler) GetLatest(c *gin.Context) {
	userID := middleware.AccountID(c)

	plan, err := h.service.GetLatest(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "no meal plan found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get meal plan")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get meal plan")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GetToday returns the meals scheduled for today.
// GET /api/mealplan/today.
func (h *Handler) GetToday(c *gin.Context) {
	userID := middleware.AccountID(c)

	meals, err := h.service.GetTodayMeals(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "no meal plan found")
		case errors.Is(err, mealplan.ErrNoMealsToday):
			c.JSON(http.StatusOK, gin.H{"meals": []models.PlanMeal{}})
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get today's meals")
			h.errorResponse(c, http.StatusInternalServerError, "failed to get today's meals")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// LogMeal marks a planned meal as eaten.
// POST /api/mealplan/log/:mealId.
func (h *Handler) LogMeal(c *gin.Context) {
	userID := middleware.AccountID(c)

	mealID, err := strconv.Atoi(c.Param("mealId"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid meal id")
		return
	}

	meal, err := h.service.LogMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "no meal plan found")
		case errors.Is(err, mealplan.ErrMealNotFound):
			h.errorResponse(c, http.StatusNotFound, "meal not found in plan")
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Int("meal_id", mealID).Msg("Failed to log meal")
			h.errorResponse(c, http.StatusInternalServerError, "failed to log meal")
		}
		return
	}

	c.JSON(http.StatusOK, meal)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
