// Package mealplan serves stored weekly meal plans: the latest plan for a
// user, the slice of it that applies today, and marking individual meals as
// logged. Plans arrive as a full week document from the client and are kept
// verbatim.
package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

var (
	// ErrNoMealsToday indicates the latest plan has no day matching today.
	ErrNoMealsToday = errors.New("no meals planned for today")
	// ErrMealNotFound indicates the meal id is not in the latest plan.
	ErrMealNotFound = errors.New("meal not found in plan")
	// ErrInvalidPlan indicates the submitted plan document is unusable.
	ErrInvalidPlan = errors.New("invalid meal plan")
)

// MealPlanRepository defines the meal plan storage operations needed by the service.
type MealPlanRepository interface {
	Create(plan *models.MealPlan) error
	GetLatestByUser(userID uint) (*models.MealPlan, error)
	Update(plan *models.MealPlan) error
}

// Service handles meal plan business logic.
type Service struct {
	repo MealPlanRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewService creates a new meal plan service.
func NewService(repo *repository.MealPlanRepository, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, log)
}

// NewServiceWithInterfaces creates a new meal plan service with interfaces (for testing).
func NewServiceWithInterfaces(repo MealPlanRepository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// SavePlan stores a new weekly plan document for a user. The document must
// decode into the day1..day7 shape; everything else about it is preserved
// as-is.
func (s *Service) SavePlan(ctx context.Context, userID uint, weekStart time.Time, meals, nutrients json.RawMessage) (*models.MealPlan, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	week, err := decodeWeek(meals)
	if err != nil {
		return nil, err
	}
	if len(week) == 0 {
		return nil, fmt.Errorf("%w: empty week document", ErrInvalidPlan)
	}

	plan := &models.MealPlan{
		UserID:    userID,
		WeekStart: weekStart,
		Meals:     meals,
		Nutrients: nutrients,
	}
	if err := s.repo.Create(plan); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Time("week_start", weekStart).
		Int("days", len(week)).
		Msg("Meal plan saved")
	return plan, nil
}

// GetLatest returns the most recent plan for a user.
func (s *Service) GetLatest(ctx context.Context, userID uint) (*models.MealPlan, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	return s.repo.GetLatestByUser(userID)
}

// GetTodayMeals returns the meals scheduled for today from the user's latest
// plan. Returns ErrNoMealsToday when no day in the plan matches today's date.
func (s *Service) GetTodayMeals(ctx context.Context, userID uint) ([]models.PlanMeal, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	plan, err := s.repo.GetLatestByUser(userID)
	if err != nil {
		return nil, err
	}

	week, err := decodeWeek(plan.Meals)
	if err != nil {
		return nil, err
	}

	today := s.now().Format("2006-01-02")
	for _, day := range week {
		if dateMatches(day.Date, today) {
			return day.Meals, nil
		}
	}
	return nil, ErrNoMealsToday
}

// LogMeal marks the meal with the given id as logged in the user's latest
// plan and persists the updated document. Returns the stamped meal.
func (s *Service) LogMeal(ctx context.Context, userID uint, mealID int) (*models.PlanMeal, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	plan, err := s.repo.GetLatestByUser(userID)
	if err != nil {
		return nil, err
	}

	week, err := decodeWeek(plan.Meals)
	if err != nil {
		return nil, err
	}

	var logged *models.PlanMeal
	for dayKey, day := range week {
		for i := range day.Meals {
			if day.Meals[i].ID != mealID {
				continue
			}
			day.Meals[i].LoggedAt = s.now().Format(time.RFC3339)
			week[dayKey] = day
			logged = &day.Meals[i]
		}
		if logged != nil {
			break
		}
	}
	if logged == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMealNotFound, mealID)
	}

	updated, err := json.Marshal(week)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meal plan: %w", err)
	}
	plan.Meals = updated

	if err := s.repo.Update(plan); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Int("meal_id", mealID).
		Str("title", logged.Title).
		Msg("Meal logged from plan")
	return logged, nil
}

// decodeWeek parses a plan document keyed by day1..day7.
func decodeWeek(raw json.RawMessage) (map[string]models.PlanDay, error) {
	var week map[string]models.PlanDay
	if err := json.Unmarshal(raw, &week); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return week, nil
}

// dateMatches compares a plan day's date against a YYYY-MM-DD day. Plan dates
// may carry a time component, so only the date prefix is compared.
func dateMatches(planDate, day string) bool {
	return len(planDate) >= len(day) && planDate[:len(day)] == day
}
