// Package progress serves the My Hub screen and the daily logging
// operations (weight, water, workouts, food).
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/nutrition"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ErrInvalidInput marks requests missing required fields, mapped to 400 at
// the handler boundary.
var ErrInvalidInput = errors.New("invalid input")

// fallbackWeightKg is used for burn estimates when a user never logged a
// weight and has no parseable profile weight.
const fallbackWeightKg = 70.0

// ProfileRepository interface for profile operations.
type ProfileRepository interface {
	GetByUserID(userID uint) (*models.UserProfile, error)
	UpdateCurrentWeight(userID uint, weight string) error
}

// LogRepository interface for log operations.
type LogRepository interface {
	IncrementWater(userID uint, day time.Time, amountML int) (int, error)
	UpsertWeight(userID uint, day time.Time, weight float64) (*models.WeightLog, error)
	GetRecentWeightLogs(userID uint, limit int) ([]models.WeightLog, error)
	GetWaterLogsSince(userID uint, since time.Time) ([]models.WaterLog, error)
	LatestWeight(userID uint) (float64, error)
	CreateActivityLog(entry *models.ActivityLog) error
	CreateFoodLog(entry *models.FoodLog) error
	GetFoodLogsByDateRange(userID uint, start, end time.Time) ([]models.FoodLog, error)
}

// Service aggregates progress data and records daily logs.
type Service struct {
	profileRepo ProfileRepository
	logRepo     LogRepository
	catalog     *catalog.Catalog
	log         *logger.Logger
	now         func() time.Time
}

// NewService creates a new progress service.
func NewService(
	profileRepo *repository.ProfileRepository,
	logRepo *repository.LogRepository,
	cat *catalog.Catalog,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(profileRepo, logRepo, cat, log)
}

// NewServiceWithInterfaces creates a new progress service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	profileRepo ProfileRepository,
	logRepo LogRepository,
	cat *catalog.Catalog,
	log *logger.Logger,
) *Service {
	return &Service{
		profileRepo: profileRepo,
		logRepo:     logRepo,
		catalog:     cat,
		log:         log,
		now:         time.Now,
	}
}

// HubData is the aggregated payload for the My Hub screen. Step data is the
// client's own, passed through untouched.
type HubData struct {
	CurrentWeight      float64   `json:"currentWeight"`
	StartWeight        float64   `json:"startWeight"`
	TargetWeight       float64   `json:"targetWeight"`
	StepGoal           int       `json:"stepGoal"`
	WaterGoalML        int       `json:"waterGoal"`
	WaterConsumedToday int       `json:"waterConsumedToday"`
	HeightMeters       float64   `json:"userHeightInMeters"`
	WeeklyWeightData   []float64 `json:"weeklyWeightData"`
	WeeklyWaterData    []int     `json:"weeklyWaterData"`
	Steps              int       `json:"steps"`
	WeeklyStepsData    []int     `json:"weeklyStepsData"`
}

// GetHub assembles the My Hub payload: profile targets, the last week of
// weight and water entries oldest-first, and the pass-through step data.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetHub(ctx context.Context, userID uint, stepsToday int, weeklySteps []int) (*HubData, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	weightLogs, err := s.logRepo.GetRecentWeightLogs(userID, 7)
	if err != nil {
		return nil, err
	}
	weeklyWeights := make([]float64, 0, len(weightLogs))
	for i := len(weightLogs) - 1; i >= 0; i-- {
		weeklyWeights = append(weeklyWeights, weightLogs[i].Weight)
	}

	now := s.now()
	today := startOfDay(now)
	waterLogs, err := s.logRepo.GetWaterLogsSince(userID, today.AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}
	weeklyWater := make([]int, 0, len(waterLogs))
	waterToday := 0
	for _, entry := range waterLogs {
		weeklyWater = append(weeklyWater, entry.AmountML)
		if entry.Date.Equal(today) {
			waterToday = entry.AmountML
		}
	}

	waterGoal := profile.WaterGoalML
	if waterGoal == 0 {
		waterGoal = 2000
	}
	if weeklySteps == nil {
		weeklySteps = []int{}
	}

	return &HubData{
		CurrentWeight:      nutrition.ParseWeightKg(profile.CurrentWeight),
		StartWeight:        nutrition.ParseWeightKg(profile.StartWeight),
		TargetWeight:       nutrition.ParseWeightKg(profile.TargetWeight),
		StepGoal:           profile.StepGoal,
		WaterGoalML:        waterGoal,
		WaterConsumedToday: waterToday,
		HeightMeters:       nutrition.ParseHeightToCm(profile.Height) / 100,
		WeeklyWeightData:   weeklyWeights,
		WeeklyWaterData:    weeklyWater,
		Steps:              stepsToday,
		WeeklyStepsData:    weeklySteps,
	}, nil
}

// LogWeight records today's weight (one entry per day, replaced on repeat)
// and mirrors it into the profile's current weight.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) LogWeight(ctx context.Context, userID uint, weight float64) (*models.WeightLog, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("%w: weight is required", ErrInvalidInput)
	}

	entry, err := s.logRepo.UpsertWeight(userID, startOfDay(s.now()), weight)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateCurrentWeight(userID, fmt.Sprintf("%g kg", weight)); err != nil {
		// The log entry is the source of truth; a stale profile copy is
		// tolerable.
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to mirror weight into profile")
	}

	return entry, nil
}

// LogWater adds to today's water total and returns the new total.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) LogWater(ctx context.Context, userID uint, amountML int) (int, error) {
	if amountML <= 0 {
		return 0, fmt.Errorf("%w: water amount is required", ErrInvalidInput)
	}
	return s.logRepo.IncrementWater(userID, startOfDay(s.now()), amountML)
}

// LogActivity records a workout. When the client does not supply a burn
// estimate it is derived from the activity's MET value and the user's
// latest logged weight.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) LogActivity(ctx context.Context, userID uint, name string, durationMin int, caloriesBurned float64) (*models.ActivityLog, error) {
	if name == "" || durationMin <= 0 {
		return nil, fmt.Errorf("%w: activity name and duration are required", ErrInvalidInput)
	}

	weight, err := s.logRepo.LatestWeight(userID)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		if profile, err := s.profileRepo.GetByUserID(userID); err == nil {
			weight = nutrition.ParseWeightKg(profile.CurrentWeight)
		}
	}
	if weight == 0 {
		weight = fallbackWeightKg
	}

	if caloriesBurned <= 0 {
		caloriesBurned = nutrition.CaloriesBurned(s.catalog.MET(name), weight, durationMin)
	}

	entry := &models.ActivityLog{
		UserID:         userID,
		ActivityName:   name,
		DurationMin:    durationMin,
		CaloriesBurned: caloriesBurned,
		WeightAtLog:    weight,
		Date:           s.now(),
	}
	if err := s.logRepo.CreateActivityLog(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// FoodLogInput is a user-entered food log request.
type FoodLogInput struct {
	Date        time.Time        `json:"date"`
	MealType    string           `json:"mealType"`
	ProductName string           `json:"product_name"`
	Brands      string           `json:"brands"`
	ImageURL    string           `json:"image_url"`
	Nutrients   models.Nutrients `json:"nutrients"`
}

// LogFood records a user-entered food item.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) LogFood(ctx context.Context, userID uint, input FoodLogInput) (*models.FoodLog, error) {
	if input.MealType == "" || input.ProductName == "" {
		return nil, fmt.Errorf("%w: mealType and product_name are required", ErrInvalidInput)
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	entry := &models.FoodLog{
		UserID:      userID,
		Date:        date,
		MealType:    input.MealType,
		ProductName: input.ProductName,
		Brands:      input.Brands,
		ImageURL:    input.ImageURL,
		Nutrients:   input.Nutrients,
		Source:      models.FoodLogSourceUser,
	}
	if err := s.logRepo.CreateFoodLog(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetFoodLogsForDate retrieves a user's food log for one calendar day.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetFoodLogsForDate(ctx context.Context, userID uint, day time.Time) ([]models.FoodLog, error) {
	start := startOfDay(day)
	return s.logRepo.GetFoodLogsByDateRange(userID, start, start.AddDate(0, 0, 1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
