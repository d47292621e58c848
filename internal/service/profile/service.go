// Package profile manages user onboarding profiles: goals, measurements,
// health concerns, and the derived daily calorie target.
package profile

import (
	"context"
	"errors"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/nutrition"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ProfileRepository defines the profile storage operations needed by the service.
type ProfileRepository interface {
	Create(profile *models.UserProfile) error
	GetByUserID(userID uint) (*models.UserProfile, error)
	Update(profile *models.UserProfile) error
}

// Service handles profile business logic.
type Service struct {
	repo    ProfileRepository
	catalog *catalog.Catalog
	log     *logger.Logger
}

// NewService creates a new profile service.
func NewService(repo *repository.ProfileRepository, cat *catalog.Catalog, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, cat, log)
}

// NewServiceWithInterfaces creates a new profile service with interfaces (for testing).
func NewServiceWithInterfaces(repo ProfileRepository, cat *catalog.Catalog, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		log:     log,
	}
}

// Input carries the profile fields the mobile client submits. Measurements
// stay free-form strings; parsing happens where they are consumed.
type Input struct {
	UserName         string          `json:"userName"`
	Height           string          `json:"height"`
	CurrentWeight    string          `json:"currentWeight"`
	TargetWeight     string          `json:"targetWeight"`
	ActivityLevel    string          `json:"activityLevel"`
	StepGoal         int             `json:"stepGoal"`
	WaterGoalML      int             `json:"waterGoal"`
	SelectedSubGoals []string        `json:"selectedSubGoals"`
	HealthConcerns   map[string]bool `json:"healthConcerns"`
	EatingStyles     map[string]bool `json:"eatingStyles"`
	Restrictions     map[string]bool `json:"restrictions"`
}

// Save creates or updates the profile for a user. The calorie goal is
// recomputed on every save; the start weight is pinned on first save so later
// weight updates do not rewrite history.
func (s *Service) Save(ctx context.Context, userID uint, input Input) (*models.UserProfile, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	existing, err := s.repo.GetByUserID(userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	caloriesGoal := nutrition.CalorieGoal(input.Height, input.CurrentWeight, input.TargetWeight, input.ActivityLevel)

	if existing == nil {
		profile := &models.UserProfile{
			UserID:           userID,
			UserName:         input.UserName,
			Height:           input.Height,
			CurrentWeight:    input.CurrentWeight,
			TargetWeight:     input.TargetWeight,
			StartWeight:      input.CurrentWeight,
			ActivityLevel:    input.ActivityLevel,
			CaloriesGoal:     caloriesGoal,
			StepGoal:         input.StepGoal,
			WaterGoalML:      input.WaterGoalML,
			SelectedSubGoals: input.SelectedSubGoals,
			HealthConcerns:   input.HealthConcerns,
			EatingStyles:     input.EatingStyles,
			Restrictions:     input.Restrictions,
		}
		if profile.StepGoal <= 0 {
			profile.StepGoal = 10000
		}
		if profile.WaterGoalML <= 0 {
			profile.WaterGoalML = 2000
		}
		if err := s.repo.Create(profile); err != nil {
			return nil, err
		}
		s.log.Info().
			Uint("user_id", userID).
			Int("calories_goal", caloriesGoal).
			Msg("Profile created")
		return profile, nil
	}

	existing.UserName = input.UserName
	existing.Height = input.Height
	existing.CurrentWeight = input.CurrentWeight
	existing.TargetWeight = input.TargetWeight
	existing.ActivityLevel = input.ActivityLevel
	existing.CaloriesGoal = caloriesGoal
	if input.StepGoal > 0 {
		existing.StepGoal = input.StepGoal
	}
	if input.WaterGoalML > 0 {
		existing.WaterGoalML = input.WaterGoalML
	}
	if input.SelectedSubGoals != nil {
		existing.SelectedSubGoals = input.SelectedSubGoals
	}
	if input.HealthConcerns != nil {
		existing.HealthConcerns = input.HealthConcerns
	}
	if input.EatingStyles != nil {
		existing.EatingStyles = input.EatingStyles
	}
	if input.Restrictions != nil {
		existing.Restrictions = input.Restrictions
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	s.log.Info().
		Uint("user_id", userID).
		Int("calories_goal", caloriesGoal).
		Msg("Profile updated")
	return existing, nil
}

// Get returns the profile for a user.
func (s *Service) Get(ctx context.Context, userID uint) (*models.UserProfile, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	return s.repo.GetByUserID(userID)
}

// GetDietaryProfile derives the diet label and excluded ingredients from the
// user's health concerns, eating styles, and restrictions.
func (s *Service) GetDietaryProfile(ctx context.Context, userID uint) (*nutrition.DietaryProfile, error) { //nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
	p, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	dietary := nutrition.DeriveDietaryProfile(s.catalog, p)
	return &dietary, nil
}
