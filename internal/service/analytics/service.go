// Package analytics aggregates user data for the admin dashboard charts.
package analytics

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	Count() (int64, error)
	GrowthByDay() ([]repository.DateCount, error)
	Delete(userID uint) error
}

// ProfileRepository interface for profile operations.
type ProfileRepository interface {
	List() ([]models.UserProfile, error)
	ListWithUsers() ([]models.UserProfile, error)
	DeleteOrphans() (int64, error)
}

// MealPlanRepository interface for meal plan operations.
type MealPlanRepository interface {
	Count() (int64, error)
}

// Service computes the admin dashboard aggregations.
type Service struct {
	userRepo     UserRepository
	profileRepo  ProfileRepository
	mealPlanRepo MealPlanRepository
	log          *logger.Logger
}

// NewService creates a new analytics service.
func NewService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	mealPlanRepo *repository.MealPlanRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, profileRepo, mealPlanRepo, log)
}

// NewServiceWithInterfaces creates a new analytics service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	profileRepo ProfileRepository,
	mealPlanRepo MealPlanRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		mealPlanRepo: mealPlanRepo,
		log:          log,
	}
}

// NameValue is one chart datapoint.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardStats are the headline totals.
type DashboardStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalMealPlans int64 `json:"totalMealPlans"`
}

// UserRow is one entry in the admin user listing.
type UserRow struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	HealthConcerns string `json:"healthConcerns"`
	Goal           string `json:"goal"`
}

// GetDashboardStats returns the headline totals.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	plans, err := s.mealPlanRepo.Count()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{TotalUsers: users, TotalMealPlans: plans}, nil
}

// GetBMIDistribution buckets every profile with parseable height and weight
// into the four standard BMI bands.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBMIDistribution(ctx context.Context) ([]NameValue, error) {
	profiles, err := s.profileRepo.List()
	if err != nil {
		return nil, err
	}

	bands := map[string]int{"Underweight": 0, "Healthy": 0, "Overweight": 0, "Obese": 0}
	valid := 0
	for i := range profiles {
		heightCm := parseMeasure(profiles[i].Height)
		weightKg := parseMeasure(profiles[i].CurrentWeight)
		if heightCm <= 0 || weightKg <= 0 {
			continue
		}
		heightM := heightCm / 100
		bmi := weightKg / (heightM * heightM)
		switch {
		case bmi < 18.5:
			bands["Underweight"]++
		case bmi < 25:
			bands["Healthy"]++
		case bmi < 30:
			bands["Overweight"]++
		default:
			bands["Obese"]++
		}
		valid++
	}

	s.log.Debug().
		Int("profiles", len(profiles)).
		Int("valid", valid).
		Msg("BMI distribution computed")

	// Fixed band order for the chart.
	return []NameValue{
		{"Underweight", bands["Underweight"]},
		{"Healthy", bands["Healthy"]},
		{"Overweight", bands["Overweight"]},
		{"Obese", bands["Obese"]},
	}, nil
}

// GetDietDistribution counts active eating styles across all profiles.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetDietDistribution(ctx context.Context) ([]NameValue, error) {
	profiles, err := s.profileRepo.List()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := range profiles {
		for style, active := range profiles[i].EatingStyles {
			if active {
				counts[style]++
			}
		}
	}
	return sortedByValue(counts, 0), nil
}

// GetGoalDistribution counts selected sub-goals, top ten.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetGoalDistribution(ctx context.Context) ([]NameValue, error) {
	profiles, err := s.profileRepo.List()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := range profiles {
		for _, goal := range profiles[i].SelectedSubGoals {
			counts[goal]++
		}
	}
	return sortedByValue(counts, 10), nil
}

// GetAllergyFrequency counts active health concerns across all profiles.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetAllergyFrequency(ctx context.Context) ([]NameValue, error) {
	profiles, err := s.profileRepo.List()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := range profiles {
		for concern, active := range profiles[i].HealthConcerns {
			if active {
				counts[concern]++
			}
		}
	}
	return sortedByValue(counts, 0), nil
}

// GetUserGrowth returns per-day signup counts, oldest first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserGrowth(ctx context.Context) ([]NameValue, error) {
	rows, err := s.userRepo.GrowthByDay()
	if err != nil {
		return nil, err
	}
	out := make([]NameValue, 0, len(rows))
	for _, row := range rows {
		out = append(out, NameValue{Name: row.Date, Value: row.Count})
	}
	return out, nil
}

// ListUsers returns the admin user listing: email, first goal and active
// health concerns per profile.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListUsers(ctx context.Context) ([]UserRow, error) {
	profiles, err := s.profileRepo.ListWithUsers()
	if err != nil {
		return nil, err
	}

	out := make([]UserRow, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if p.User.ID == 0 {
			// Orphaned profile: the user row is gone.
			continue
		}

		goal := "General Health"
		if len(p.SelectedSubGoals) > 0 {
			goal = p.SelectedSubGoals[0]
		}

		var concerns []string
		for name, active := range p.HealthConcerns {
			if active {
				concerns = append(concerns, capitalize(name))
			}
		}
		sort.Strings(concerns)
		health := "None"
		if len(concerns) > 0 {
			health = strings.Join(concerns, ", ")
		}

		out = append(out, UserRow{
			ID:             p.UserID,
			Email:          p.User.Email,
			HealthConcerns: health,
			Goal:           goal,
		})
	}
	return out, nil
}

// DeleteUser removes a user together with their profile, meal plans and
// logs.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) DeleteUser(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", userID).Msg("User deleted by admin")
	return nil
}

// CleanupOrphans deletes profiles whose user row no longer exists and
// returns the number removed.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) CleanupOrphans(ctx context.Context) (int64, error) {
	deleted, err := s.profileRepo.DeleteOrphans()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("Orphan profiles removed")
	}
	return deleted, nil
}

// parseMeasure extracts the numeric part of a measurement string, ignoring
// units and other noise.
func parseMeasure(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sortedByValue flattens a count map into chart points, highest count
// first, name as tiebreak. limit 0 means no cap.
func sortedByValue(counts map[string]int, limit int) []NameValue {
	out := make([]NameValue, 0, len(counts))
	for name, value := range counts {
		out = append(out, NameValue{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
