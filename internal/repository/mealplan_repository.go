package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// MealPlanRepository handles meal plan database operations.
type MealPlanRepository struct {
	db *DB
}

// NewMealPlanRepository creates a new meal plan repository.
func NewMealPlanRepository(db *DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Create stores a weekly plan.
func (r *MealPlanRepository) Create(plan *models.MealPlan) error {
	if err := r.db.Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create meal plan: %w", err)
	}
	return nil
}

// GetLatestByUser retrieves the most recent plan for a user.
func (r *MealPlanRepository) GetLatestByUser(userID uint) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := r.db.
		Where("user_id = ?", userID).
		Order("week_start DESC").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan for user %d: %w", userID, err)
	}
	return &plan, nil
}

// Update saves a plan.
func (r *MealPlanRepository) Update(plan *models.MealPlan) error {
	if err := r.db.Save(plan).Error; err != nil {
		return fmt.Errorf("failed to update meal plan: %w", err)
	}
	return nil
}

// Count returns the total number of stored plans.
func (r *MealPlanRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.MealPlan{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count meal plans: %w", err)
	}
	return count, nil
}
