package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// ProfileRepository handles user profile database operations.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a profile.
func (r *ProfileRepository) Create(profile *models.UserProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves the profile for a user.
func (r *ProfileRepository) GetByUserID(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

// Update saves a profile.
func (r *ProfileRepository) Update(profile *models.UserProfile) error {
	if err := r.db.Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// List retrieves all profiles.
func (r *ProfileRepository) List() ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := r.db.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// ListWithUsers retrieves all profiles with their user rows preloaded.
func (r *ProfileRepository) ListWithUsers() ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := r.db.Preload("User").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles with users: %w", err)
	}
	return profiles, nil
}

// UpdateCurrentWeight updates only the current-weight field of a profile.
func (r *ProfileRepository) UpdateCurrentWeight(userID uint, weight string) error {
	err := r.db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("current_weight", weight).Error
	if err != nil {
		return fmt.Errorf("failed to update current weight: %w", err)
	}
	return nil
}

// DeleteOrphans removes profiles whose user row no longer exists. Returns
// the number of profiles removed.
func (r *ProfileRepository) DeleteOrphans() (int64, error) {
	res := r.db.
		Where("user_id NOT IN (?)", r.db.Model(&models.User{}).Select("id")).
		Delete(&models.UserProfile{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete orphan profiles: %w", res.Error)
	}
	return res.RowsAffected, nil
}
