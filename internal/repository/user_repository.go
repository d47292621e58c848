package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository handles user and gamification-state database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// List retrieves all users.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateGamification persists the gamification totals on a user row.
func (r *UserRepository) UpdateGamification(userID uint, xp, coins, level int) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"xp": xp, "coins": coins, "level": level}).Error
	if err != nil {
		return fmt.Errorf("failed to update gamification state: %w", err)
	}
	return nil
}

// Delete removes a user and their dependent rows (profile, meal plans,
// unlock log, inventory, logs).
func (r *UserRepository) Delete(userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.RewardUnlock{},
			&models.InventoryItem{},
			&models.FoodLog{},
			&models.ActivityLog{},
			&models.WaterLog{},
			&models.WeightLog{},
			&models.Complaint{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete dependent rows: %w", err)
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserProfile{}).Error; err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.MealPlan{}).Error; err != nil {
			return fmt.Errorf("failed to delete meal plans: %w", err)
		}
		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// GrowthByDay returns per-day signup counts ordered by date, formatted
// YYYY-MM-DD.
func (r *UserRepository) GrowthByDay() ([]DateCount, error) {
	// Date formatting differs between the production dialect and the
	// SQLite test dialect.
	dateExpr := "to_char(created_at, 'YYYY-MM-DD')"
	if r.db.Dialector.Name() == "sqlite" {
		dateExpr = "strftime('%Y-%m-%d', created_at)"
	}

	var rows []DateCount
	err := r.db.Model(&models.User{}).
		Select(dateExpr + " AS date, COUNT(*) AS count").
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user growth: %w", err)
	}
	return rows, nil
}

// DateCount is one (day, count) aggregation row.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
