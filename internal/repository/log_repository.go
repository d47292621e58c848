package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// LogRepository handles food, activity, water and weight log operations.
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new log repository.
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

// CreateFoodLog inserts a food log entry.
func (r *LogRepository) CreateFoodLog(entry *models.FoodLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create food log: %w", err)
	}
	return nil
}

// GetFoodLogsByDateRange retrieves food logs in [start, end), oldest first.
func (r *LogRepository) GetFoodLogsByDateRange(userID uint, start, end time.Time) ([]models.FoodLog, error) {
	var logs []models.FoodLog
	err := r.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get food logs: %w", err)
	}
	return logs, nil
}

// CreateActivityLog inserts an activity log entry.
func (r *LogRepository) CreateActivityLog(entry *models.ActivityLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// GetActivityLogsByDateRange retrieves activity logs in [start, end), oldest first.
func (r *LogRepository) GetActivityLogsByDateRange(userID uint, start, end time.Time) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := r.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get activity logs: %w", err)
	}
	return logs, nil
}

// IncrementWater adds the given amount to a user's water log for the day,
// creating the row on first use. Day must be normalized to midnight.
// Returns the day's new total.
func (r *LogRepository) IncrementWater(userID uint, day time.Time, amountML int) (int, error) {
	var total int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var log models.WaterLog
		err := tx.Where("user_id = ? AND date = ?", userID, day).First(&log).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log = models.WaterLog{UserID: userID, Date: day, AmountML: amountML}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			log.AmountML += amountML
			if err := tx.Model(&log).Update("amount_ml", log.AmountML).Error; err != nil {
				return err
			}
		}
		total = log.AmountML
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment water log: %w", err)
	}
	return total, nil
}

// GetWaterLogsSince retrieves water logs at or after the given day, oldest first.
func (r *LogRepository) GetWaterLogsSince(userID uint, since time.Time) ([]models.WaterLog, error) {
	var logs []models.WaterLog
	err := r.db.
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get water logs: %w", err)
	}
	return logs, nil
}

// UpsertWeight records a weight entry for the day, replacing an existing one.
// Day must be normalized to midnight.
func (r *LogRepository) UpsertWeight(userID uint, day time.Time, weight float64) (*models.WeightLog, error) {
	var log models.WeightLog
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND date = ?", userID, day).First(&log).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log = models.WeightLog{UserID: userID, Date: day, Weight: weight}
			return tx.Create(&log).Error
		case err != nil:
			return err
		default:
			log.Weight = weight
			return tx.Model(&log).Update("weight", weight).Error
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert weight log: %w", err)
	}
	return &log, nil
}

// GetRecentWeightLogs retrieves up to limit weight entries, newest first.
func (r *LogRepository) GetRecentWeightLogs(userID uint, limit int) ([]models.WeightLog, error) {
	var logs []models.WeightLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get weight logs: %w", err)
	}
	return logs, nil
}

// LatestWeight returns a user's most recent logged weight, or 0 when none
// exists.
func (r *LogRepository) LatestWeight(userID uint) (float64, error) {
	logs, err := r.GetRecentWeightLogs(userID, 1)
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}
	return logs[0].Weight, nil
}

// PruneOlderThan deletes log rows older than the cutoff across every log
// table. Returns the number of rows removed.
func (r *LogRepository) PruneOlderThan(cutoff time.Time) (int64, error) {
	var removed int64
	for _, model := range []interface{}{
		&models.FoodLog{},
		&models.ActivityLog{},
		&models.WaterLog{},
		&models.WeightLog{},
	} {
		res := r.db.Where("date < ?", cutoff).Delete(model)
		if res.Error != nil {
			return removed, fmt.Errorf("failed to prune logs: %w", res.Error)
		}
		removed += res.RowsAffected
	}
	return removed, nil
}
