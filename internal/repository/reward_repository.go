package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// ErrInsufficientCoins reports a redemption whose guarded coin decrement
// found too small a balance at commit time.
var ErrInsufficientCoins = errors.New("insufficient coins")

// RewardRepository handles the unlock log and redemption inventory.
type RewardRepository struct {
	db *DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// AppendUnlock appends one unlock record. The unique index on
// (user_id, reward_id, cycle_key) turns a concurrent duplicate append into a
// no-op; created reports whether this call inserted the row, so the caller
// only credits XP/coins for rows it actually owns.
func (r *RewardRepository) AppendUnlock(unlock *models.RewardUnlock) (created bool, err error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}, {Name: "cycle_key"}},
		DoNothing: true,
	}).Create(unlock)
	if res.Error != nil {
		return false, fmt.Errorf("failed to append unlock: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetUnlocksSince retrieves unlock records at or after the given time,
// newest first.
func (r *RewardRepository) GetUnlocksSince(userID uint, since time.Time) ([]models.RewardUnlock, error) {
	var unlocks []models.RewardUnlock
	err := r.db.
		Where("user_id = ? AND unlocked_at >= ?", userID, since).
		Order("unlocked_at DESC").
		Find(&unlocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unlocks since %s: %w", since.Format(time.RFC3339), err)
	}
	return unlocks, nil
}

// RecordRedemption applies one shop redemption: the food-log entry, the
// inventory row and the coin decrement commit together or not at all. The
// decrement is relative and guarded on the current balance, so concurrent
// redemptions cannot both spend the same coins; a guard miss rolls the
// whole transaction back with ErrInsufficientCoins. Returns the remaining
// balance.
func (r *RewardRepository) RecordRedemption(userID uint, itemID string, entry *models.FoodLog, cost int) (int, error) {
	var remaining int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		item := &models.InventoryItem{
			UserID:     userID,
			ItemID:     itemID,
			AcquiredAt: time.Now(),
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND coins >= ?", userID, cost).
			Update("coins", gorm.Expr("coins - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientCoins
		}
		return tx.Model(&models.User{}).
			Select("coins").
			Where("id = ?", userID).
			Scan(&remaining).Error
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCoins) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to record redemption: %w", err)
	}
	return remaining, nil
}

// GetInventory retrieves a user's redeemed items, newest first.
func (r *RewardRepository) GetInventory(userID uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.
		Where("user_id = ?", userID).
		Order("acquired_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return items, nil
}
