// Package models defines domain models for the NutriWise backend.
package models

import (
	"time"
)

// User represents an app user together with their gamification state.
// XP is monotonically non-decreasing; Coins never go below zero (redemption
// is rejected first); Level is derived from XP and only ever increases.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	XP           int       `gorm:"not null;default:0" json:"xp"`
	Coins        int       `gorm:"not null;default:0" json:"coins"`
	Level        int       `gorm:"not null;default:1" json:"level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	RewardUnlocks  []RewardUnlock  `gorm:"foreignKey:UserID" json:"reward_unlocks,omitempty"`
	InventoryItems []InventoryItem `gorm:"foreignKey:UserID" json:"inventory,omitempty"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// RewardUnlock is one entry in a user's append-only unlock log. A reward id
// may appear once per cycle; CycleKey encodes the cycle (calendar day for
// daily rewards, ISO week for weekly ones) and the unique index makes a
// concurrent double-append a no-op.
type RewardUnlock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_unlock_cycle" json:"user_id"`
	RewardID   string    `gorm:"not null;size:100;uniqueIndex:idx_unlock_cycle" json:"reward_id"`
	CycleKey   string    `gorm:"not null;size:20;uniqueIndex:idx_unlock_cycle" json:"cycle_key"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName specifies the table name for RewardUnlock model.
func (RewardUnlock) TableName() string {
	return "reward_unlocks"
}

// InventoryItem records a shop item a user has redeemed.
type InventoryItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	ItemID     string    `gorm:"not null;size:100" json:"item_id"`
	AcquiredAt time.Time `gorm:"not null" json:"acquired_at"`
}

// TableName specifies the table name for InventoryItem model.
func (InventoryItem) TableName() string {
	return "inventory_items"
}
