package models

import (
	"time"
)

// Admin represents a dashboard administrator. Accounts only exist after the
// email OTP verification completes, so IsVerified is true for every row the
// normal flow creates; it is kept for manually provisioned accounts.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Admin model.
func (Admin) TableName() string {
	return "admins"
}
