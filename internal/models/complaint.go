package models

import (
	"time"
)

// Complaint status constants.
const (
	ComplaintStatusUnresolved = "UNRESOLVED"
	ComplaintStatusInProgress = "IN_PROGRESS"
	ComplaintStatusResolved   = "RESOLVED"
)

// Complaint represents a support request filed from the mobile app and
// worked by admins. Resolving one triggers a notification email.
type Complaint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Email     string    `gorm:"not null;size:255" json:"email"`
	Subject   string    `gorm:"not null;size:255" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"size:20;not null;default:UNRESOLVED;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Complaint model.
func (Complaint) TableName() string {
	return "complaints"
}
