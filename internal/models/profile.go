package models

import (
	"time"
)

// UserProfile holds onboarding and goal data for a user. Height and weights
// are stored as free-form strings ("172 cm", "68 kg") because the mobile
// client submits them that way; analytics parses them defensively.
type UserProfile struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	User             User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UserName         string     `gorm:"size:255" json:"user_name"`
	Height           string     `gorm:"size:50" json:"height"`
	CurrentWeight    string     `gorm:"size:50" json:"current_weight"`
	TargetWeight     string     `gorm:"size:50" json:"target_weight"`
	StartWeight      string     `gorm:"size:50" json:"start_weight"`
	ActivityLevel    string     `gorm:"size:50" json:"activity_level"`
	CaloriesGoal     int        `json:"calories_goal"`
	StepGoal         int        `gorm:"default:10000" json:"step_goal"`
	WaterGoalML      int        `gorm:"column:water_goal_ml;default:2000" json:"water_goal_ml"`
	SelectedSubGoals StringList `gorm:"type:text" json:"selected_sub_goals"`
	HealthConcerns   BoolMap    `gorm:"type:text" json:"health_concerns"`
	EatingStyles     BoolMap    `gorm:"type:text" json:"eating_styles"`
	Restrictions     BoolMap    `gorm:"type:text" json:"restrictions"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for UserProfile model.
func (UserProfile) TableName() string {
	return "user_profiles"
}
