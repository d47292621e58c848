package models

import (
	"encoding/json"
	"time"
)

// MealPlan stores one generated weekly plan for a user. Meals holds the full
// week document (day1..day7, each with a date and a meal list) exactly as
// produced by the plan generator; the API reads it back without reshaping.
type MealPlan struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	WeekStart time.Time       `gorm:"not null;index" json:"week_start"`
	Meals     json.RawMessage `gorm:"type:jsonb;not null" json:"meals"`
	Nutrients json.RawMessage `gorm:"type:jsonb" json:"nutrients,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for MealPlan model.
func (MealPlan) TableName() string {
	return "meal_plans"
}

// PlanDay is the decoded shape of one day inside MealPlan.Meals.
type PlanDay struct {
	Date  string     `json:"date"`
	Meals []PlanMeal `json:"meals"`
}

// PlanMeal is one meal inside a plan day.
type PlanMeal struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	ImageType      string `json:"imageType,omitempty"`
	ReadyInMinutes int    `json:"readyInMinutes,omitempty"`
	Servings       int    `json:"servings,omitempty"`
	SourceURL      string `json:"sourceUrl,omitempty"`
	LoggedAt       string `json:"loggedAt,omitempty"`
}
