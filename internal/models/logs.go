package models

import (
	"time"
)

// MealType constants.
const (
	MealTypeBreakfast = "Breakfast"
	MealTypeLunch     = "Lunch"
	MealTypeDinner    = "Dinner"
	MealTypeSnack     = "Snack"
)

// FoodLog source markers distinguish user-entered entries from ones
// materialized by a shop redemption.
const (
	FoodLogSourceUser       = "user"
	FoodLogSourceRedemption = "redemption"
)

// Nutrients is the macro profile of a logged food item.
type Nutrients struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugar         float64 `json:"sugar"`
}

// FoodLog represents one logged food item.
type FoodLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_food_user_date" json:"user_id"`
	Date        time.Time `gorm:"not null;index:idx_food_user_date" json:"date"`
	MealType    string    `gorm:"not null;size:20" json:"meal_type"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Brands      string    `gorm:"size:255" json:"brands,omitempty"`
	ImageURL    string    `gorm:"type:text" json:"image_url,omitempty"`
	Nutrients   Nutrients `gorm:"embedded;embeddedPrefix:nutrient_" json:"nutrients"`
	Source      string    `gorm:"not null;size:20;default:user" json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for FoodLog model.
func (FoodLog) TableName() string {
	return "food_logs"
}

// ActivityLog represents one logged workout. WeightAtLog snapshots the
// weight used for the calorie estimate.
type ActivityLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_activity_user_date" json:"user_id"`
	ActivityName   string    `gorm:"not null;size:100" json:"activity_name"`
	DurationMin    int       `gorm:"not null" json:"duration_min"`
	CaloriesBurned float64   `gorm:"not null" json:"calories_burned"`
	WeightAtLog    float64   `json:"weight_at_log,omitempty"`
	Date           time.Time `gorm:"not null;index:idx_activity_user_date" json:"date"`
}

// TableName specifies the table name for ActivityLog model.
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// WaterLog aggregates water intake per user per calendar day. Date is
// normalized to local midnight; one row per day.
type WaterLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_water_user_day" json:"user_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_water_user_day" json:"date"`
	AmountML  int       `gorm:"column:amount_ml;not null;default:0" json:"amount_ml"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for WaterLog model.
func (WaterLog) TableName() string {
	return "water_logs"
}

// WeightLog stores one weight entry per user per calendar day.
type WeightLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_weight_user_day" json:"user_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_weight_user_day" json:"date"`
	Weight    float64   `gorm:"not null" json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for WeightLog model.
func (WeightLog) TableName() string {
	return "weight_logs"
}
