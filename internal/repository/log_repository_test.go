package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// setupLogTestDB creates an in-memory SQLite database for testing.
func setupLogTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.FoodLog{},
		&models.ActivityLog{},
		&models.WaterLog{},
		&models.WeightLog{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

func createLogTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "hash", Level: 1}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// midnight truncates a time to local midnight, matching how the progress
// service normalizes log days.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func TestLogRepository_IncrementWater_Accumulates(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "water@example.com")

	day := midnight(time.Now())

	total, err := repo.IncrementWater(user.ID, day, 250)
	if err != nil {
		t.Fatalf("Failed to increment water: %v", err)
	}
	if total != 250 {
		t.Errorf("Expected total 250 after first increment, got %d", total)
	}

	total, err = repo.IncrementWater(user.ID, day, 500)
	if err != nil {
		t.Fatalf("Failed to increment water: %v", err)
	}
	if total != 750 {
		t.Errorf("Expected total 750 after second increment, got %d", total)
	}

	var count int64
	db.Model(&models.WaterLog{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single row per user per day, got %d", count)
	}
}

func TestLogRepository_IncrementWater_SeparateDays(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "waterdays@example.com")

	today := midnight(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	if _, err := repo.IncrementWater(user.ID, yesterday, 1000); err != nil {
		t.Fatalf("Failed to increment water for yesterday: %v", err)
	}
	total, err := repo.IncrementWater(user.ID, today, 300)
	if err != nil {
		t.Fatalf("Failed to increment water for today: %v", err)
	}
	if total != 300 {
		t.Errorf("Expected today's total to start fresh at 300, got %d", total)
	}

	logs, err := repo.GetWaterLogsSince(user.ID, yesterday)
	if err != nil {
		t.Fatalf("Failed to get water logs: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("Expected 2 water log rows, got %d", len(logs))
	}
}

func TestLogRepository_UpsertWeight_ReplacesSameDay(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "weight@example.com")

	day := midnight(time.Now())

	if _, err := repo.UpsertWeight(user.ID, day, 80.5); err != nil {
		t.Fatalf("Failed to upsert weight: %v", err)
	}
	log, err := repo.UpsertWeight(user.ID, day, 80.1)
	if err != nil {
		t.Fatalf("Failed to upsert weight again: %v", err)
	}
	if log.Weight != 80.1 {
		t.Errorf("Expected second value to win, got %.1f", log.Weight)
	}

	var count int64
	db.Model(&models.WeightLog{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single row per user per day, got %d", count)
	}
}

func TestLogRepository_LatestWeight(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "latestweight@example.com")

	weight, err := repo.LatestWeight(user.ID)
	if err != nil {
		t.Fatalf("Failed to get latest weight: %v", err)
	}
	if weight != 0 {
		t.Errorf("Expected 0 when no weight logged, got %.1f", weight)
	}

	today := midnight(time.Now())
	if _, err := repo.UpsertWeight(user.ID, today.AddDate(0, 0, -3), 82); err != nil {
		t.Fatalf("Failed to upsert weight: %v", err)
	}
	if _, err := repo.UpsertWeight(user.ID, today, 81.2); err != nil {
		t.Fatalf("Failed to upsert weight: %v", err)
	}

	weight, err = repo.LatestWeight(user.ID)
	if err != nil {
		t.Fatalf("Failed to get latest weight: %v", err)
	}
	if weight != 81.2 {
		t.Errorf("Expected most recent weight 81.2, got %.1f", weight)
	}
}

func TestLogRepository_GetFoodLogsByDateRange(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "food@example.com")

	today := midnight(time.Now())
	entries := []models.FoodLog{
		{UserID: user.ID, Date: today.Add(8 * time.Hour), MealType: models.MealTypeBreakfast, ProductName: "Oatmeal", Source: models.FoodLogSourceUser},
		{UserID: user.ID, Date: today.Add(13 * time.Hour), MealType: models.MealTypeLunch, ProductName: "Salad", Source: models.FoodLogSourceUser},
		{UserID: user.ID, Date: today.AddDate(0, 0, -1), MealType: models.MealTypeDinner, ProductName: "Pasta", Source: models.FoodLogSourceUser},
	}
	for i := range entries {
		if err := repo.CreateFoodLog(&entries[i]); err != nil {
			t.Fatalf("Failed to create food log: %v", err)
		}
	}

	logs, err := repo.GetFoodLogsByDateRange(user.ID, today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Failed to get food logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("Expected 2 logs for today, got %d", len(logs))
	}
	if logs[0].ProductName != "Oatmeal" {
		t.Errorf("Expected oldest-first ordering, got %s first", logs[0].ProductName)
	}
}

func TestLogRepository_PruneOlderThan(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewLogRepository(db)
	user := createLogTestUser(t, db, "prune@example.com")

	today := midnight(time.Now())
	stale := today.AddDate(0, 0, -120)
	cutoff := today.AddDate(0, 0, -90)

	if err := repo.CreateFoodLog(&models.FoodLog{
		UserID: user.ID, Date: stale, MealType: models.MealTypeLunch,
		ProductName: "Old entry", Source: models.FoodLogSourceUser,
	}); err != nil {
		t.Fatalf("Failed to create food log: %v", err)
	}
	if err := repo.CreateActivityLog(&models.ActivityLog{
		UserID: user.ID, ActivityName: "Running", DurationMin: 30,
		CaloriesBurned: 300, Date: stale,
	}); err != nil {
		t.Fatalf("Failed to create activity log: %v", err)
	}
	if _, err := repo.IncrementWater(user.ID, stale, 500); err != nil {
		t.Fatalf("Failed to create water log: %v", err)
	}
	if _, err := repo.UpsertWeight(user.ID, today, 80); err != nil {
		t.Fatalf("Failed to create weight log: %v", err)
	}

	removed, err := repo.PruneOlderThan(cutoff)
	if err != nil {
		t.Fatalf("Failed to prune logs: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 stale rows removed, got %d", removed)
	}

	weight, err := repo.LatestWeight(user.ID)
	if err != nil {
		t.Fatalf("Failed to get latest weight: %v", err)
	}
	if weight != 80 {
		t.Error("Expected recent weight log to survive pruning")
	}
}
