package rewards

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[uint]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uint]*models.User)}
}

func (m *mockUserRepository) GetByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) List() ([]models.User, error) {
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepository) UpdateGamification(userID uint, xp, coins, level int) error {
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.XP = xp
	user.Coins = coins
	user.Level = level
	return nil
}

type redemptionCall struct {
	userID uint
	itemID string
	entry  *models.FoodLog
	cost   int
}

type mockRewardRepository struct {
	unlocks     []models.RewardUnlock
	keys        map[string]bool
	inventory   []models.InventoryItem
	redemptions []redemptionCall
	users       *mockUserRepository
	redeemErr   error
}

func newMockRewardRepository(users *mockUserRepository) *mockRewardRepository {
	return &mockRewardRepository{keys: make(map[string]bool), users: users}
}

func (m *mockRewardRepository) AppendUnlock(unlock *models.RewardUnlock) (bool, error) {
	key := fmt.Sprintf("%d|%s|%s", unlock.UserID, unlock.RewardID, unlock.CycleKey)
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	m.unlocks = append(m.unlocks, *unlock)
	return true, nil
}

func (m *mockRewardRepository) GetUnlocksSince(userID uint, since time.Time) ([]models.RewardUnlock, error) {
	var out []models.RewardUnlock
	for _, u := range m.unlocks {
		if u.UserID == userID && !u.UnlockedAt.Before(since) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRewardRepository) GetInventory(userID uint) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range m.inventory {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockRewardRepository) RecordRedemption(userID uint, itemID string, entry *models.FoodLog, cost int) (int, error) {
	if m.redeemErr != nil {
		return 0, m.redeemErr
	}
	user, ok := m.users.users[userID]
	if !ok || user.Coins < cost {
		return 0, repository.ErrInsufficientCoins
	}
	m.redemptions = append(m.redemptions, redemptionCall{userID, itemID, entry, cost})
	m.inventory = append(m.inventory, models.InventoryItem{UserID: userID, ItemID: itemID, AcquiredAt: time.Now()})
	user.Coins -= cost
	return user.Coins, nil
}

type mockLogRepository struct {
	foodLogs     []models.FoodLog
	activityLogs []models.ActivityLog
	waterLogs    []models.WaterLog
}

func (m *mockLogRepository) GetFoodLogsByDateRange(userID uint, start, end time.Time) ([]models.FoodLog, error) {
	var out []models.FoodLog
	for _, l := range m.foodLogs {
		if l.UserID == userID && !l.Date.Before(start) && l.Date.Before(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLogRepository) GetActivityLogsByDateRange(userID uint, start, end time.Time) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	for _, l := range m.activityLogs {
		if l.UserID == userID && !l.Date.Before(start) && l.Date.Before(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLogRepository) GetWaterLogsSince(userID uint, since time.Time) ([]models.WaterLog, error) {
	var out []models.WaterLog
	for _, l := range m.waterLogs {
		if l.UserID == userID && !l.Date.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Test setup helper
func setupTestService(t *testing.T) (*Service, *mockUserRepository, *mockRewardRepository, *mockLogRepository) {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	userRepo := newMockUserRepository()
	rewardRepo := newMockRewardRepository(userRepo)
	logRepo := &mockLogRepository{}
	log := logger.New("debug", "text", "stdout")

	service := NewServiceWithInterfaces(userRepo, rewardRepo, logRepo, cat, log)
	return service, userRepo, rewardRepo, logRepo
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestCycleKey(t *testing.T) {
	loc := time.UTC

	daily := cycleKey(catalog.CycleDaily, time.Date(2026, 8, 30, 15, 4, 5, 0, loc))
	if daily != "2026-08-30" {
		t.Errorf("daily key = %q, want 2026-08-30", daily)
	}

	// Jan 1 2021 falls in ISO week 53 of 2020.
	weekly := cycleKey(catalog.CycleWeekly, time.Date(2021, 1, 1, 12, 0, 0, 0, loc))
	if weekly != "2020-W53" {
		t.Errorf("weekly key = %q, want 2020-W53", weekly)
	}

	// Dec 30 2024 falls in ISO week 1 of 2025.
	weekly = cycleKey(catalog.CycleWeekly, time.Date(2024, 12, 30, 12, 0, 0, 0, loc))
	if weekly != "2025-W01" {
		t.Errorf("weekly key = %q, want 2025-W01", weekly)
	}
}

func TestComputeLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{24, 1},
		{25, 2},
		{40, 2},
		{100, 3},
		{400, 5},
	}
	for _, tt := range tests {
		if got := computeLevel(tt.xp); got != tt.want {
			t.Errorf("computeLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestDeriveSignals(t *testing.T) {
	now := time.Now()
	today := startOfDay(now).Add(8 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)

	foodLogs := []models.FoodLog{
		{UserID: 1, Date: today, MealType: models.MealTypeBreakfast},
		{UserID: 1, Date: today.Add(4 * time.Hour), MealType: models.MealTypeLunch},
		{UserID: 1, Date: today.Add(5 * time.Hour), MealType: models.MealTypeLunch},
		{UserID: 1, Date: today.Add(6 * time.Hour), MealType: models.MealTypeSnack},
		{UserID: 1, Date: yesterday, MealType: models.MealTypeDinner},
	}
	activityLogs := []models.ActivityLog{
		{UserID: 1, Date: today, CaloriesBurned: 200},
		{UserID: 1, Date: yesterday, CaloriesBurned: 150},
	}
	waterLogs := []models.WaterLog{
		{UserID: 1, Date: startOfDay(now), AmountML: 1500},
		{UserID: 1, Date: startOfDay(yesterday), AmountML: 2500},
	}

	signals := deriveSignals(foodLogs, activityLogs, waterLogs, StepInput{
		StepsToday:  6000,
		WeeklySteps: []int{5000, 7000, 6000},
	}, now)

	if signals.MealsToday != 2 {
		t.Errorf("MealsToday = %v, want 2 (breakfast + lunch; snack excluded)", signals.MealsToday)
	}
	if signals.FoodLogDaysWeek != 2 {
		t.Errorf("FoodLogDaysWeek = %v, want 2", signals.FoodLogDaysWeek)
	}
	if signals.CaloriesBurnedToday != 200 {
		t.Errorf("CaloriesBurnedToday = %v, want 200", signals.CaloriesBurnedToday)
	}
	if signals.WorkoutsWeek != 2 {
		t.Errorf("WorkoutsWeek = %v, want 2", signals.WorkoutsWeek)
	}
	if signals.WaterTodayML != 1500 {
		t.Errorf("WaterTodayML = %v, want 1500 (yesterday excluded)", signals.WaterTodayML)
	}
	if signals.StepsToday != 6000 {
		t.Errorf("StepsToday = %v, want 6000", signals.StepsToday)
	}
	if signals.WeeklySteps != 18000 {
		t.Errorf("WeeklySteps = %v, want 18000", signals.WeeklySteps)
	}
}

func TestEvaluate_FreshUserWithSteps(t *testing.T) {
	service, userRepo, _, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, XP: 0, Coins: 0, Level: 1}

	result, err := service.Evaluate(context.Background(), 1, StepInput{StepsToday: 6000})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(result.NewlyUnlocked) != 2 {
		t.Fatalf("newly unlocked = %v, want daily_login and daily_steps_6k", result.NewlyUnlocked)
	}
	if !contains(result.NewlyUnlocked, "daily_login") || !contains(result.NewlyUnlocked, "daily_steps_6k") {
		t.Errorf("newly unlocked = %v, want daily_login and daily_steps_6k", result.NewlyUnlocked)
	}
	if result.XP != 40 {
		t.Errorf("xp = %d, want 40", result.XP)
	}
	if result.Coins != 20 {
		t.Errorf("coins = %d, want 20", result.Coins)
	}
	if result.Level != 2 {
		t.Errorf("level = %d, want 2", result.Level)
	}

	if userRepo.users[1].XP != 40 || userRepo.users[1].Coins != 20 || userRepo.users[1].Level != 2 {
		t.Errorf("persisted state = %+v, want xp 40 coins 20 level 2", userRepo.users[1])
	}
}

func TestEvaluate_IdempotentWithinCycle(t *testing.T) {
	service, userRepo, _, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Level: 1}

	first, err := service.Evaluate(context.Background(), 1, StepInput{StepsToday: 6000})
	if err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}
	second, err := service.Evaluate(context.Background(), 1, StepInput{StepsToday: 6000})
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}

	if len(second.NewlyUnlocked) != 0 {
		t.Errorf("second call newly unlocked = %v, want none", second.NewlyUnlocked)
	}
	if second.XP != first.XP || second.Coins != first.Coins || second.Level != first.Level {
		t.Errorf("second call totals %d/%d/%d differ from first %d/%d/%d",
			second.XP, second.Coins, second.Level, first.XP, first.Coins, first.Level)
	}
	if len(second.Active) != len(first.Active) {
		t.Errorf("active count changed: %d -> %d", len(first.Active), len(second.Active))
	}
}

func TestEvaluate_WaterReward(t *testing.T) {
	service, userRepo, _, logRepo := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Level: 1}
	logRepo.waterLogs = []models.WaterLog{
		{UserID: 1, Date: startOfDay(time.Now()), AmountML: 2000},
	}

	result, err := service.Evaluate(context.Background(), 1, StepInput{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !contains(result.NewlyUnlocked, "daily_water_2l") {
		t.Errorf("newly unlocked = %v, want daily_water_2l present", result.NewlyUnlocked)
	}
}

func TestEvaluate_UserNotFound(t *testing.T) {
	service, _, _, _ := setupTestService(t)

	_, err := service.Evaluate(context.Background(), 42, StepInput{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEvaluate_LevelNeverDecreases(t *testing.T) {
	service, userRepo, _, _ := setupTestService(t)
	// Stored level is higher than the XP formula would produce.
	userRepo.users[1] = &models.User{ID: 1, XP: 0, Coins: 0, Level: 5}

	result, err := service.Evaluate(context.Background(), 1, StepInput{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.Level != 5 {
		t.Errorf("level = %d, want 5 (never decreases)", result.Level)
	}
}

func TestRedeem_UnknownItem(t *testing.T) {
	service, userRepo, rewardRepo, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Coins: 1000, Level: 1}

	_, err := service.Redeem(context.Background(), 1, "golden_burger")
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
	if len(rewardRepo.redemptions) != 0 {
		t.Error("expected no redemption recorded")
	}
}

func TestRedeem_InsufficientFunds(t *testing.T) {
	service, userRepo, rewardRepo, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Coins: 100, Level: 1}

	_, err := service.Redeem(context.Background(), 1, "cheat_donut")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(rewardRepo.redemptions) != 0 {
		t.Error("expected no redemption recorded")
	}
	if userRepo.users[1].Coins != 100 {
		t.Errorf("coins = %d, want 100 (unchanged)", userRepo.users[1].Coins)
	}
}

func TestRedeem_BalanceSpentConcurrently(t *testing.T) {
	service, userRepo, rewardRepo, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Coins: 500, Level: 1}
	// The balance passes the pre-check but the guarded decrement loses the
	// race at commit time.
	rewardRepo.redeemErr = repository.ErrInsufficientCoins

	_, err := service.Redeem(context.Background(), 1, "cheat_soda")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if userRepo.users[1].Coins != 500 {
		t.Errorf("coins = %d, want 500 (unchanged)", userRepo.users[1].Coins)
	}
}

func TestRedeem_Success(t *testing.T) {
	service, userRepo, rewardRepo, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Coins: 500, Level: 1}

	result, err := service.Redeem(context.Background(), 1, "cheat_soda")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}

	if result.Coins != 350 {
		t.Errorf("coins = %d, want 350", result.Coins)
	}
	if userRepo.users[1].Coins != 350 {
		t.Errorf("persisted coins = %d, want 350", userRepo.users[1].Coins)
	}

	if len(rewardRepo.redemptions) != 1 {
		t.Fatalf("expected 1 redemption, got %d", len(rewardRepo.redemptions))
	}
	if rewardRepo.redemptions[0].cost != 150 {
		t.Errorf("cost = %d, want 150", rewardRepo.redemptions[0].cost)
	}
	entry := rewardRepo.redemptions[0].entry
	if entry.MealType != models.MealTypeSnack {
		t.Errorf("meal type = %q, want Snack", entry.MealType)
	}
	if entry.Source != models.FoodLogSourceRedemption {
		t.Errorf("source = %q, want redemption marker", entry.Source)
	}
	want := models.Nutrients{Calories: 139, Protein: 0, Fat: 0, Carbohydrates: 35, Sugar: 35}
	if entry.Nutrients != want {
		t.Errorf("nutrients = %+v, want %+v", entry.Nutrients, want)
	}

	inventory, _ := rewardRepo.GetInventory(1)
	if len(inventory) != 1 || inventory[0].ItemID != "cheat_soda" {
		t.Errorf("inventory = %+v, want one cheat_soda", inventory)
	}
}

func TestGetState(t *testing.T) {
	service, userRepo, _, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, XP: 40, Coins: 20, Level: 2}

	if _, err := service.Evaluate(context.Background(), 1, StepInput{}); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	state, err := service.GetState(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.XP < 40 || state.Coins < 20 || state.Level < 2 {
		t.Errorf("state = %+v, want at least xp 40 coins 20 level 2", state)
	}
	if len(state.Active) == 0 {
		t.Error("expected daily_login active after evaluation")
	}
}

func TestEvaluateAll_CreditsLogDerivedRewards(t *testing.T) {
	service, userRepo, _, logRepo := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Level: 1}
	logRepo.waterLogs = []models.WaterLog{
		{UserID: 1, Date: startOfDay(time.Now()), AmountML: 2500},
	}

	unlocked, err := service.EvaluateAll(context.Background())
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if unlocked != 1 {
		t.Errorf("unlocked = %d, want 1 (daily_water_2l only)", unlocked)
	}
	if userRepo.users[1].XP != 20 || userRepo.users[1].Coins != 10 {
		t.Errorf("state = %+v, want xp 20 coins 10 from the water reward alone", userRepo.users[1])
	}
}

func TestEvaluateAll_InactiveUserEarnsNothing(t *testing.T) {
	service, userRepo, rewardRepo, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Level: 1}

	unlocked, err := service.EvaluateAll(context.Background())
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	// The check-in reward needs an actual app open; a user with no logs and
	// no requests gets nothing from the sweep.
	if unlocked != 0 {
		t.Errorf("unlocked = %d, want 0", unlocked)
	}
	if len(rewardRepo.unlocks) != 0 {
		t.Errorf("unlock log = %+v, want empty", rewardRepo.unlocks)
	}
	if userRepo.users[1].XP != 0 || userRepo.users[1].Coins != 0 {
		t.Errorf("state = %+v, want untouched", userRepo.users[1])
	}
}

func TestEvaluate_RequestStillCreditsLogin(t *testing.T) {
	service, userRepo, _, _ := setupTestService(t)
	userRepo.users[1] = &models.User{ID: 1, Level: 1}

	result, err := service.Evaluate(context.Background(), 1, StepInput{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !contains(result.NewlyUnlocked, "daily_login") {
		t.Errorf("newly unlocked = %v, want daily_login for a request-driven evaluation", result.NewlyUnlocked)
	}
}
