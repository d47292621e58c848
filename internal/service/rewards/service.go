// Package rewards implements the gamification engine: evaluating reward
// definitions against activity signals, crediting XP and coins, and spending
// coins in the shop.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
	prommetrics "github.com/nutriwise/nutriwise-api/internal/metrics"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// Service-level errors, mapped to HTTP status at the handler boundary.
var (
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrInsufficientFunds = errors.New("insufficient coins")
)

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	List() ([]models.User, error)
	UpdateGamification(userID uint, xp, coins, level int) error
}

// RewardRepository interface for unlock-log and inventory operations.
type RewardRepository interface {
	AppendUnlock(unlock *models.RewardUnlock) (bool, error)
	GetUnlocksSince(userID uint, since time.Time) ([]models.RewardUnlock, error)
	GetInventory(userID uint) ([]models.InventoryItem, error)
	RecordRedemption(userID uint, itemID string, entry *models.FoodLog, cost int) (int, error)
}

// LogRepository interface for the log queries evaluation aggregates over.
type LogRepository interface {
	GetFoodLogsByDateRange(userID uint, start, end time.Time) ([]models.FoodLog, error)
	GetActivityLogsByDateRange(userID uint, start, end time.Time) ([]models.ActivityLog, error)
	GetWaterLogsSince(userID uint, since time.Time) ([]models.WaterLog, error)
}

// Service evaluates rewards and handles shop redemption.
type Service struct {
	userRepo   UserRepository
	rewardRepo RewardRepository
	logRepo    LogRepository
	catalog    *catalog.Catalog
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates a new rewards service.
func NewService(
	userRepo *repository.UserRepository,
	rewardRepo *repository.RewardRepository,
	logRepo *repository.LogRepository,
	cat *catalog.Catalog,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, rewardRepo, logRepo, cat, log)
}

// NewServiceWithInterfaces creates a new rewards service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	rewardRepo RewardRepository,
	logRepo LogRepository,
	cat *catalog.Catalog,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		logRepo:    logRepo,
		catalog:    cat,
		log:        log,
		now:        time.Now,
	}
}

// EvaluationResult is the outcome of one evaluation pass.
type EvaluationResult struct {
	Active        []models.RewardUnlock `json:"rewards"`
	NewlyUnlocked []string              `json:"newlyUnlocked"`
	XP            int                   `json:"xp"`
	Coins         int                   `json:"coins"`
	Level         int                   `json:"level"`
}

// RewardsState is the read-only rewards view for a user.
type RewardsState struct {
	Active    []models.RewardUnlock  `json:"rewards"`
	XP        int                    `json:"xp"`
	Coins     int                    `json:"coins"`
	Level     int                    `json:"level"`
	Inventory []models.InventoryItem `json:"inventory"`
}

// RedemptionResult is the outcome of a successful shop redemption.
type RedemptionResult struct {
	Coins int             `json:"coins"`
	Entry *models.FoodLog `json:"loggedEntry"`
}

// Evaluate runs every catalog definition against the user's current
// signals, credits the awards for definitions that newly qualify this
// cycle, and persists the updated totals. The unique (user, reward, cycle)
// index makes concurrent evaluation safe: only the call that actually
// inserted an unlock row credits its awards.
//
func (s *Service) Evaluate(ctx context.Context, userID uint, input StepInput) (*EvaluationResult, error) {
	return s.evaluate(ctx, userID, input, true)
}

// evaluate runs one pass. loginImplied marks request-driven calls, which
// count as an app open; the nightly sweep passes false and never mints the
// check-in reward.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) evaluate(ctx context.Context, userID uint, input StepInput, loginImplied bool) (*EvaluationResult, error) {
	start := time.Now()
	defer func() {
		prommetrics.RewardEvaluationSeconds.Observe(time.Since(start).Seconds())
	}()

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	weekStart := now.AddDate(0, 0, -7)

	foodLogs, err := s.logRepo.GetFoodLogsByDateRange(userID, weekStart, now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to load food logs: %w", err)
	}
	activityLogs, err := s.logRepo.GetActivityLogsByDateRange(userID, weekStart, now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to load activity logs: %w", err)
	}
	waterLogs, err := s.logRepo.GetWaterLogsSince(userID, startOfDay(weekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to load water logs: %w", err)
	}

	signals := deriveSignals(foodLogs, activityLogs, waterLogs, input, now)

	// Unlocks from the last 8 days cover every cycle key still current.
	unlocks, err := s.rewardRepo.GetUnlocksSince(userID, now.AddDate(0, 0, -8))
	if err != nil {
		return nil, fmt.Errorf("failed to load unlock log: %w", err)
	}
	claimed := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		claimed[u.RewardID+"|"+u.CycleKey] = true
	}

	xp, coins := user.XP, user.Coins
	var newlyUnlocked []string

	for i := range s.catalog.Rewards {
		def := &s.catalog.Rewards[i]
		if def.Metric == metricLogin && !loginImplied {
			continue
		}
		value, ok := signals.value(def.Metric)
		if !ok {
			s.log.Warn().
				Str("reward", def.ID).
				Str("metric", def.Metric).
				Msg("Reward references unknown metric")
			continue
		}
		if value < def.Threshold {
			continue
		}

		key := cycleKey(def.Cycle(), now)
		if claimed[def.ID+"|"+key] {
			continue
		}

		created, err := s.rewardRepo.AppendUnlock(&models.RewardUnlock{
			UserID:     userID,
			RewardID:   def.ID,
			CycleKey:   key,
			UnlockedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record unlock %s: %w", def.ID, err)
		}
		if !created {
			// A concurrent evaluation claimed this cycle first.
			continue
		}

		xp += def.XP
		coins += def.Coins
		newlyUnlocked = append(newlyUnlocked, def.ID)
		prommetrics.RecordUnlock(def.ID, string(def.Cycle()))
	}

	level := computeLevel(xp)
	if level < user.Level {
		level = user.Level
	}

	if xp != user.XP || coins != user.Coins || level != user.Level {
		if level > user.Level {
			prommetrics.LevelUpsTotal.Inc()
		}
		if err := s.userRepo.UpdateGamification(userID, xp, coins, level); err != nil {
			return nil, err
		}
		s.log.Info().
			Uint("user_id", userID).
			Strs("newly_unlocked", newlyUnlocked).
			Int("xp", xp).
			Int("coins", coins).
			Int("level", level).
			Msg("Rewards unlocked")
	}

	active, err := s.activeUnlocks(userID, now)
	if err != nil {
		return nil, err
	}

	return &EvaluationResult{
		Active:        active,
		NewlyUnlocked: newlyUnlocked,
		XP:            xp,
		Coins:         coins,
		Level:         level,
	}, nil
}

// GetState returns the user's rewards view without evaluating anything.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetState(ctx context.Context, userID uint) (*RewardsState, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	active, err := s.activeUnlocks(userID, s.now())
	if err != nil {
		return nil, err
	}

	inventory, err := s.rewardRepo.GetInventory(userID)
	if err != nil {
		return nil, err
	}

	return &RewardsState{
		Active:    active,
		XP:        user.XP,
		Coins:     user.Coins,
		Level:     user.Level,
		Inventory: inventory,
	}, nil
}

// Redeem exchanges coins for a shop item. The food-log entry, inventory row
// and coin decrement land in one transaction; a rejected redemption leaves
// every table untouched.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Redeem(ctx context.Context, userID uint, itemID string) (*RedemptionResult, error) {
	item := s.catalog.ShopItemByID(itemID)
	if item == nil {
		prommetrics.RecordRedemptionRejected("unknown_item")
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if user.Coins < item.Cost {
		prommetrics.RecordRedemptionRejected("insufficient_funds")
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, user.Coins, item.Cost)
	}

	now := s.now()
	entry := &models.FoodLog{
		UserID:      userID,
		Date:        now,
		MealType:    models.MealTypeSnack,
		ProductName: item.DisplayName,
		Nutrients:   item.Nutrients,
		Source:      models.FoodLogSourceRedemption,
	}

	newCoins, err := s.rewardRepo.RecordRedemption(userID, item.ID, entry, item.Cost)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCoins) {
			// A concurrent redemption spent the balance between the
			// pre-check and the commit.
			prommetrics.RecordRedemptionRejected("insufficient_funds")
			return nil, fmt.Errorf("%w: balance changed during redemption", ErrInsufficientFunds)
		}
		return nil, err
	}

	prommetrics.RecordRedemption(item.ID, item.Cost)
	s.log.Info().
		Uint("user_id", userID).
		Str("item", item.ID).
		Int("cost", item.Cost).
		Int("coins_remaining", newCoins).
		Msg("Shop item redeemed")

	return &RedemptionResult{Coins: newCoins, Entry: entry}, nil
}

// EvaluateAll runs an evaluation pass for every user with empty step
// signals. Run as a nightly job so log-derived rewards unlock even for
// users who never open the rewards screen. The login check-in is not
// log-derived and is never credited here.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	s.log.Info().Msg("Starting reward sweep for all users")
	start := time.Now()

	users, err := s.userRepo.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	unlocked := 0
	for _, user := range users {
		result, err := s.evaluate(ctx, user.ID, StepInput{}, false)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Reward sweep failed for user")
			continue
		}
		unlocked += len(result.NewlyUnlocked)
	}

	s.log.Info().
		Int("users_evaluated", len(users)).
		Int("rewards_unlocked", unlocked).
		Dur("duration", time.Since(start)).
		Msg("Reward sweep complete")

	return unlocked, nil
}

// activeUnlocks filters a user's unlock log down to the entries whose cycle
// is still current.
func (s *Service) activeUnlocks(userID uint, now time.Time) ([]models.RewardUnlock, error) {
	unlocks, err := s.rewardRepo.GetUnlocksSince(userID, now.AddDate(0, 0, -8))
	if err != nil {
		return nil, fmt.Errorf("failed to load unlock log: %w", err)
	}

	active := make([]models.RewardUnlock, 0, len(unlocks))
	for _, u := range unlocks {
		def := s.catalog.RewardByID(u.RewardID)
		if def == nil {
			continue
		}
		if u.CycleKey == cycleKey(def.Cycle(), now) {
			active = append(active, u)
		}
	}
	return active, nil
}

// computeLevel derives the level for an XP total. Callers clamp the result
// so a stored level never decreases.
func computeLevel(xp int) int {
	return int(math.Floor(1 + math.Sqrt(float64(xp))*0.2))
}
