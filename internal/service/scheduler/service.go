// Package scheduler runs the nightly maintenance jobs: the reward sweep that
// re-evaluates every user's unlocks, and retention pruning of old log rows.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nutriwise/nutriwise-api/internal/config"
	prommetrics "github.com/nutriwise/nutriwise-api/internal/metrics"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// RewardSweeper re-evaluates rewards for every user.
type RewardSweeper interface {
	EvaluateAll(ctx context.Context) (int, error)
}

// LogPruner removes log rows older than a cutoff.
type LogPruner interface {
	PruneOlderThan(cutoff time.Time) (int64, error)
}

// Service handles nightly job scheduling.
type Service struct {
	config  *config.Config
	rewards RewardSweeper
	logs    LogPruner
	log     *logger.Logger
	cron    *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, rewards RewardSweeper, logs LogPruner, log *logger.Logger) *Service {
	return &Service{
		config:  cfg,
		rewards: rewards,
		logs:    logs,
		log:     log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	_, err = s.cron.AddFunc(s.config.Scheduler.RewardSweepTime, func() {
		s.runRewardSweep(context.Background())
		s.runLogRetention()
	})
	if err != nil {
		return fmt.Errorf("failed to register nightly job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", s.config.Scheduler.RewardSweepTime).
		Str("timezone", s.config.Scheduler.Timezone).
		Int("retention_days", s.config.Retention.LogRetentionDays).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runRewardSweep executes the nightly reward evaluation job.
func (s *Service) runRewardSweep(ctx context.Context) {
	start := time.Now()
	defer func() {
		prommetrics.ObserveSchedulerJobDuration("reward_sweep", time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	s.log.Info().Msg("Running nightly reward sweep")

	evaluated, err := s.rewards.EvaluateAll(ctx)
	if err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Reward sweep failed")
		prommetrics.RecordSchedulerJobRun("reward_sweep", "error")
		return
	}

	prommetrics.RecordSchedulerJobRun("reward_sweep", "success")
	s.log.Info().
		Int("users_evaluated", evaluated).
		Dur("duration", time.Since(start)).
		Msg("Reward sweep completed successfully")
}

// runLogRetention prunes log rows past the retention window.
func (s *Service) runLogRetention() {
	if s.config.Retention.LogRetentionDays <= 0 {
		return
	}

	start := time.Now()
	defer func() {
		prommetrics.ObserveSchedulerJobDuration("log_retention", time.Since(start).Seconds())
	}()

	cutoff := time.Now().AddDate(0, 0, -s.config.Retention.LogRetentionDays)
	pruned, err := s.logs.PruneOlderThan(cutoff)
	if err != nil {
		s.log.Error().
			Err(err).
			Time("cutoff", cutoff).
			Msg("Log retention pruning failed")
		prommetrics.RecordSchedulerJobRun("log_retention", "error")
		return
	}

	prommetrics.RecordSchedulerJobRun("log_retention", "success")
	if pruned > 0 {
		prommetrics.LogsPrunedTotal.Add(float64(pruned))
	}
	s.log.Info().
		Int64("rows_pruned", pruned).
		Time("cutoff", cutoff).
		Dur("duration", time.Since(start)).
		Msg("Log retention pruning completed")
}
