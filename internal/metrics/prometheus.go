// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the NutriWise backend.
var (
	// Counters.
	RewardsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_unlocked_total",
			Help: "Total number of reward unlocks awarded",
		},
		[]string{"reward", "cycle"},
	)

	CoinsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coins_spent_total",
			Help: "Total coins spent on shop redemptions",
		},
		[]string{"item"},
	)

	RedemptionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_rejected_total",
			Help: "Redemptions rejected before any state change",
		},
		[]string{"reason"},
	)

	OTPEmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_emails_sent_total",
			Help: "OTP emails dispatched, by flow and outcome",
		},
		[]string{"flow", "status"},
	)

	ClassifierRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_runs_total",
			Help: "Food image classifier subprocess invocations",
		},
		[]string{"status"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of user level increases",
		},
	)

	SchedulerJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job executions, by job and outcome",
		},
		[]string{"job", "status"},
	)

	LogsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logs_pruned_total",
			Help: "Log entries removed by the retention job",
		},
	)

	// Gauges.
	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed scheduler run",
		},
	)

	// Histograms.
	RewardEvaluationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reward_evaluation_seconds",
			Help:    "Duration of one reward evaluation pass",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
	)

	ClassifierDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_duration_seconds",
			Help:    "Duration of classifier subprocess runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"job"},
	)
)

// RecordUnlock records a reward unlock.
func RecordUnlock(rewardID, cycle string) {
	RewardsUnlockedTotal.WithLabelValues(rewardID, cycle).Inc()
}

// RecordRedemption records a successful redemption.
func RecordRedemption(itemID string, cost int) {
	CoinsSpentTotal.WithLabelValues(itemID).Add(float64(cost))
}

// RecordRedemptionRejected records a rejected redemption.
func RecordRedemptionRejected(reason string) {
	RedemptionsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSchedulerJobRun records one scheduled job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobRunsTotal.WithLabelValues(job, status).Inc()
}

// ObserveSchedulerJobDuration observes one scheduled job's duration.
func ObserveSchedulerJobDuration(job string, seconds float64) {
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// SetSchedulerLastRun updates the last-run timestamp to now.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}
