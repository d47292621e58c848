package rewards

import (
	"time"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// metricLogin qualifies by the request alone, not by any logged activity.
const metricLogin = "login"

// StepInput carries the client-reported step data for an evaluation. Step
// counts are accepted as-is; absent values default to zero.
type StepInput struct {
	StepsToday  int   `json:"currentSteps"`
	WeeklySteps []int `json:"weeklySteps"`
}

// ActivitySignals are the aggregated values reward predicates run against.
// Derived per evaluation from the last week of logs plus the step input;
// never persisted.
type ActivitySignals struct {
	WaterTodayML        float64
	MealsToday          float64
	CaloriesBurnedToday float64
	StepsToday          float64
	WeeklySteps         float64
	WorkoutsWeek        float64
	FoodLogDaysWeek     float64
}

// value resolves a catalog metric name to its signal. The login metric is a
// constant: logging in is implied by the request itself, so the reward is
// limited by cycle dedup alone. The nightly sweep skips it before ever
// resolving the metric.
func (s *ActivitySignals) value(metric string) (float64, bool) {
	switch metric {
	case metricLogin:
		return 1, true
	case "water_today_ml":
		return s.WaterTodayML, true
	case "meals_today":
		return s.MealsToday, true
	case "calories_burned_today":
		return s.CaloriesBurnedToday, true
	case "steps_today":
		return s.StepsToday, true
	case "weekly_steps":
		return s.WeeklySteps, true
	case "workouts_week":
		return s.WorkoutsWeek, true
	case "food_log_days_week":
		return s.FoodLogDaysWeek, true
	default:
		return 0, false
	}
}

// deriveSignals aggregates the week's logs into evaluation signals. "Today"
// is local midnight to now; "this week" is the rolling 7 days ending now.
func deriveSignals(
	foodLogs []models.FoodLog,
	activityLogs []models.ActivityLog,
	waterLogs []models.WaterLog,
	input StepInput,
	now time.Time,
) ActivitySignals {
	today := startOfDay(now)

	var signals ActivitySignals
	signals.StepsToday = float64(input.StepsToday)
	for _, steps := range input.WeeklySteps {
		signals.WeeklySteps += float64(steps)
	}

	mealsToday := make(map[string]bool, 3)
	foodDays := make(map[string]bool, 7)
	for _, entry := range foodLogs {
		foodDays[entry.Date.Format("2006-01-02")] = true
		if entry.Date.Before(today) {
			continue
		}
		switch entry.MealType {
		case models.MealTypeBreakfast, models.MealTypeLunch, models.MealTypeDinner:
			mealsToday[entry.MealType] = true
		}
	}
	signals.MealsToday = float64(len(mealsToday))
	signals.FoodLogDaysWeek = float64(len(foodDays))

	for _, entry := range activityLogs {
		signals.WorkoutsWeek++
		if !entry.Date.Before(today) {
			signals.CaloriesBurnedToday += entry.CaloriesBurned
		}
	}

	for _, entry := range waterLogs {
		if !entry.Date.Before(today) {
			signals.WaterTodayML += float64(entry.AmountML)
		}
	}

	return signals
}
