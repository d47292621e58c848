// Package nutrition computes calorie goals and exercise burn estimates from
// profile data. Heights and weights arrive as free-form client strings and
// are parsed defensively; every function degrades to a sensible default
// rather than failing.
package nutrition

import (
	"math"
	"strconv"
	"strings"
)

const (
	defaultHeightCm    = 170
	defaultCalorieGoal = 2000
)

// activityMultipliers scale BMR to maintenance calories. Unknown levels get
// the "active" multiplier.
var activityMultipliers = map[string]float64{
	"not very active": 1.2,
	"somewhat active": 1.375,
	"active":          1.55,
	"very active":     1.725,
}

// ParseHeightToCm converts a client height string to centimeters. Accepts
// "172 cm" and "5.7 feet" forms; anything unparseable maps to 170.
func ParseHeightToCm(height string) float64 {
	lower := strings.ToLower(strings.TrimSpace(height))
	if lower == "" {
		return defaultHeightCm
	}

	if strings.Contains(lower, "cm") {
		cm := leadingFloat(lower)
		if cm == 0 {
			return defaultHeightCm
		}
		return cm
	}

	if strings.Contains(lower, "feet") {
		numeric := leadingFloat(lower)
		feet := math.Floor(numeric)
		fraction := numeric - feet
		// "5.10 feet" means 5'10", not 5 feet plus a tenth.
		var inches float64
		if fraction > 0.12 {
			inches = math.Round(fraction * 100)
		} else {
			inches = math.Round(fraction * 12)
		}
		return (feet*12 + inches) * 2.54
	}

	return defaultHeightCm
}

// ParseWeightKg extracts the numeric weight from a client string like
// "68 kg". Returns 0 when nothing parses.
func ParseWeightKg(weight string) float64 {
	return leadingFloat(strings.TrimSpace(weight))
}

// CalorieGoal derives a daily calorie target: Mifflin-St Jeor BMR scaled by
// the activity level, then nudged 200 kcal toward the weight goal. Falls
// back to 2000 when the inputs do not parse.
func CalorieGoal(height, currentWeight, targetWeight, activityLevel string) int {
	heightCm := ParseHeightToCm(height)
	current := ParseWeightKg(currentWeight)
	target := ParseWeightKg(targetWeight)

	if current == 0 || heightCm == 0 {
		return defaultCalorieGoal
	}

	// BMR for a 25-year-old male; the client does not collect age or sex.
	bmr := 10*current + 6.25*heightCm - 5*25 + 5

	multiplier, ok := activityMultipliers[strings.ToLower(activityLevel)]
	if !ok {
		multiplier = 1.55
	}

	maintenance := bmr * multiplier
	switch {
	case current > target:
		maintenance -= 200
	case current < target:
		maintenance += 200
	}

	return int(math.Round(maintenance))
}

// CaloriesBurned estimates exercise burn with the standard MET equation:
// MET x 3.5 x weight(kg) / 200 per minute.
func CaloriesBurned(met, weightKg float64, durationMin int) float64 {
	if weightKg <= 0 || durationMin <= 0 {
		return 0
	}
	return math.Round(met * 3.5 * weightKg / 200 * float64(durationMin))
}

// leadingFloat parses the number a string starts with, tolerating trailing
// units.
func leadingFloat(s string) float64 {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
