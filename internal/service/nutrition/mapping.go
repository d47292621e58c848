package nutrition

import (
	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/models"
)

// DietaryProfile is the derived dietary view of a user profile, consumed by
// meal planning and analytics.
type DietaryProfile struct {
	Diet                string   `json:"diet"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
	Restrictions        []string `json:"restrictions"`
}

// DeriveDietaryProfile maps a profile's eating styles, health concerns and
// restrictions through the catalog tables.
func DeriveDietaryProfile(cat *catalog.Catalog, profile *models.UserProfile) DietaryProfile {
	out := DietaryProfile{
		Diet:                cat.DietForEatingStyles(profile.EatingStyles),
		ExcludedIngredients: cat.ExcludedIngredients(profile.HealthConcerns),
	}
	for name, active := range profile.Restrictions {
		if active {
			out.Restrictions = append(out.Restrictions, name)
		}
	}
	return out
}
