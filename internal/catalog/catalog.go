// Package catalog holds the static configuration tables the services run
// on: reward definitions, shop items, MET values and dietary mappings. The
// tables are embedded YAML parsed once at process start and immutable after.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Cycle determines how often a reward can be re-unlocked.
type Cycle string

// Reward cycles. A definition's id prefix is the source of truth for its
// cycle; Load rejects any other prefix.
const (
	CycleDaily  Cycle = "daily"
	CycleWeekly Cycle = "weekly"
)

// RewardDefinition is one entry in the reward catalog. A definition
// qualifies when the named signal is >= Threshold; definitions with
// Threshold 0 (daily_login) qualify unconditionally and are limited by the
// cycle dedup alone.
type RewardDefinition struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Icon        string  `yaml:"icon"`
	Metric      string  `yaml:"metric"`
	Threshold   float64 `yaml:"threshold"`
	XP          int     `yaml:"xp"`
	Coins       int     `yaml:"coins"`
}

// Cycle returns the re-unlock cycle derived from the id prefix.
func (d *RewardDefinition) Cycle() Cycle {
	if strings.HasPrefix(d.ID, "weekly_") {
		return CycleWeekly
	}
	return CycleDaily
}

// ShopItem is one redeemable catalog entry. Redeeming it materializes a
// Snack food-log entry carrying the fixed nutrient profile.
type ShopItem struct {
	ID          string           `yaml:"id"`
	DisplayName string           `yaml:"display_name"`
	Cost        int              `yaml:"cost"`
	Nutrients   models.Nutrients `yaml:"nutrients"`
}

// Catalog bundles every static table.
type Catalog struct {
	Rewards           []RewardDefinition  `yaml:"rewards"`
	ShopItems         []ShopItem          `yaml:"shop_items"`
	METValues         map[string]float64  `yaml:"met_values"`
	DiseaseExclusions map[string][]string `yaml:"disease_exclusions"`
	EatingStyleDiets  map[string]string   `yaml:"eating_style_diets"`
}

// Load parses and validates the embedded catalog. Called once from main;
// tests call it directly.
func Load() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(rawCatalog, &c); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Rewards) == 0 {
		return fmt.Errorf("no reward definitions")
	}
	seen := make(map[string]bool, len(c.Rewards))
	for i := range c.Rewards {
		d := &c.Rewards[i]
		if !strings.HasPrefix(d.ID, "daily_") && !strings.HasPrefix(d.ID, "weekly_") {
			return fmt.Errorf("reward %q: id must carry a daily_ or weekly_ prefix", d.ID)
		}
		if d.Metric == "" {
			return fmt.Errorf("reward %q: metric is required", d.ID)
		}
		if d.XP < 0 || d.Coins < 0 {
			return fmt.Errorf("reward %q: awards must be non-negative", d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate reward id %q", d.ID)
		}
		seen[d.ID] = true
	}
	for i := range c.ShopItems {
		item := &c.ShopItems[i]
		if item.ID == "" {
			return fmt.Errorf("shop item %d: id is required", i)
		}
		if item.Cost <= 0 {
			return fmt.Errorf("shop item %q: cost must be positive", item.ID)
		}
	}
	return nil
}

// ShopItemByID returns the shop item with the given id, or nil.
func (c *Catalog) ShopItemByID(id string) *ShopItem {
	for i := range c.ShopItems {
		if c.ShopItems[i].ID == id {
			return &c.ShopItems[i]
		}
	}
	return nil
}

// RewardByID returns the reward definition with the given id, or nil.
func (c *Catalog) RewardByID(id string) *RewardDefinition {
	for i := range c.Rewards {
		if c.Rewards[i].ID == id {
			return &c.Rewards[i]
		}
	}
	return nil
}

// MET returns the MET value for an activity name, falling back to a light
// generic workout when the activity is unknown.
func (c *Catalog) MET(activity string) float64 {
	if met, ok := c.METValues[activity]; ok {
		return met
	}
	return 3.0
}

// ExcludedIngredients flattens the active health concerns into a
// deduplicated ingredient exclusion list.
func (c *Catalog) ExcludedIngredients(concerns map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for disease, active := range concerns {
		if !active {
			continue
		}
		for _, ing := range c.DiseaseExclusions[disease] {
			if !seen[ing] {
				seen[ing] = true
				out = append(out, ing)
			}
		}
	}
	return out
}

// DietForEatingStyles maps the first active eating style to a diet name.
// Returns "" when nothing maps (the default diet).
func (c *Catalog) DietForEatingStyles(styles map[string]bool) string {
	for style, active := range styles {
		if active {
			if diet, ok := c.EatingStyleDiets[style]; ok && diet != "" {
				return diet
			}
		}
	}
	return ""
}
