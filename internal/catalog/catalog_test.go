package catalog

import (
	"strings"
	"testing"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()

	c, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return c
}

func TestLoad(t *testing.T) {
	c := mustLoad(t)

	if len(c.Rewards) == 0 {
		t.Error("Expected reward definitions")
	}
	if len(c.ShopItems) == 0 {
		t.Error("Expected shop items")
	}
	if len(c.METValues) == 0 {
		t.Error("Expected MET values")
	}
}

func TestRewardDefinition_Cycle(t *testing.T) {
	c := mustLoad(t)

	for i := range c.Rewards {
		d := &c.Rewards[i]
		want := CycleDaily
		if strings.HasPrefix(d.ID, "weekly_") {
			want = CycleWeekly
		}
		if got := d.Cycle(); got != want {
			t.Errorf("Reward %s: expected cycle %s, got %s", d.ID, want, got)
		}
	}
}

func TestRewardByID(t *testing.T) {
	c := mustLoad(t)

	d := c.RewardByID("daily_steps_6k")
	if d == nil {
		t.Fatal("Expected daily_steps_6k to exist")
	}
	if d.Threshold != 6000 {
		t.Errorf("Expected threshold 6000, got %.0f", d.Threshold)
	}

	if c.RewardByID("daily_nonexistent") != nil {
		t.Error("Expected nil for unknown reward id")
	}
}

func TestShopItemByID(t *testing.T) {
	c := mustLoad(t)

	item := c.ShopItemByID("cheat_donut")
	if item == nil {
		t.Fatal("Expected cheat_donut to exist")
	}
	if item.Cost != 250 {
		t.Errorf("Expected cost 250, got %d", item.Cost)
	}
	if item.Nutrients.Calories == 0 {
		t.Error("Expected a nutrient profile")
	}

	if c.ShopItemByID("cheat_unknown") != nil {
		t.Error("Expected nil for unknown shop item id")
	}
}

func TestMET_FallbackForUnknownActivity(t *testing.T) {
	c := mustLoad(t)

	if met := c.MET("Running"); met != 9.8 {
		t.Errorf("Expected MET 9.8 for Running, got %.1f", met)
	}
	if met := c.MET("Underwater Basket Weaving"); met != 3.0 {
		t.Errorf("Expected fallback MET 3.0, got %.1f", met)
	}
}

func TestExcludedIngredients_DeduplicatesAcrossConcerns(t *testing.T) {
	c := mustLoad(t)

	// Diabetes and Obesity both exclude soda; it must appear once.
	out := c.ExcludedIngredients(map[string]bool{
		"Diabetes": true,
		"Obesity":  true,
		"Asthma":   false,
	})

	count := 0
	for _, ing := range out {
		if ing == "soda" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected soda to appear exactly once, got %d", count)
	}
	for _, ing := range out {
		if ing == "sulfites" {
			t.Error("Inactive concern must not contribute exclusions")
		}
	}
}

func TestDietForEatingStyles(t *testing.T) {
	c := mustLoad(t)

	if diet := c.DietForEatingStyles(map[string]bool{"Vegan": true}); diet != "vegan" {
		t.Errorf("Expected vegan, got %q", diet)
	}
	if diet := c.DietForEatingStyles(map[string]bool{"I eat everything": true}); diet != "" {
		t.Errorf("Expected empty diet for the default style, got %q", diet)
	}
	if diet := c.DietForEatingStyles(map[string]bool{"Keto": false}); diet != "" {
		t.Errorf("Expected empty diet when nothing is active, got %q", diet)
	}
}
