package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

type mockProfileRepository struct {
	profiles map[uint]*models.UserProfile
	nextID   uint
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[uint]*models.UserProfile), nextID: 1}
}

func (m *mockProfileRepository) Create(p *models.UserProfile) error {
	p.ID = m.nextID
	m.nextID++
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockProfileRepository) GetByUserID(userID uint) (*models.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProfileRepository) Update(p *models.UserProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

func setupTestService(t *testing.T) (*Service, *mockProfileRepository) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	repo := newMockProfileRepository()
	log := logger.New("debug", "text", "stdout")
	return NewServiceWithInterfaces(repo, cat, log), repo
}

func TestSave_Create(t *testing.T) {
	service, _ := setupTestService(t)

	p, err := service.Save(context.Background(), 1, Input{
		UserName:      "Dana",
		Height:        "170 cm",
		CurrentWeight: "80 kg",
		TargetWeight:  "75 kg",
		ActivityLevel: "somewhat active",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// BMR 1742.5 x 1.375 - 200 = 2196 (rounded).
	if p.CaloriesGoal != 2196 {
		t.Errorf("CaloriesGoal = %d, want 2196", p.CaloriesGoal)
	}
	if p.StartWeight != "80 kg" {
		t.Errorf("StartWeight = %q, want current weight pinned on create", p.StartWeight)
	}
	if p.StepGoal != 10000 || p.WaterGoalML != 2000 {
		t.Errorf("defaults not applied: stepGoal=%d waterGoal=%d", p.StepGoal, p.WaterGoalML)
	}
}

func TestSave_UpdateKeepsStartWeight(t *testing.T) {
	service, _ := setupTestService(t)

	if _, err := service.Save(context.Background(), 1, Input{
		Height:        "170 cm",
		CurrentWeight: "80 kg",
		TargetWeight:  "75 kg",
		ActivityLevel: "active",
	}); err != nil {
		t.Fatalf("initial Save failed: %v", err)
	}

	p, err := service.Save(context.Background(), 1, Input{
		Height:        "170 cm",
		CurrentWeight: "78 kg",
		TargetWeight:  "75 kg",
		ActivityLevel: "active",
		StepGoal:      8000,
	})
	if err != nil {
		t.Fatalf("update Save failed: %v", err)
	}
	if p.StartWeight != "80 kg" {
		t.Errorf("StartWeight = %q, must not move on update", p.StartWeight)
	}
	if p.CurrentWeight != "78 kg" {
		t.Errorf("CurrentWeight = %q, want updated value", p.CurrentWeight)
	}
	if p.StepGoal != 8000 {
		t.Errorf("StepGoal = %d, want 8000", p.StepGoal)
	}
}

func TestSave_RecomputesCalorieGoal(t *testing.T) {
	service, _ := setupTestService(t)

	first, err := service.Save(context.Background(), 1, Input{
		Height:        "170 cm",
		CurrentWeight: "70 kg",
		TargetWeight:  "75 kg",
		ActivityLevel: "active",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second, err := service.Save(context.Background(), 1, Input{
		Height:        "170 cm",
		CurrentWeight: "70 kg",
		TargetWeight:  "65 kg",
		ActivityLevel: "active",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Same body, flipped goal direction: gain (+200) vs cut (-200).
	if second.CaloriesGoal != first.CaloriesGoal-400 {
		t.Errorf("CaloriesGoal = %d after %d, want a 400 kcal swing", second.CaloriesGoal, first.CaloriesGoal)
	}
}

func TestGet_NotFound(t *testing.T) {
	service, _ := setupTestService(t)

	if _, err := service.Get(context.Background(), 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDietaryProfile(t *testing.T) {
	service, repo := setupTestService(t)
	repo.profiles[1] = &models.UserProfile{
		UserID:         1,
		EatingStyles:   models.BoolMap{"Vegan": true},
		HealthConcerns: models.BoolMap{"Diabetes": true},
		Restrictions:   models.BoolMap{"peanuts": true, "shellfish": false},
	}

	dietary, err := service.GetDietaryProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetDietaryProfile failed: %v", err)
	}
	if dietary.Diet != "vegan" {
		t.Errorf("Diet = %q, want vegan", dietary.Diet)
	}
	if len(dietary.ExcludedIngredients) == 0 {
		t.Error("expected excluded ingredients for diabetes")
	}
	if len(dietary.Restrictions) != 1 || dietary.Restrictions[0] != "peanuts" {
		t.Errorf("Restrictions = %v, want [peanuts]", dietary.Restrictions)
	}
}
