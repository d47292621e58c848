//nolint:noctx // Test file uses http.NewRequest for simplicity
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/rewards"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

type mockRewardsService struct {
	evaluation *rewards.EvaluationResult
	state      *rewards.RewardsState
	redemption *rewards.RedemptionResult
	err        error

	lastInput  rewards.StepInput
	lastItemID string
}

func (m *mockRewardsService) Evaluate(ctx context.Context, userID uint, input rewards.StepInput) (*rewards.EvaluationResult, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.evaluation, nil
}

func (m *mockRewardsService) GetState(ctx context.Context, userID uint) (*rewards.RewardsState, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.state, nil
}

func (m *mockRewardsService) Redeem(ctx context.Context, userID uint, itemID string) (*rewards.RedemptionResult, error) {
	m.lastItemID = itemID
	if m.err != nil {
		return nil, m.err
	}
	return m.redemption, nil
}

func setupRouter(service *mockRewardsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("debug", "text", "stdout")
	handler := NewHandlerWithInterfaces(service, log)

	router := gin.New()
	// Stand-in for the auth middleware: every request acts as user 1.
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAccountID, uint(1))
	})
	router.GET("/api/rewards", handler.GetState)
	router.POST("/api/rewards/check", handler.Check)
	router.POST("/api/rewards/redeem", handler.Redeem)
	return router
}

func TestCheck_Success(t *testing.T) {
	service := &mockRewardsService{
		evaluation: &rewards.EvaluationResult{
			NewlyUnlocked: []string{"daily_login", "daily_steps_6k"},
			XP:            40,
			Coins:         20,
			Level:         2,
		},
	}
	router := setupRouter(service)

	body := bytes.NewBufferString(`{"currentSteps": 6000, "weeklySteps": [6000]}`)
	req, _ := http.NewRequest("POST", "/api/rewards/check", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6000, service.lastInput.StepsToday)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(40), response["xp"])
	assert.Equal(t, float64(20), response["coins"])
	assert.Equal(t, float64(2), response["level"])
	assert.Len(t, response["newlyUnlocked"], 2)
}

func TestCheck_UserNotFound(t *testing.T) {
	service := &mockRewardsService{err: repository.ErrNotFound}
	router := setupRouter(service)

	req, _ := http.NewRequest("POST", "/api/rewards/check", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetState_Success(t *testing.T) {
	service := &mockRewardsService{
		state: &rewards.RewardsState{
			XP:        100,
			Coins:     45,
			Level:     3,
			Inventory: []models.InventoryItem{{ItemID: "cheat_soda"}},
		},
	}
	router := setupRouter(service)

	req, _ := http.NewRequest("GET", "/api/rewards", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(100), response["xp"])
	assert.Len(t, response["inventory"], 1)
}

func TestRedeem_Success(t *testing.T) {
	service := &mockRewardsService{
		redemption: &rewards.RedemptionResult{
			Coins: 350,
			Entry: &models.FoodLog{ProductName: "Guilt-Free Soda"},
		},
	}
	router := setupRouter(service)

	req, _ := http.NewRequest("POST", "/api/rewards/redeem", bytes.NewBufferString(`{"itemId": "cheat_soda"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cheat_soda", service.lastItemID)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(350), response["coins"])
}

func TestRedeem_MissingItemID(t *testing.T) {
	service := &mockRewardsService{}
	router := setupRouter(service)

	req, _ := http.NewRequest("POST", "/api/rewards/redeem", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedeem_UnknownItem(t *testing.T) {
	service := &mockRewardsService{err: rewards.ErrUnknownItem}
	router := setupRouter(service)

	req, _ := http.NewRequest("POST", "/api/rewards/redeem", bytes.NewBufferString(`{"itemId": "mystery"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedeem_InsufficientFunds(t *testing.T) {
	service := &mockRewardsService{err: rewards.ErrInsufficientFunds}
	router := setupRouter(service)

	req, _ := http.NewRequest("POST", "/api/rewards/redeem", bytes.NewBufferString(`{"itemId": "cheat_donut"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "not enough coins", response["message"])
}
