//nolint:noctx // Test file uses http.NewRequest for simplicity
package admin

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
	"github.com/nutriwise/nutriwise-api/internal/service/analytics"
	"github.com/nutriwise/nutriwise-api/internal/service/auth"
	"github.com/nutriwise/nutriwise-api/internal/service/complaints"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

type mockAuthService struct {
	admin *models.Admin
	token string
	err   error
}

func (m *mockAuthService) AdminSignupInit(ctx context.Context, firstName, lastName, emailAddr, password string) error {
	return m.err
}

func (m *mockAuthService) AdminVerifyAndCreate(ctx context.Context, emailAddr, code string) (*models.Admin, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.admin, m.token, nil
}

func (m *mockAuthService) AdminLogin(ctx context.Context, emailAddr, password string) (*models.Admin, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.admin, m.token, nil
}

func (m *mockAuthService) GetAdminProfile(ctx context.Context, adminID uint) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.admin, nil
}

func (m *mockAuthService) UpdateAdminProfile(ctx context.Context, adminID uint, firstName, lastName, newEmail string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return newEmail != "", nil
}

func (m *mockAuthService) VerifyNewEmail(ctx context.Context, adminID uint, newEmail, code string) error {
	return m.err
}

func (m *mockAuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	return m.err
}

func (m *mockAuthService) ForgotPasswordInit(ctx context.Context, emailAddr string) error {
	return m.err
}

func (m *mockAuthService) VerifyResetCode(ctx context.Context, emailAddr, code string) error {
	return m.err
}

func (m *mockAuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	return m.err
}

type mockAnalyticsService struct {
	stats *analytics.DashboardStats
	rows  []analytics.NameValue
	users []analytics.UserRow
	err   error

	deletedID uint
}

func (m *mockAnalyticsService) GetDashboardStats(ctx context.Context) (*analytics.DashboardStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockAnalyticsService) GetBMIDistribution(ctx context.Context) ([]analytics.NameValue, error) {
	return m.rows, m.err
}

func (m *mockAnalyticsService) GetDietDistribution(ctx context.Context) ([]analytics.NameValue, error) {
	return m.rows, m.err
}

func (m *mockAnalyticsService) GetGoalDistribution(ctx context.Context) ([]analytics.NameValue, error) {
	return m.rows, m.err
}

func (m *mockAnalyticsService) GetAllergyFrequency(ctx context.Context) ([]analytics.NameValue, error) {
	return m.rows, m.err
}

func (m *mockAnalyticsService) GetUserGrowth(ctx context.Context) ([]analytics.NameValue, error) {
	return m.rows, m.err
}

func (m *mockAnalyticsService) ListUsers(ctx context.Context) ([]analytics.UserRow, error) {
	return m.users, m.err
}

func (m *mockAnalyticsService) DeleteUser(ctx context.Context, userID uint) error {
	m.deletedID = userID
	return m.err
}

func (m *mockAnalyticsService) CleanupOrphans(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

type mockComplaintService struct {
	complaints []models.Complaint
	updated    *models.Complaint
	err        error

	lastStatus string
}

func (m *mockComplaintService) List(ctx context.Context) ([]models.Complaint, error) {
	return m.complaints, m.err
}

func (m *mockComplaintService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Complaint, error) {
	m.lastStatus = status
	if m.err != nil {
		return nil, m.err
	}
	return m.updated, nil
}

func setupRouter(authSvc *mockAuthService, analyticsSvc *mockAnalyticsService, complaintSvc *mockComplaintService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("debug", "text", "stdout")
	handler := NewHandlerWithInterfaces(authSvc, analyticsSvc, complaintSvc, log)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAccountID, uint(1))
	})
	router.POST("/api/admin/login", handler.Login)
	router.POST("/api/admin/signup", handler.SignupInit)
	router.GET("/api/admin/dashboard", handler.GetDashboard)
	router.GET("/api/admin/analytics/bmi", handler.GetBMIDistribution)
	router.GET("/api/admin/users", handler.ListUsers)
	router.DELETE("/api/admin/users/:id", handler.DeleteUser)
	router.POST("/api/admin/users/cleanup-orphans", handler.CleanupOrphans)
	router.GET("/api/admin/complaints", handler.ListComplaints)
	router.PUT("/api/admin/complaints/:id", handler.UpdateComplaintStatus)
	return router
}

func jsonRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, http.NoBody)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	authSvc := &mockAuthService{
		admin: &models.Admin{ID: 1, Email: "admin@example.com"},
		token: "signed-token",
	}
	router := setupRouter(authSvc, &mockAnalyticsService{}, &mockComplaintService{})

	w := jsonRequest(router, "POST", "/api/admin/login", `{"email": "admin@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "signed-token", response["token"])
}

func TestLogin_BadCredentials(t *testing.T) {
	authSvc := &mockAuthService{err: auth.ErrInvalidCredentials}
	router := setupRouter(authSvc, &mockAnalyticsService{}, &mockComplaintService{})

	w := jsonRequest(router, "POST", "/api/admin/login", `{"email": "admin@example.com", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupInit_DuplicateEmail(t *testing.T) {
	authSvc := &mockAuthService{err: auth.ErrEmailExists}
	router := setupRouter(authSvc, &mockAnalyticsService{}, &mockComplaintService{})

	w := jsonRequest(router, "POST", "/api/admin/signup",
		`{"firstName": "Ada", "lastName": "L", "email": "admin@example.com", "password": "secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetDashboard(t *testing.T) {
	analyticsSvc := &mockAnalyticsService{
		stats: &analytics.DashboardStats{TotalUsers: 12, TotalMealPlans: 4},
	}
	router := setupRouter(&mockAuthService{}, analyticsSvc, &mockComplaintService{})

	w := jsonRequest(router, "GET", "/api/admin/dashboard", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(12), response["totalUsers"])
	assert.Equal(t, float64(4), response["totalMealPlans"])
}

func TestGetBMIDistribution(t *testing.T) {
	analyticsSvc := &mockAnalyticsService{
		rows: []analytics.NameValue{{Name: "Healthy", Value: 8}, {Name: "Overweight", Value: 2}},
	}
	router := setupRouter(&mockAuthService{}, analyticsSvc, &mockComplaintService{})

	w := jsonRequest(router, "GET", "/api/admin/analytics/bmi", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["data"], 2)
}

func TestDeleteUser(t *testing.T) {
	analyticsSvc := &mockAnalyticsService{}
	router := setupRouter(&mockAuthService{}, analyticsSvc, &mockComplaintService{})

	w := jsonRequest(router, "DELETE", "/api/admin/users/42", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), analyticsSvc.deletedID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	analyticsSvc := &mockAnalyticsService{err: repository.ErrNotFound}
	router := setupRouter(&mockAuthService{}, analyticsSvc, &mockComplaintService{})

	w := jsonRequest(router, "DELETE", "/api/admin/users/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser_BadID(t *testing.T) {
	router := setupRouter(&mockAuthService{}, &mockAnalyticsService{}, &mockComplaintService{})

	w := jsonRequest(router, "DELETE", "/api/admin/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanupOrphans(t *testing.T) {
	router := setupRouter(&mockAuthService{}, &mockAnalyticsService{}, &mockComplaintService{})

	w := jsonRequest(router, "POST", "/api/admin/users/cleanup-orphans", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(3), response["removed"])
}

func TestUpdateComplaintStatus(t *testing.T) {
	complaintSvc := &mockComplaintService{
		updated: &models.Complaint{ID: 5, Status: models.ComplaintStatusResolved},
	}
	router := setupRouter(&mockAuthService{}, &mockAnalyticsService{}, complaintSvc)

	w := jsonRequest(router, "PUT", "/api/admin/complaints/5", `{"status": "RESOLVED"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RESOLVED", complaintSvc.lastStatus)
}

func TestUpdateComplaintStatus_Invalid(t *testing.T) {
	complaintSvc := &mockComplaintService{err: complaints.ErrInvalidStatus}
	router := setupRouter(&mockAuthService{}, &mockAnalyticsService{}, complaintSvc)

	w := jsonRequest(router, "PUT", "/api/admin/complaints/5", `{"status": "DONE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
