// Package admin provides REST API handlers for the admin dashboard: OTP-gated
// admin accounts, analytics aggregations, complaint management and user
// administration.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/analytics"
	"github.com/nutriwise/nutriwise-api/internal/service/auth"
	"github.com/nutriwise/nutriwise-api/internal/service/complaints"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// AuthService interface for admin account operations.
type AuthService interface {
	AdminSignupInit(ctx context.Context, firstName, lastName, emailAddr, password string) error
	AdminVerifyAndCreate(ctx context.Context, emailAddr, code string) (*models.Admin, string, error)
	AdminLogin(ctx context.Context, emailAddr, password string) (*models.Admin, string, error)
	GetAdminProfile(ctx context.Context, adminID uint) (*models.Admin, error)
	UpdateAdminProfile(ctx context.Context, adminID uint, firstName, lastName, newEmail string) (bool, error)
	VerifyNewEmail(ctx context.Context, adminID uint, newEmail, code string) error
	ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error
	ForgotPasswordInit(ctx context.Context, emailAddr string) error
	VerifyResetCode(ctx context.Context, emailAddr, code string) error
	ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error
}

// AnalyticsService interface for dashboard aggregations.
type AnalyticsService interface {
	GetDashboardStats(ctx context.Context) (*analytics.DashboardStats, error)
	GetBMIDistribution(ctx context.Context) ([]analytics.NameValue, error)
	GetDietDistribution(ctx context.Context) ([]analytics.NameValue, error)
	GetGoalDistribution(ctx context.Context) ([]analytics.NameValue, error)
	GetAllergyFrequency(ctx context.Context) ([]analytics.NameValue, error)
	GetUserGrowth(ctx context.Context) ([]analytics.NameValue, error)
	ListUsers(ctx context.Context) ([]analytics.UserRow, error)
	DeleteUser(ctx context.Context, userID uint) error
	CleanupOrphans(ctx context.Context) (int64, error)
}

// ComplaintService interface for admin-side complaint management.
type ComplaintService interface {
	List(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Complaint, error)
}

// Handler handles admin API requests.
type Handler struct {
	authService      AuthService
	analyticsService AnalyticsService
	complaintService ComplaintService
	log              *logger.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(
	authService *auth.Service,
	analyticsService *analytics.Service,
	complaintService *complaints.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		authService:      authService,
		analyticsService: analyticsService,
		complaintService: complaintService,
		log:              log,
	}
}

// NewHandlerWithInterfaces creates a new admin handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	authService AuthService,
	analyticsService AnalyticsService,
	complaintService ComplaintService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		authService:      authService,
		analyticsService: analyticsService,
		complaintService: complaintService,
		log:              log,
	}
}

// Account flows

// SignupInit stores a pending admin signup and emails an OTP.
// POST /api/admin/signup.
func (h *Handler) SignupInit(c *gin.Context) {
	var req struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "firstName, lastName, valid email and password (min 8 chars) are required")
		return
	}

	if err := h.authService.AdminSignupInit(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			h.errorResponse(c, http.StatusConflict, "email already registered")
			return
		}
		h.log.Error().Err(err).Msg("Failed to start admin signup")
		h.errorResponse(c, http.StatusInternalServerError, "failed to start signup")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

// VerifySignup confirms the OTP and creates the admin account.
// POST /api/admin/signup/verify.
func (h *Handler) VerifySignup(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and code are required")
		return
	}

	admin, token, err := h.authService.AdminVerifyAndCreate(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			h.errorResponse(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.log.Error().Err(err).Msg("Failed to verify admin signup")
		h.errorResponse(c, http.StatusInternalServerError, "failed to verify signup")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"admin": admin, "token": token})
}

// Login authenticates an admin.
// POST /api/admin/login.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, token, err := h.authService.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.errorResponse(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.log.Error().Err(err).Msg("Failed to log admin in")
		h.errorResponse(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"admin": admin, "token": token})
}

// GetProfile returns the authenticated admin's account.
// GET /api/admin/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	adminID := middleware.AccountID(c)

	admin, err := h.authService.GetAdminProfile(c.Request.Context(), adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "admin not found")
			return
		}
		h.log.Error().Err(err).Uint("admin_id", adminID).Msg("Failed to get admin profile")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, admin)
}

// UpdateProfile updates names immediately; an email change is parked until
// the OTP sent to the new address is confirmed.
// PUT /api/admin/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	adminID := middleware.AccountID(c)

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	emailPending, err := h.authService.UpdateAdminProfile(c.Request.Context(), adminID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "admin not found")
		case errors.Is(err, auth.ErrEmailExists):
			h.errorResponse(c, http.StatusConflict, "email already registered")
		default:
			h.log.Error().Err(err).Uint("admin_id", adminID).Msg("Failed to update admin profile")
			h.errorResponse(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"emailVerificationPending": emailPending})
}

// VerifyNewEmail confirms an email change with the OTP sent to the new
// address.
// POST /api/admin/profile/verify-email.
func (h *Handler) VerifyNewEmail(c *gin.Context) {
	adminID := middleware.AccountID(c)

	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and code are required")
		return
	}

	if err := h.authService.VerifyNewEmail(c.Request.Context(), adminID, req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			h.errorResponse(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.log.Error().Err(err).Uint("admin_id", adminID).Msg("Failed to verify new admin email")
		h.errorResponse(c, http.StatusInternalServerError, "failed to verify email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email updated"})
}

// ChangePassword rotates the admin's password.
// POST /api/admin/change-password.
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID := middleware.AccountID(c)

	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "oldPassword and newPassword (min 8 chars) are required")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), adminID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.errorResponse(c, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		h.log.Error().Err(err).Uint("admin_id", adminID).Msg("Failed to change admin password")
		h.errorResponse(c, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// ForgotPassword emails a reset OTP to a registered admin.
// POST /api/admin/forgot-password.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.authService.ForgotPasswordInit(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "no account for that email")
			return
		}
		h.log.Error().Err(err).Msg("Failed to start password reset")
		h.errorResponse(c, http.StatusInternalServerError, "failed to start password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset code sent"})
}

// VerifyResetCode checks a reset OTP without consuming it, so the client can
// gate the new-password form.
// POST /api/admin/verify-reset-code.
func (h *Handler) VerifyResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and code are required")
		return
	}

	if err := h.authService.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			h.errorResponse(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.log.Error().Err(err).Msg("Failed to verify reset code")
		h.errorResponse(c, http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ResetPassword consumes the reset OTP and sets the new password.
// POST /api/admin/reset-password.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email, code and newPassword (min 8 chars) are required")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			h.errorResponse(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.log.Error().Err(err).Msg("Failed to reset password")
		h.errorResponse(c, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// Analytics

// GetDashboard returns the headline totals.
// GET /api/admin/dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get dashboard stats")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetBMIDistribution returns users bucketed by BMI band.
// GET /api/admin/analytics/bmi.
func (h *Handler) GetBMIDistribution(c *gin.Context) {
	h.nameValueResponse(c, "bmi distribution", h.analyticsService.GetBMIDistribution)
}

// GetDietDistribution returns users bucketed by derived diet.
// GET /api/admin/analytics/diets.
func (h *Handler) GetDietDistribution(c *gin.Context) {
	h.nameValueResponse(c, "diet distribution", h.analyticsService.GetDietDistribution)
}

// GetGoalDistribution returns the most common sub-goals.
// GET /api/admin/analytics/goals.
func (h *Handler) GetGoalDistribution(c *gin.Context) {
	h.nameValueResponse(c, "goal distribution", h.analyticsService.GetGoalDistribution)
}

// GetAllergyFrequency returns health-concern frequencies.
// GET /api/admin/analytics/allergies.
func (h *Handler) GetAllergyFrequency(c *gin.Context) {
	h.nameValueResponse(c, "allergy frequency", h.analyticsService.GetAllergyFrequency)
}

// GetUserGrowth returns signups bucketed by day.
// GET /api/admin/analytics/growth.
func (h *Handler) GetUserGrowth(c *gin.Context) {
	h.nameValueResponse(c, "user growth", h.analyticsService.GetUserGrowth)
}

// ListUsers returns the user management table.
// GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	rows, err := h.analyticsService.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		h.errorResponse(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows, "count": len(rows)})
}

// DeleteUser removes a user and their dependent rows.
// DELETE /api/admin/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.analyticsService.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to delete user")
		h.errorResponse(c, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.log.Info().Uint("user_id", userID).Msg("User deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// CleanupOrphans deletes profiles whose user is gone.
// POST /api/admin/users/cleanup-orphans.
func (h *Handler) CleanupOrphans(c *gin.Context) {
	removed, err := h.analyticsService.CleanupOrphans(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to clean up orphan profiles")
		h.errorResponse(c, http.StatusInternalServerError, "failed to clean up orphans")
		return
	}

	h.log.Info().Int64("removed", removed).Msg("Orphan profiles cleaned up")
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Complaints

// ListComplaints returns every complaint, newest first.
// GET /api/admin/complaints.
func (h *Handler) ListComplaints(c *gin.Context) {
	list, err := h.complaintService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list complaints")
		h.errorResponse(c, http.StatusInternalServerError, "failed to list complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list, "count": len(list)})
}

// UpdateComplaintStatus moves a complaint through its workflow.
// PUT /api/admin/complaints/:id.
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "status is required")
		return
	}

	complaint, err := h.complaintService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, complaints.ErrInvalidStatus):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "complaint not found")
		default:
			h.log.Error().Err(err).Uint("complaint_id", id).Msg("Failed to update complaint status")
			h.errorResponse(c, http.StatusInternalServerError, "failed to update complaint")
		}
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// Helpers

func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.New("invalid id: " + idStr)
	}
	return uint(id), nil
}

// nameValueResponse runs one aggregation and writes its rows.
func (h *Handler) nameValueResponse(c *gin.Context, what string, fn func(context.Context) ([]analytics.NameValue, error)) {
	rows, err := fn(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Str("aggregation", what).Msg("Failed to run analytics aggregation")
		h.errorResponse(c, http.StatusInternalServerError, "failed to get "+what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
