// Package users provides REST API handlers for app-user signup and login.
// Signup is OTP-gated: the account exists only after email verification.
package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/service/auth"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// AuthService interface for user account operations.
type AuthService interface {
	UserSignupInit(ctx context.Context, emailAddr, password string) error
	UserVerifyAndCreate(ctx context.Context, emailAddr, code string) (*models.User, string, error)
	UserLogin(ctx context.Context, emailAddr, password string) (*models.User, string, error)
}

// Handler handles user account API requests.
type Handler struct {
	service AuthService
	log     *logger.Logger
}

// NewHandler creates a new users handler.
func NewHandler(service *auth.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new users handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service AuthService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignupInit stores a pending signup and emails an OTP.
// POST /api/users/signup.
func (h *Handler) SignupInit(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "valid email and password (min 6 chars) are required")
		return
	}

	if err := h.service.UserSignupInit(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			h.errorResponse(c, http.StatusConflict, "email already registered")
			return
		}
		h.log.Error().Err(err).Msg("Failed to start user signup")
		h.errorResponse(c, http.StatusInternalServerError, "failed to start signup")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

// Verify confirms the OTP and creates the account.
// POST /api/users/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and code are required")
		return
	}

	user, token, err := h.service.UserVerifyAndCreate(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			h.errorResponse(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		h.log.Error().Err(err).Msg("Failed to verify user signup")
		h.errorResponse(c, http.StatusInternalServerError, "failed to verify signup")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login authenticates an app user.
// POST /api/users/login.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.service.UserLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.errorResponse(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.log.Error().Err(err).Msg("Failed to log user in")
		h.errorResponse(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
