// Package complaints provides the app-facing REST API handler for filing
// support complaints. Admin-side listing and resolution live in the admin
// handler.
package complaints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/service/complaints"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ComplaintService interface for complaint operations.
type ComplaintService interface {
	Create(ctx context.Context, userID uint, emailAddr, subject, message string) (*models.Complaint, error)
}

// Handler handles complaint API requests.
type Handler struct {
	service ComplaintService
	log     *logger.Logger
}

// NewHandler creates a new complaints handler.
func NewHandler(service *complaints.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new complaints handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service ComplaintService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Create files a new complaint.
// POST /api/complaints.
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.AccountID(c)

	var req struct {
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := h.service.Create(c.Request.Context(), userID, req.Email, req.Subject, req.Message)
	if err != nil {
		if errors.Is(err, complaints.ErrMissingFields) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to create complaint")
		h.errorResponse(c, http.StatusInternalServerError, "failed to create complaint")
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
