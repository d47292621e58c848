// Package complaints handles support requests: filed from the app, worked
// through statuses by admins, with a notification email on resolution.
package complaints

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutriwise/nutriwise-api/internal/email"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// ErrInvalidStatus marks an unknown status value.
var ErrInvalidStatus = errors.New("invalid complaint status")

// ErrMissingFields marks a create request without the required fields.
var ErrMissingFields = errors.New("email, subject and message are required")

// ComplaintRepository interface for complaint operations.
type ComplaintRepository interface {
	Create(complaint *models.Complaint) error
	List() ([]models.Complaint, error)
	UpdateStatus(id uint, status string) (*models.Complaint, error)
}

// Service manages the complaint lifecycle.
type Service struct {
	repo   ComplaintRepository
	mailer email.Sender
	log    *logger.Logger
}

// NewService creates a new complaints service.
func NewService(repo *repository.ComplaintRepository, mailer email.Sender, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, mailer, log)
}

// NewServiceWithInterfaces creates a new complaints service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(repo ComplaintRepository, mailer email.Sender, log *logger.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, log: log}
}

// Create files a new complaint in UNRESOLVED state.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Create(ctx context.Context, userID uint, emailAddr, subject, message string) (*models.Complaint, error) {
	if emailAddr == "" || subject == "" || message == "" {
		return nil, ErrMissingFields
	}

	complaint := &models.Complaint{
		UserID:  userID,
		Email:   emailAddr,
		Subject: subject,
		Message: message,
		Status:  models.ComplaintStatusUnresolved,
	}
	if err := s.repo.Create(complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// List returns every complaint, newest first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) List(ctx context.Context) ([]models.Complaint, error) {
	return s.repo.List()
}

// UpdateStatus moves a complaint to a new status. On the transition to
// RESOLVED the user is notified by email fire-and-forget: a failed send is
// logged and never fails the update.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*models.Complaint, error) {
	switch status {
	case models.ComplaintStatusUnresolved, models.ComplaintStatusInProgress, models.ComplaintStatusResolved:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	complaint, err := s.repo.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	if status == models.ComplaintStatusResolved {
		subject, body := email.ComplaintResolvedEmail(complaint.Subject)
		if err := s.mailer.Send(complaint.Email, subject, body); err != nil {
			s.log.Error().
				Err(err).
				Uint("complaint_id", complaint.ID).
				Msg("Failed to send resolution email")
		}
	}

	return complaint, nil
}
