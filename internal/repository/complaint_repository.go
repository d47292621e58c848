package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// ComplaintRepository handles complaint database operations.
type ComplaintRepository struct {
	db *DB
}

// NewComplaintRepository creates a new complaint repository.
func NewComplaintRepository(db *DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create creates a complaint.
func (r *ComplaintRepository) Create(complaint *models.Complaint) error {
	if err := r.db.Create(complaint).Error; err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetByID retrieves a complaint by ID.
func (r *ComplaintRepository) GetByID(id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.First(&complaint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get complaint %d: %w", id, err)
	}
	return &complaint, nil
}

// List retrieves complaints with user rows preloaded, newest first.
func (r *ComplaintRepository) List() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.
		Preload("User").
		Order("created_at DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// UpdateStatus changes a complaint's status and returns the updated row.
func (r *ComplaintRepository) UpdateStatus(id uint, status string) (*models.Complaint, error) {
	complaint, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	complaint.Status = status
	if err := r.db.Save(complaint).Error; err != nil {
		return nil, fmt.Errorf("failed to update complaint status: %w", err)
	}
	return complaint, nil
}
