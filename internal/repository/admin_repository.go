package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutriwise/nutriwise-api/internal/models"
)

// AdminRepository handles admin account database operations.
type AdminRepository struct {
	db *DB
}

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create creates an admin account.
func (r *AdminRepository) Create(admin *models.Admin) error {
	if err := r.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin %d: %w", id, err)
	}
	return &admin, nil
}

// GetByEmail retrieves an admin by email.
func (r *AdminRepository) GetByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &admin, nil
}

// Update saves an admin.
func (r *AdminRepository) Update(admin *models.Admin) error {
	if err := r.db.Save(admin).Error; err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

// EmailExists reports whether an admin with the given email exists.
func (r *AdminRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return count > 0, nil
}
