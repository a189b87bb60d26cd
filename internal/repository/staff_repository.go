package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/atelier-next/internal/models"

	"gorm.io/gorm"
)

// StaffRepository is the staff account data access interface.
type StaffRepository interface {
	Create(staff *models.Staff) error
	GetByID(id uint) (*models.Staff, error)
	GetByUsername(username string) (*models.Staff, error)
	ListAll() ([]models.Staff, error)
	TouchLastLogin(id uint, at time.Time) error
}

// GormStaffRepository is the GORM implementation.
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a staff repository.
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// Create persists a staff account.
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}

// GetByID fetches a staff account by id.
func (r *GormStaffRepository) GetByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByUsername fetches a staff account by login name.
func (r *GormStaffRepository) GetByUsername(username string) (*models.Staff, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var staff models.Staff
	if err := r.db.Where("username = ?", username).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// ListAll returns every staff account.
func (r *GormStaffRepository) ListAll() ([]models.Staff, error) {
	var staff []models.Staff
	if err := r.db.Order("id asc").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// TouchLastLogin records a successful login time.
func (r *GormStaffRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Staff{}).Where("id = ?", id).Update("last_login_at", at).Error
}
