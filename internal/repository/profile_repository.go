package repository

import (
	"errors"
	"strings"

	"github.com/atelier-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository is the customer profile data access interface.
type ProfileRepository interface {
	Create(profile *models.Profile) error
	GetByID(id uint) (*models.Profile, error)
	GetByIDForUpdate(id uint) (*models.Profile, error)
	GetByEmail(email string) (*models.Profile, error)
	List(filter ProfileListFilter) ([]models.Profile, int64, error)
	Updates(id uint, updates map[string]interface{}) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormProfileRepository
}

// GormProfileRepository is the GORM implementation.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a profile repository.
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormProfileRepository) WithTx(tx *gorm.DB) *GormProfileRepository {
	if tx == nil {
		return r
	}
	return &GormProfileRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormProfileRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create persists a profile.
func (r *GormProfileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// GetByID fetches a profile by id.
func (r *GormProfileRepository) GetByID(id uint) (*models.Profile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByIDForUpdate fetches a profile with a row lock.
func (r *GormProfileRepository) GetByIDForUpdate(id uint) (*models.Profile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByEmail fetches a profile by email.
func (r *GormProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// List queries profiles by filter with pagination.
func (r *GormProfileRepository) List(filter ProfileListFilter) ([]models.Profile, int64, error) {
	query := r.db.Model(&models.Profile{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("full_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	query = applyPagination(query.Order("created_at DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Updates applies a partial field update and reports affected rows.
func (r *GormProfileRepository) Updates(id uint, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}
