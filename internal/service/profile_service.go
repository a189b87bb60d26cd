package service

import (
	"strings"

	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"
)

// ProfileService manages customer profiles for sales associates.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates the profile service.
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// CreateProfileInput is a new customer record.
type CreateProfileInput struct {
	FullName string
	Email    string
	Phone    string
}

// CreateProfile registers a customer.
func (s *ProfileService) CreateProfile(input CreateProfileInput) (*models.Profile, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" {
		return nil, validationErrorf("customer name required")
	}
	if email == "" {
		return nil, validationErrorf("customer email required")
	}
	existing, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, storeErrorf("fetch profile", err)
	}
	if existing != nil {
		return nil, validationErrorf("email %s already registered", email)
	}
	profile := &models.Profile{
		FullName: fullName,
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, storeErrorf("create profile", err)
	}
	return profile, nil
}

// GetProfile fetches one profile.
func (s *ProfileService) GetProfile(profileID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, storeErrorf("fetch profile", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ListProfiles queries profiles with pagination.
func (s *ProfileService) ListProfiles(filter repository.ProfileListFilter) ([]models.Profile, int64, error) {
	profiles, total, err := s.profileRepo.List(filter)
	if err != nil {
		return nil, 0, storeErrorf("list profiles", err)
	}
	return profiles, total, nil
}
