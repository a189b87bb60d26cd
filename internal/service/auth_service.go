package service

import (
	"strings"
	"time"

	"github.com/atelier-next/internal/config"
	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates staff and issues session tokens.
type AuthService struct {
	cfg       *config.Config
	staffRepo repository.StaffRepository
}

// NewAuthService creates the auth service.
func NewAuthService(cfg *config.Config, staffRepo repository.StaffRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		staffRepo: staffRepo,
	}
}

// HashPassword hashes a password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims is the staff session token payload.
type JWTClaims struct {
	StaffID  uint   `json:"staff_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a signed session token for a staff member.
func (s *AuthService) GenerateJWT(staff *models.Staff) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)

	claims := JWTClaims{
		StaffID:  staff.ID,
		Username: staff.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT validates a session token and returns its claims.
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrBadCredentials
}

// Login authenticates a staff member and issues a token.
func (s *AuthService) Login(username, password string) (*models.Staff, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", time.Time{}, validationErrorf("username and password required")
	}
	staff, err := s.staffRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, storeErrorf("fetch staff", err)
	}
	if staff == nil {
		return nil, "", time.Time{}, ErrBadCredentials
	}
	if err := s.VerifyPassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrBadCredentials
	}
	if staff.Status != constants.StaffStatusActive {
		return nil, "", time.Time{}, ErrStaffDisabled
	}

	token, expiresAt, err := s.GenerateJWT(staff)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.staffRepo.TouchLastLogin(staff.ID, time.Now()); err != nil {
		logger.Warnw("record last login failed", "staff_id", staff.ID, "error", err)
	}
	return staff, token, expiresAt, nil
}

// CreateStaffInput is a new staff account.
type CreateStaffInput struct {
	Username    string
	Password    string
	DisplayName string
}

// CreateStaff registers a staff account. Role assignment is a separate
// authz operation.
func (s *AuthService) CreateStaff(input CreateStaffInput) (*models.Staff, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, validationErrorf("username required")
	}
	if len(input.Password) < 8 {
		return nil, validationErrorf("password must be at least 8 characters")
	}
	existing, err := s.staffRepo.GetByUsername(username)
	if err != nil {
		return nil, storeErrorf("fetch staff", err)
	}
	if existing != nil {
		return nil, validationErrorf("username %s already taken", username)
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	staff := &models.Staff{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Status:       constants.StaffStatusActive,
	}
	if err := s.staffRepo.Create(staff); err != nil {
		return nil, storeErrorf("create staff", err)
	}
	return staff, nil
}

// ListStaff returns all staff accounts.
func (s *AuthService) ListStaff() ([]models.Staff, error) {
	staff, err := s.staffRepo.ListAll()
	if err != nil {
		return nil, storeErrorf("list staff", err)
	}
	return staff, nil
}

// GetStaff fetches a staff member by id.
func (s *AuthService) GetStaff(staffID uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return nil, storeErrorf("fetch staff", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}
