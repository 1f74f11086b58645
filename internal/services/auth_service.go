// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/utils"
)

// AuthService implements the single shared admin session: one credential
// pair, one stateless signed token with expiry. No RBAC, no refresh flow.
type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // seconds
	Admin     *models.User `json:"admin"`
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: config,
	}
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var admin models.User
	if err := s.db.Where("email = ? AND role = ?", req.Email, models.UserRoleAdmin).
		First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !admin.CheckPassword(req.Password) {
		return nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Email, string(admin.Role), s.config.JWT.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.config.JWT.SessionTTL * 3600,
		Admin:     &admin,
	}, nil
}
