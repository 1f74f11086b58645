// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/utils"
)

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	admin := &models.User{Email: email, Role: models.UserRoleAdmin}
	require.NoError(t, admin.SetPassword(password))
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func authConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", SessionTTL: 24},
	}
}

func TestLoginIssuesToken(t *testing.T) {
	db := setupServiceDB(t)
	seedAdmin(t, db, "admin@construmax.com.uy", "secreto123")

	utils.SetJWTSecret("test-secret")
	svc := NewAuthService(db, authConfig())

	result, err := svc.Login(&LoginRequest{
		Email:    "admin@construmax.com.uy",
		Password: "secreto123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 24*3600, result.ExpiresIn)

	claims, err := utils.ValidateAdminToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@construmax.com.uy", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupServiceDB(t)
	seedAdmin(t, db, "admin@construmax.com.uy", "secreto123")

	svc := NewAuthService(db, authConfig())

	_, err := svc.Login(&LoginRequest{
		Email:    "admin@construmax.com.uy",
		Password: "otra-cosa",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuthService(db, authConfig())

	_, err := svc.Login(&LoginRequest{
		Email:    "nadie@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}
