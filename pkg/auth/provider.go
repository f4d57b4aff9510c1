package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/backend"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
)

// Provider checks dashboard credentials. The returned token, if any, is
// forwarded to the backend on later requests.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// BackendProvider delegates login to the scheduling backend
type BackendProvider struct {
	Backend backend.API
}

// Authenticate logs in against the backend and returns its access token
func (p *BackendProvider) Authenticate(ctx context.Context, username, password string) (string, error) {
	token, err := p.Backend.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("backend login: %w", err)
	}
	return token, nil
}

// LocalProvider checks credentials against the master_users table
type LocalProvider struct {
	DB *gorm.DB
}

// Authenticate verifies the bcrypt hash of a master user. No backend token is issued.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (string, error) {
	var user database.MasterUser
	if err := p.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return "", nil
}

// EnsureAdminExists creates the admin user when master_users is empty
func EnsureAdminExists(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := database.MasterUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	slog.Info("default admin user created", "username", username)
	return nil
}
