package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/user/webstat/internal/auth"
	"github.com/user/webstat/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthUseCase issues dashboard tokens.
type AuthUseCase struct {
	users     domain.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(users domain.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthUseCase {
	if jwtExpiry <= 0 {
		jwtExpiry = 24 * time.Hour
	}
	return &AuthUseCase{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Login verifies credentials and returns a signed token.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID, uc.jwtSecret, uc.jwtExpiry)
}
