package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/security"
)

const defaultPassword = "admin"

// ErrInvalidCredentials is returned for unknown users or wrong passwords
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles authentication operations
type AuthService struct {
	username     string
	passwordHash []byte
	jwtManager   *security.JWTManager
}

// NewAuthService creates a new auth service for a single configured account.
// Without a password hash the account accepts the default password.
func NewAuthService(username, passwordHash string, jwtManager *security.JWTManager) (*AuthService, error) {
	hash := []byte(passwordHash)
	if passwordHash == "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		log.Warn().Str("username", username).Msg("No password hash configured, using the default password")
	}

	return &AuthService{
		username:     username,
		passwordHash: hash,
		jwtManager:   jwtManager,
	}, nil
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input domain.LoginRequest) (string, error) {
	if input.Username != s.username {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(input.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// ValidateToken returns the username a token was issued to
func (s *AuthService) ValidateToken(token string) (string, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}
