package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// DefaultTokenTTL is the lifetime of an issued bearer token
const DefaultTokenTTL = 24 * time.Hour

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService authenticates the single configured operator account
type authService struct {
	username     string
	passwordHash string
	authAdapter  driven.AuthAdapter
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService for the operator account.
// The password is hashed once here and never kept in plain text.
func NewAuthService(authAdapter driven.AuthAdapter, username, password string) (driving.AuthService, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: admin username and password are required", domain.ErrInvalidInput)
	}

	hash, err := authAdapter.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &authService{
		username:     username,
		passwordHash: hash,
		authAdapter:  authAdapter,
		tokenTTL:     DefaultTokenTTL,
	}, nil
}

// Authenticate validates credentials and issues a token
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passOK := s.authAdapter.VerifyPassword(req.Password, s.passwordHash)
	if !userOK || !passOK {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token, err := s.authAdapter.GenerateToken(&domain.TokenClaims{
		Username:  s.username,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, err
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}
	if claims.Username != s.username {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.AuthContext{Username: claims.Username}, nil
}
