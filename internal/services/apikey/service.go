// Package apikey implements the API key store: resolving a token+secret
// pair to its owning user, and issuing/rotating key pairs.
package apikey

import (
	"context"
	"errors"
	"fmt"

	"saldo/internal/models"
	"saldo/internal/repositories"
	"saldo/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// KeyPair carries the plaintext credentials, returned exactly once at
// issuance. Only the secret's hash is stored.
type KeyPair struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// Service authenticates API key credentials and manages issuance.
type Service interface {
	// Authenticate resolves (token, secret) to the owning user. It is
	// read-only and never touches caches.
	Authenticate(ctx context.Context, token, secret string) (*models.User, error)
	// IssueKeyPair creates a fresh pair for the user, revoking any
	// previously active keys. Latest-issued wins.
	IssueKeyPair(ctx context.Context, userID uint) (*KeyPair, error)
}

type service struct {
	keys  repositories.ApiKeyRepository
	users repositories.UserRepository
}

func NewService(keys repositories.ApiKeyRepository, users repositories.UserRepository) Service {
	if keys == nil {
		panic("api key repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	return &service{keys: keys, users: users}
}

func (s *service) Authenticate(ctx context.Context, token, secret string) (*models.User, error) {
	if token == "" || secret == "" {
		return nil, ErrMissingCredentials
	}

	key, err := s.keys.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrApiKeyNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	// bcrypt comparison is constant-time against the stored hash.
	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load key owner: %w", err)
	}
	return user, nil
}

func (s *service) IssueKeyPair(ctx context.Context, userID uint) (*KeyPair, error) {
	secret, err := utils.GenerateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	key := &models.ApiKey{
		UserID:     userID,
		Token:      uuid.NewString(),
		SecretHash: string(hash),
		Status:     models.ApiKeyStatusActive,
	}
	if err := s.keys.Rotate(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to rotate api key: %w", err)
	}

	return &KeyPair{Token: key.Token, Secret: secret}, nil
}
