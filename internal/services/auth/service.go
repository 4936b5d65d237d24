// Package auth implements session login: password verification, bearer
// token issuance and API key pair refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/models"
	"saldo/internal/repositories"
	"saldo/internal/services/apikey"
	"saldo/internal/utils"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidLogin    = errors.New("invalid email or password")
	ErrAccountDisabled = errors.New("account is disabled")
)

// LoginResult carries the session tokens plus the refreshed API key
// pair. The key secret is visible here only.
type LoginResult struct {
	AccessToken  string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
	ApiKey       *apikey.KeyPair `json:"api_key"`
}

type Service interface {
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, id uint) (int, error)
}

// RegisterInput is the minimal registration payload.
type RegisterInput struct {
	Email    string
	Username string
	Name     string
	Password string
}

type service struct {
	users repositories.UserRepository
	keys  apikey.Service
}

func NewService(users repositories.UserRepository, keys apikey.Service) Service {
	if users == nil {
		panic("user repository is required")
	}
	if keys == nil {
		panic("api key service is required")
	}
	return &service{users: users, keys: keys}
}

func (s *service) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}

	if user.Status == models.UserStatusBanned || user.Status == models.UserStatusInactive {
		return nil, ErrAccountDisabled
	}

	user.LastLoginAt = time.Now()
	user.LastLoginIP = ip
	if err := s.users.Update(ctx, user); err != nil {
		log.Printf("failed to record login for user %d: %v", user.ID, err)
	}

	access, refresh, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Every login refreshes the API key pair; the previous pair is
	// revoked in the same transaction.
	pair, err := s.keys.IssueKeyPair(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue api key pair: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ApiKey:       pair,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    input.Email,
		Username: input.Username,
		Name:     input.Name,
		Password: string(hash),
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *service) GetUserTokenVersion(ctx context.Context, id uint) (int, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}
