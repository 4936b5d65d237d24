// Package user serves the cached profile and balance views. Reads go
// through the cache layer with a bounded TTL; every mutation here
// invalidates the keys it touches before returning.
package user

import (
	"context"
	"fmt"

	"saldo/internal/models"
	"saldo/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProfileView is the externally visible profile snapshot.
type ProfileView struct {
	ID       uint    `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Gender   *string `json:"gender"`
	Role     string  `json:"role"`
	Status   string  `json:"status"`
}

// BalanceView aggregates the user's settled money movement.
type BalanceView struct {
	TotalInflows  decimal.Decimal `json:"totalInflows"`
	TotalOutflows decimal.Decimal `json:"totalOutflows"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name   string
	Gender *string
}

type Service interface {
	// Profile serves the cached view for a username. The source row is
	// read inside the cache loader, so a hit never touches the database.
	Profile(ctx context.Context, username string) (*ProfileView, error)
	Balance(ctx context.Context, userID uint) (*BalanceView, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*ProfileView, error)
}

type service struct {
	users repositories.UserRepository
	txns  repositories.TransactionRepository
	cache repositories.CacheRepository
}

func NewService(users repositories.UserRepository, txns repositories.TransactionRepository, cache repositories.CacheRepository) Service {
	if users == nil {
		panic("user repository is required")
	}
	if txns == nil {
		panic("transaction repository is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{users: users, txns: txns, cache: cache}
}

func (s *service) Profile(ctx context.Context, username string) (*ProfileView, error) {
	view, err := repositories.GetOrLoad(ctx, s.cache,
		repositories.ProfileCacheKey(username),
		repositories.DefaultCacheTTL,
		func() (ProfileView, error) {
			user, err := s.users.GetByUsername(ctx, username)
			if err != nil {
				return ProfileView{}, err
			}
			return projectProfile(user), nil
		})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) Balance(ctx context.Context, userID uint) (*BalanceView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view, err := repositories.GetOrLoad(ctx, s.cache,
		repositories.BalanceCacheKey(user.Username),
		repositories.DefaultCacheTTL,
		func() (BalanceView, error) {
			inflows, err := s.txns.SumSettledByDirection(ctx, userID, models.DirectionDeposit)
			if err != nil {
				return BalanceView{}, fmt.Errorf("failed to sum inflows: %w", err)
			}
			outflows, err := s.txns.SumSettledByDirection(ctx, userID, models.DirectionWithdraw)
			if err != nil {
				return BalanceView{}, fmt.Errorf("failed to sum outflows: %w", err)
			}
			return BalanceView{TotalInflows: inflows, TotalOutflows: outflows}, nil
		})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Gender != nil {
		user.Gender = update.Gender
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	// Push invalidation before reporting success; the next read must
	// reflect this write.
	if err := s.cache.Invalidate(ctx, repositories.ProfileCacheKey(user.Username)); err != nil {
		return nil, fmt.Errorf("profile updated but cache invalidation failed: %w", err)
	}

	view := projectProfile(user)
	return &view, nil
}

func projectProfile(user *models.User) ProfileView {
	return ProfileView{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Gender:   user.Gender,
		Role:     user.Role,
		Status:   user.Status,
	}
}
