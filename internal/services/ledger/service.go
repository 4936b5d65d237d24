// Package ledger implements the balance ledger: atomic debit/credit
// against a user's saldo. All mutations for one user serialize on the
// user row (SELECT ... FOR UPDATE); mutations for different users
// proceed independently. Amounts are fixed-point decimals throughout.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/models"
	"saldo/internal/repositories"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the balance ledger contract. The reservation id is the
// transaction id of the withdraw being funded.
type Service interface {
	// Reserve atomically checks balance and withdraw eligibility and,
	// if both hold, debits the amount as a provisional hold.
	Reserve(ctx context.Context, userID uint, amount decimal.Decimal, reservationID string) error
	// Credit atomically increments the balance.
	Credit(ctx context.Context, userID uint, amount decimal.Decimal) error
	// SettleDeposit moves a submitted deposit to settled and credits its
	// amount in one database transaction. The state compare-and-set and
	// the credit commit together, so a transient failure rolls both back
	// and a redelivered confirmation can retry the whole effect. An
	// already-settled transaction yields repositories.ErrStateConflict
	// with no balance change.
	SettleDeposit(ctx context.Context, transactionID string, userID uint, amount decimal.Decimal, at time.Time) error
	// Release reverses a reservation that never settled. Releasing an
	// already-released or finalized reservation is a no-op.
	Release(ctx context.Context, reservationID string) error
	// Finalize marks a settled reservation so it can no longer be
	// released. The funds were already debited at Reserve time.
	Finalize(ctx context.Context, reservationID string) error
	Balance(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type service struct {
	db    *gorm.DB
	cache repositories.CacheRepository
}

func NewService(db *gorm.DB, cache repositories.CacheRepository) Service {
	if db == nil {
		panic("db is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{db: db, cache: cache}
}

func (s *service) Reserve(ctx context.Context, userID uint, amount decimal.Decimal, reservationID string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	var username string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the reservation marker first so a retried call cannot
		// debit twice for the same transaction.
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND reservation_held = ?", reservationID, false).
			Update("reservation_held", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // reservation already held
		}

		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		username = user.Username

		if !user.CanTransact() {
			return ErrUserInactive
		}
		if user.WithdrawBlocked {
			return ErrWithdrawBlocked
		}
		if user.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		user.Balance = user.Balance.Sub(amount)
		return tx.Save(user).Error
	})
	if err != nil {
		return err
	}

	s.invalidateBalance(ctx, username)
	return nil
}

func (s *service) Credit(ctx context.Context, userID uint, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	var username string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		username = user.Username
		user.Balance = user.Balance.Add(amount)
		return tx.Save(user).Error
	})
	if err != nil {
		return err
	}

	s.invalidateBalance(ctx, username)
	return nil
}

func (s *service) SettleDeposit(ctx context.Context, transactionID string, userID uint, amount decimal.Decimal, at time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	var username string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND state = ?", transactionID, models.StateSubmitted).
			Updates(map[string]interface{}{
				"state":      models.StateSettled,
				"settled_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrStateConflict
		}

		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		username = user.Username
		user.Balance = user.Balance.Add(amount)
		return tx.Save(user).Error
	})
	if err != nil {
		return err
	}

	s.invalidateBalance(ctx, username)
	return nil
}

func (s *service) Release(ctx context.Context, reservationID string) error {
	var username string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reservationID).
			First(&txn).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repositories.ErrTransactionNotFound
			}
			return err
		}
		if !txn.ReservationHeld {
			return nil // already released or finalized
		}

		if err := tx.Model(&txn).Update("reservation_held", false).Error; err != nil {
			return err
		}

		user, err := lockUser(tx, txn.UserID)
		if err != nil {
			return err
		}
		username = user.Username
		user.Balance = user.Balance.Add(txn.Amount)
		return tx.Save(user).Error
	})
	if err != nil {
		return err
	}

	s.invalidateBalance(ctx, username)
	return nil
}

func (s *service) Finalize(ctx context.Context, reservationID string) error {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND reservation_held = ?", reservationID, true).
		Update("reservation_held", false).Error
}

func (s *service) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}
	return &user, nil
}

func (s *service) invalidateBalance(ctx context.Context, username string) {
	if username == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, repositories.BalanceCacheKey(username)); err != nil {
		log.Printf("failed to invalidate balance cache for %s: %v", username, err)
	}
}
