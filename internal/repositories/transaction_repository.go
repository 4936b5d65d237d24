package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"saldo/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateIdempotencyKey signals a concurrent create raced the
	// unique (user, idempotency key) index. The caller re-reads the
	// existing transaction instead of failing.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	// ErrStateConflict means a guarded transition found the transaction
	// in a different state than expected.
	ErrStateConflict = errors.New("transaction state conflict")
)

// TransactionRepository persists orchestrated transactions. State
// transitions are compare-and-set so concurrent orchestration calls and
// settlement callbacks never double-apply an effect.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error)
	GetByProviderID(ctx context.Context, providerTransactionID string) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	// TransitionState moves id from one of the expected states to next,
	// returning ErrStateConflict when the row was not in any of them.
	TransitionState(ctx context.Context, id string, from []string, to string) error
	MarkSettled(ctx context.Context, id string, from []string, at time.Time) error
	SumSettledByDirection(ctx context.Context, userID uint, direction string) (decimal.Decimal, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByProviderID(ctx context.Context, providerTransactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("provider_transaction_id = ?", providerTransactionID).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *transactionRepository) TransitionState(ctx context.Context, id string, from []string, to string) error {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND state IN ?", id, from).
		Update("state", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *transactionRepository) MarkSettled(ctx context.Context, id string, from []string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND state IN ?", id, from).
		Updates(map[string]interface{}{
			"state":      models.StateSettled,
			"settled_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *transactionRepository) SumSettledByDirection(ctx context.Context, userID uint, direction string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("SUM(amount)").
		Where("user_id = ? AND direction = ? AND state = ?", userID, direction, models.StateSettled).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
