// Package orchestrator drives the transaction state machine: request
// authentication, acquirer routing, ledger reservation and submission,
// plus the inbound settlement of acquirer postbacks.
//
// States: created -> authorized -> reserved -> submitted ->
// {settled | rejected | expired}. Validation runs in a fixed order so
// failures are deterministic: credentials present, credentials valid,
// required fields, field formats, amount bounds, then (withdraw only)
// balance, withdraw-block and IP allow-list.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"saldo/internal/models"
	"saldo/internal/repositories"
	"saldo/internal/services/acquirer"
	"saldo/internal/services/apikey"
	"saldo/internal/services/ledger"
	"saldo/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Service orchestrates deposits, withdraws and settlements.
type Service interface {
	Deposit(ctx context.Context, req DepositRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*models.Transaction, error)
	GenerateQR(ctx context.Context, user *models.User, req QRRequest) (*models.Transaction, error)
	WithdrawWithKey(ctx context.Context, user *models.User, req KeyWithdrawRequest) (*models.Transaction, error)
	// OnCallback settles a previously submitted transaction from an
	// acquirer postback. Duplicate deliveries are re-acknowledged
	// without re-applying ledger effects.
	OnCallback(ctx context.Context, providerTransactionID, outcome string) (*models.Transaction, error)
}

type service struct {
	keys     apikey.Service
	registry acquirer.Registry
	ledger   ledger.Service
	txns     repositories.TransactionRepository
	users    repositories.UserRepository
	cache    repositories.CacheRepository
	config   Config
}

func NewService(
	keys apikey.Service,
	registry acquirer.Registry,
	ledgerSvc ledger.Service,
	txns repositories.TransactionRepository,
	users repositories.UserRepository,
	cache repositories.CacheRepository,
	config Config,
) Service {
	if keys == nil {
		panic("api key service is required")
	}
	if registry == nil {
		panic("acquirer registry is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if txns == nil {
		panic("transaction repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if config.AcquirerTimeout == 0 {
		config.AcquirerTimeout = DefaultAcquirerTimeout
	}
	return &service{
		keys:     keys,
		registry: registry,
		ledger:   ledgerSvc,
		txns:     txns,
		users:    users,
		cache:    cache,
		config:   config,
	}
}

func (s *service) Deposit(ctx context.Context, req DepositRequest) (*models.Transaction, error) {
	user, err := s.keys.Authenticate(ctx, req.Token, req.Secret)
	if err != nil {
		return nil, err
	}
	if !user.CanTransact() {
		return nil, ErrAccountInactive
	}

	if req.DebtorName == "" {
		return nil, validation.MissingField("debtor_name")
	}
	if req.Email == "" {
		return nil, validation.MissingField("email")
	}
	if !validation.ValidEmail(req.Email) {
		return nil, validation.InvalidFormat("email")
	}
	if err := validation.ValidateAmount(req.Amount, s.config.MaxAmount); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		IdempotencyKey: orDerived(req.IdempotencyKey),
		Direction:      models.DirectionDeposit,
		Rail:           models.RailPix,
		Amount:         req.Amount,
		State:          models.StateCreated,
		DebtorName:     req.DebtorName,
		Email:          req.Email,
	}
	if existing, created, err := s.createIdempotent(ctx, tx); err != nil {
		return nil, err
	} else if !created {
		return existing, nil
	}

	return s.submitDeposit(ctx, tx, false)
}

func (s *service) GenerateQR(ctx context.Context, user *models.User, req QRRequest) (*models.Transaction, error) {
	if user == nil || !user.CanTransact() {
		return nil, ErrAccountInactive
	}
	if err := validation.ValidateAmount(req.Amount, s.config.MaxAmount); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(req.Description); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		IdempotencyKey: orDerived(req.IdempotencyKey),
		Direction:      models.DirectionDeposit,
		Rail:           models.RailPix,
		Amount:         req.Amount,
		State:          models.StateCreated,
		Description:    req.Description,
	}
	if existing, created, err := s.createIdempotent(ctx, tx); err != nil {
		return nil, err
	} else if !created {
		return existing, nil
	}

	return s.submitDeposit(ctx, tx, true)
}

func (s *service) Withdraw(ctx context.Context, req WithdrawRequest) (*models.Transaction, error) {
	user, err := s.keys.Authenticate(ctx, req.Token, req.Secret)
	if err != nil {
		return nil, err
	}

	if req.PostbackURL == "" {
		return nil, validation.MissingField("baasPostbackUrl")
	}
	return s.withdraw(ctx, user, withdrawIntent{
		amount:         req.Amount,
		pixKey:         req.PixKey,
		pixKeyType:     req.PixKeyType,
		postbackURL:    req.PostbackURL,
		idempotencyKey: req.IdempotencyKey,
		sourceIP:       req.SourceIP,
	})
}

func (s *service) WithdrawWithKey(ctx context.Context, user *models.User, req KeyWithdrawRequest) (*models.Transaction, error) {
	if user == nil {
		return nil, ErrAccountInactive
	}
	return s.withdraw(ctx, user, withdrawIntent{
		amount:         req.Amount,
		pixKey:         req.KeyValue,
		pixKeyType:     req.KeyType,
		idempotencyKey: req.IdempotencyKey,
		sourceIP:       req.SourceIP,
	})
}

type withdrawIntent struct {
	amount         decimal.Decimal
	pixKey         string
	pixKeyType     string
	postbackURL    string
	idempotencyKey string
	sourceIP       string
}

func (s *service) withdraw(ctx context.Context, user *models.User, intent withdrawIntent) (*models.Transaction, error) {
	if !user.CanTransact() {
		return nil, ErrAccountInactive
	}

	if intent.pixKeyType == "" {
		return nil, validation.MissingField("pixKeyType")
	}
	if !validation.ValidPixKeyType(intent.pixKeyType) {
		return nil, validation.ErrInvalidPixKeyType
	}
	if err := validation.ValidatePixKey(intent.pixKeyType, intent.pixKey); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(intent.amount, s.config.MaxAmount); err != nil {
		return nil, err
	}

	// Advisory eligibility pre-checks, reported in this order before the
	// IP check. Reserve re-checks all of them under the row lock; only
	// that atomic check is authoritative.
	if user.WithdrawBlocked {
		return nil, ledger.ErrWithdrawBlocked
	}
	balance, err := s.ledger.Balance(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(intent.amount) {
		return nil, ledger.ErrInsufficientFunds
	}
	if !user.WithdrawIPAllowed(intent.sourceIP) {
		return nil, ErrIPNotAllowed
	}

	tx := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		IdempotencyKey: orDerived(intent.idempotencyKey),
		Direction:      models.DirectionWithdraw,
		Rail:           models.RailPix,
		Amount:         intent.amount,
		State:          models.StateCreated,
		PixKey:         intent.pixKey,
		PixKeyType:     intent.pixKeyType,
		PostbackURL:    intent.postbackURL,
	}
	if existing, created, err := s.createIdempotent(ctx, tx); err != nil {
		return nil, err
	} else if !created {
		return existing, nil
	}

	if err := s.transition(ctx, tx, models.StateCreated, models.StateAuthorized); err != nil {
		return nil, err
	}

	handle, err := s.registry.Select(ctx, tx.Capability())
	if err != nil {
		s.reject(ctx, tx)
		return nil, err
	}

	if err := s.ledger.Reserve(ctx, user.ID, tx.Amount, tx.ID); err != nil {
		s.reject(ctx, tx)
		return nil, err
	}
	if err := s.transition(ctx, tx, models.StateAuthorized, models.StateReserved); err != nil {
		return nil, err
	}

	// The acquirer call runs outside any held row lock: the reservation
	// already committed, so a slow provider cannot stall other
	// operations on this user.
	callCtx, cancel := context.WithTimeout(ctx, s.config.AcquirerTimeout)
	defer cancel()

	result, err := handle.SubmitWithdraw(callCtx, acquirer.WithdrawSubmission{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		PixKey:        tx.PixKey,
		PixKeyType:    tx.PixKeyType,
		PostbackURL:   tx.PostbackURL,
	})
	if err != nil {
		err = normalizeAcquirerErr(callCtx, err)
		log.Printf("withdraw %s failed at acquirer %s: %v", tx.ID, handle.Reference(), err)
		if relErr := s.ledger.Release(ctx, tx.ID); relErr != nil {
			log.Printf("failed to release reservation %s: %v", tx.ID, relErr)
		}
		s.reject(ctx, tx)
		return nil, err
	}

	tx.AcquirerReference = handle.Reference()
	tx.ProviderTransactionID = &result.ProviderTransactionID
	tx.State = models.StateSubmitted
	if err := s.txns.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}
	return tx, nil
}

// submitDeposit routes an already-created deposit through the acquirer.
// No ledger reservation happens here: funds move in only on confirmed
// settlement.
func (s *service) submitDeposit(ctx context.Context, tx *models.Transaction, viaQR bool) (*models.Transaction, error) {
	if err := s.transition(ctx, tx, models.StateCreated, models.StateAuthorized); err != nil {
		return nil, err
	}

	handle, err := s.registry.Select(ctx, tx.Capability())
	if err != nil {
		s.reject(ctx, tx)
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.AcquirerTimeout)
	defer cancel()

	sub := acquirer.DepositSubmission{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		DebtorName:    tx.DebtorName,
		Email:         tx.Email,
		Description:   tx.Description,
		PostbackURL:   tx.PostbackURL,
	}
	var result *acquirer.SubmitResult
	if viaQR {
		result, err = handle.GenerateQR(callCtx, sub)
	} else {
		result, err = handle.SubmitDeposit(callCtx, sub)
	}
	if err != nil {
		err = normalizeAcquirerErr(callCtx, err)
		log.Printf("deposit %s failed at acquirer %s: %v", tx.ID, handle.Reference(), err)
		s.reject(ctx, tx)
		return nil, err
	}

	tx.AcquirerReference = handle.Reference()
	tx.ProviderTransactionID = &result.ProviderTransactionID
	tx.QRCode = result.QRCode
	tx.State = models.StateSubmitted
	if err := s.txns.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}
	return tx, nil
}

// createIdempotent persists the transaction unless one already exists
// for the same (user, idempotency key), in which case the existing one
// is returned and no new acquirer submission happens.
func (s *service) createIdempotent(ctx context.Context, tx *models.Transaction) (*models.Transaction, bool, error) {
	if existing, err := s.txns.GetByIdempotencyKey(ctx, tx.UserID, tx.IdempotencyKey); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, false, err
	}

	if err := s.txns.Create(ctx, tx); err != nil {
		if errors.Is(err, repositories.ErrDuplicateIdempotencyKey) {
			// Lost the race to a concurrent duplicate submit.
			existing, gerr := s.txns.GetByIdempotencyKey(ctx, tx.UserID, tx.IdempotencyKey)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return tx, true, nil
}

func (s *service) transition(ctx context.Context, tx *models.Transaction, from, to string) error {
	if err := s.txns.TransitionState(ctx, tx.ID, []string{from}, to); err != nil {
		return err
	}
	tx.State = to
	return nil
}

func (s *service) reject(ctx context.Context, tx *models.Transaction) {
	err := s.txns.TransitionState(ctx, tx.ID,
		[]string{models.StateCreated, models.StateAuthorized, models.StateReserved},
		models.StateRejected)
	if err != nil && !errors.Is(err, repositories.ErrStateConflict) {
		log.Printf("failed to reject transaction %s: %v", tx.ID, err)
		return
	}
	tx.State = models.StateRejected
}

func normalizeAcquirerErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return acquirer.ErrTimeout
	}
	return err
}

func orDerived(key string) string {
	if key != "" {
		return key
	}
	return uuid.NewString()
}
