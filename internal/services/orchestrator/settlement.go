package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/models"
	"saldo/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// OnCallback processes an asynchronous acquirer postback for a
// previously submitted transaction.
//
// The state transition is a compare-and-set: it is the guard that makes
// repeated webhook delivery safe. The ledger effect runs only after the
// transition wins, so a duplicate confirmation can never double-credit.
func (s *service) OnCallback(ctx context.Context, providerTransactionID, outcome string) (*models.Transaction, error) {
	if providerTransactionID == "" {
		return nil, ErrUnknownTransaction
	}

	tx, err := s.txns.GetByProviderID(ctx, providerTransactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrUnknownTransaction
		}
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	if tx.Terminal() {
		log.Printf("duplicate settlement callback for %s (state %s), re-acknowledging", tx.ID, tx.State)
		return tx, nil
	}

	switch outcome {
	case OutcomeConfirmed:
		return s.confirm(ctx, tx)
	case OutcomeRejected:
		return s.rejectSettlement(ctx, tx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
}

func (s *service) confirm(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	now := time.Now()

	switch tx.Direction {
	case models.DirectionDeposit:
		// The settle transition and the credit commit in one database
		// transaction. A transient failure rolls both back, leaving the
		// transaction submitted so the redelivered callback retries the
		// whole effect instead of hitting the terminal-state guard with
		// the credit missing.
		err := s.ledger.SettleDeposit(ctx, tx.ID, tx.UserID, tx.Amount, now)
		if err != nil {
			if errors.Is(err, repositories.ErrStateConflict) {
				// Raced another delivery of the same callback.
				return s.reacknowledge(ctx, tx.ID)
			}
			return nil, fmt.Errorf("failed to settle deposit %s: %w", tx.ID, err)
		}
	case models.DirectionWithdraw:
		err := s.txns.MarkSettled(ctx, tx.ID, []string{models.StateSubmitted}, now)
		if err != nil {
			if errors.Is(err, repositories.ErrStateConflict) {
				return s.reacknowledge(ctx, tx.ID)
			}
			return nil, err
		}
		// Funds were already debited at reservation time; only the
		// reservation marker is cleared.
		if err := s.ledger.Finalize(ctx, tx.ID); err != nil {
			return nil, fmt.Errorf("failed to finalize reservation %s: %w", tx.ID, err)
		}
		s.invalidateBalanceFor(ctx, tx.UserID)
	}

	tx.State = models.StateSettled
	tx.SettledAt = &now
	log.Printf("transaction %s settled (%s %s)", tx.ID, tx.Direction, tx.Amount)
	return tx, nil
}

func (s *service) rejectSettlement(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	err := s.txns.TransitionState(ctx, tx.ID,
		[]string{models.StateSubmitted, models.StateReserved},
		models.StateRejected)
	if err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return s.reacknowledge(ctx, tx.ID)
		}
		return nil, err
	}
	tx.State = models.StateRejected

	if tx.Direction == models.DirectionWithdraw {
		if err := s.ledger.Release(ctx, tx.ID); err != nil {
			return nil, fmt.Errorf("failed to release rejected withdraw %s: %w", tx.ID, err)
		}
	}

	log.Printf("transaction %s rejected by acquirer callback", tx.ID)
	return tx, nil
}

// reacknowledge re-reads a transaction that lost a settlement race and
// acks it without applying any further effect.
func (s *service) reacknowledge(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.txns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.Terminal() {
		return nil, repositories.ErrStateConflict
	}
	return tx, nil
}

func (s *service) invalidateBalanceFor(ctx context.Context, userID uint) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("failed to resolve user %d for cache invalidation: %v", userID, err)
		return
	}
	if err := s.cache.Invalidate(ctx, repositories.BalanceCacheKey(user.Username)); err != nil {
		log.Printf("failed to invalidate balance cache for %s: %v", user.Username, err)
	}
}
