package orchestrator

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config bounds orchestrated transactions.
type Config struct {
	// MaxAmount caps a single transaction. Zero disables the cap.
	MaxAmount decimal.Decimal
	// AcquirerTimeout bounds every capability call. A provider that
	// does not answer in time is treated as AcquirerTimeout and the
	// reservation, if any, is released.
	AcquirerTimeout time.Duration
}

// DefaultAcquirerTimeout is applied when the config leaves it unset.
const DefaultAcquirerTimeout = 15 * time.Second

// DepositRequest is an API-key authenticated deposit initiation.
type DepositRequest struct {
	Token          string
	Secret         string
	Amount         decimal.Decimal
	DebtorName     string
	Email          string
	IdempotencyKey string
	SourceIP       string
}

// WithdrawRequest is an API-key authenticated PIX withdraw.
type WithdrawRequest struct {
	Token          string
	Secret         string
	Amount         decimal.Decimal
	PixKey         string
	PixKeyType     string
	PostbackURL    string
	IdempotencyKey string
	SourceIP       string
}

// QRRequest is a bearer-authenticated QR charge creation.
type QRRequest struct {
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

// KeyWithdrawRequest is a bearer-authenticated withdraw to a PIX key.
type KeyWithdrawRequest struct {
	Amount         decimal.Decimal
	KeyType        string
	KeyValue       string
	IdempotencyKey string
	SourceIP       string
}

// Settlement outcomes accepted from acquirer postbacks.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
)
