package acquirer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Outcome is the closed set of results a capability call can produce.
// The orchestrator handles every variant exhaustively.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRejected    Outcome = "rejected"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeUnavailable Outcome = "unavailable"
)

// SubmitResult is what a provider returns when it takes a submission.
type SubmitResult struct {
	ProviderTransactionID string
	RawStatus             string
	QRCode                string
}

// DepositSubmission is the provider-facing deposit payload.
type DepositSubmission struct {
	TransactionID string
	Amount        decimal.Decimal
	DebtorName    string
	Email         string
	Description   string
	PostbackURL   string
}

// WithdrawSubmission is the provider-facing withdraw payload.
type WithdrawSubmission struct {
	TransactionID string
	Amount        decimal.Decimal
	PixKey        string
	PixKeyType    string
	PostbackURL   string
}

// Handle exposes the capability calls of one configured acquirer. Calls
// are black boxes with bounded latency: the caller sets the deadline and
// must not assume synchronous success.
type Handle interface {
	Reference() string
	SubmitDeposit(ctx context.Context, sub DepositSubmission) (*SubmitResult, error)
	SubmitWithdraw(ctx context.Context, sub WithdrawSubmission) (*SubmitResult, error)
	GenerateQR(ctx context.Context, sub DepositSubmission) (*SubmitResult, error)
}
