package acquirer

import (
	"context"
	"errors"

	"saldo/internal/config"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// StripeCardHandle serves the card capability through Stripe charges.
type StripeCardHandle struct {
	reference string
}

func NewStripeCardHandle(reference string) *StripeCardHandle {
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &StripeCardHandle{reference: reference}
}

func (h *StripeCardHandle) Reference() string { return h.reference }

func (h *StripeCardHandle) SubmitDeposit(ctx context.Context, sub DepositSubmission) (*SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(toCents(sub.Amount)),
		Currency:    stripe.String(string(stripe.CurrencyBRL)),
		Description: stripe.String(sub.Description),
	}
	params.Context = ctx

	ch, err := charge.New(params)
	if err != nil {
		log.Printf("stripe charge error for tx %s: %v", sub.TransactionID, err)
		return nil, mapStripeErr(err)
	}

	return &SubmitResult{
		ProviderTransactionID: ch.ID,
		RawStatus:             string(ch.Status),
	}, nil
}

// SubmitWithdraw is not served on the card rail.
func (h *StripeCardHandle) SubmitWithdraw(ctx context.Context, sub WithdrawSubmission) (*SubmitResult, error) {
	return nil, ErrUnavailable
}

// GenerateQR is not served on the card rail.
func (h *StripeCardHandle) GenerateQR(ctx context.Context, sub DepositSubmission) (*SubmitResult, error) {
	return nil, ErrUnavailable
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func mapStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			return Rejected(string(stripeErr.Code))
		case stripe.ErrorTypeAPIConnection:
			return ErrUnavailable
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUnavailable
}
