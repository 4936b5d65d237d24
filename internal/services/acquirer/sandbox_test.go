package acquirer

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxSubmitDeposit(t *testing.T) {
	handle := NewSandboxHandle("treeal")

	sub := DepositSubmission{
		TransactionID: "tx-123",
		Amount:        decimal.NewFromFloat(59.9),
		DebtorName:    "Maria Souza",
	}
	result, err := handle.SubmitDeposit(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ProviderTransactionID)
	assert.Equal(t, "waiting_payment", result.RawStatus)
	assert.True(t, strings.Contains(result.QRCode, "br.gov.bcb.pix"))
	assert.True(t, strings.Contains(result.QRCode, "59.90"), "amount is fixed to two decimal places")

	// Distinct submissions get distinct provider ids.
	second, err := handle.SubmitDeposit(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEqual(t, result.ProviderTransactionID, second.ProviderTransactionID)
}

func TestSandboxHonorsCancelledContext(t *testing.T) {
	handle := NewSandboxHandle("treeal")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handle.SubmitDeposit(ctx, DepositSubmission{TransactionID: "tx-1", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = handle.SubmitWithdraw(ctx, WithdrawSubmission{TransactionID: "tx-2", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrTimeout)
}
