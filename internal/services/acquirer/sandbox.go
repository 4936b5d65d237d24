package acquirer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SandboxHandle is an in-process acquirer used for the pix and billet
// rails in development and tests. It accepts every submission and
// settles only through explicit postbacks, mirroring a real provider's
// asynchronous contract.
type SandboxHandle struct {
	reference string
}

func NewSandboxHandle(reference string) *SandboxHandle {
	return &SandboxHandle{reference: reference}
}

func (h *SandboxHandle) Reference() string { return h.reference }

func (h *SandboxHandle) SubmitDeposit(ctx context.Context, sub DepositSubmission) (*SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	return &SubmitResult{
		ProviderTransactionID: uuid.NewString(),
		RawStatus:             "waiting_payment",
		QRCode:                h.qrPayload(sub),
	}, nil
}

func (h *SandboxHandle) SubmitWithdraw(ctx context.Context, sub WithdrawSubmission) (*SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	return &SubmitResult{
		ProviderTransactionID: uuid.NewString(),
		RawStatus:             "processing",
	}, nil
}

func (h *SandboxHandle) GenerateQR(ctx context.Context, sub DepositSubmission) (*SubmitResult, error) {
	return h.SubmitDeposit(ctx, sub)
}

// qrPayload builds a BR-Code-shaped copy-and-paste string. Sandbox only;
// real providers return their own payload.
func (h *SandboxHandle) qrPayload(sub DepositSubmission) string {
	return fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s5204000053039865406%s6304",
		sub.TransactionID, sub.Amount.StringFixed(2))
}
