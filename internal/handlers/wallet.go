package handlers

import (
	"saldo/internal/services/orchestrator"
	"saldo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// API key credential headers for server-to-server endpoints.
const (
	HeaderApiToken  = "x-api-token"
	HeaderApiSecret = "x-api-secret"
)

type WalletHandler struct {
	orchestration orchestrator.Service
}

func NewWalletHandler(orchestration orchestrator.Service) *WalletHandler {
	return &WalletHandler{orchestration: orchestration}
}

// DepositPayment initiates an API-key authenticated PIX deposit charge.
// Credential errors (400/401) are reported before field validation.
func (h *WalletHandler) DepositPayment(c *fiber.Ctx) error {
	var input struct {
		Amount         decimal.Decimal `json:"amount"`
		DebtorName     string          `json:"debtor_name"`
		Email          string          `json:"email"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.UnprocessableEntity(c, "invalid request body")
	}

	tx, err := h.orchestration.Deposit(c.Context(), orchestrator.DepositRequest{
		Token:          c.Get(HeaderApiToken),
		Secret:         c.Get(HeaderApiSecret),
		Amount:         input.Amount,
		DebtorName:     input.DebtorName,
		Email:          input.Email,
		IdempotencyKey: input.IdempotencyKey,
		SourceIP:       c.IP(),
	})
	if err != nil {
		return response.Error(c, orchestrationStatus(err), err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": tx.ID,
		"state":          tx.State,
		"amount":         tx.Amount,
		"qrcode":         tx.QRCode,
	})
}

// Pixout initiates an API-key authenticated PIX withdraw to a key.
func (h *WalletHandler) Pixout(c *fiber.Ctx) error {
	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		PixKey          string          `json:"pixKey"`
		PixKeyType      string          `json:"pixKeyType"`
		BaasPostbackURL string          `json:"baasPostbackUrl"`
		IdempotencyKey  string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.UnprocessableEntity(c, "invalid request body")
	}

	tx, err := h.orchestration.Withdraw(c.Context(), orchestrator.WithdrawRequest{
		Token:          c.Get(HeaderApiToken),
		Secret:         c.Get(HeaderApiSecret),
		Amount:         input.Amount,
		PixKey:         input.PixKey,
		PixKeyType:     input.PixKeyType,
		PostbackURL:    input.BaasPostbackURL,
		IdempotencyKey: input.IdempotencyKey,
		SourceIP:       c.IP(),
	})
	if err != nil {
		return response.Error(c, orchestrationStatus(err), err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": tx.ID,
		"state":          tx.State,
		"amount":         tx.Amount,
	})
}
