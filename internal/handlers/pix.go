package handlers

import (
	"saldo/internal/services/orchestrator"
	"saldo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PixHandler struct {
	orchestration orchestrator.Service
}

func NewPixHandler(orchestration orchestrator.Service) *PixHandler {
	return &PixHandler{orchestration: orchestration}
}

// GenerateQR creates a bearer-authenticated PIX charge and returns its
// copy-and-paste QR payload.
func (h *PixHandler) GenerateQR(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var input struct {
		Amount         decimal.Decimal `json:"amount"`
		Description    string          `json:"description"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	tx, err := h.orchestration.GenerateQR(c.Context(), principal, orchestrator.QRRequest{
		Amount:         input.Amount,
		Description:    input.Description,
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		return response.Error(c, bearerPixStatus(err), err.Error())
	}

	return c.JSON(fiber.Map{
		"transaction_id": tx.ID,
		"qrcode":         tx.QRCode,
		"qr_code":        tx.QRCode,
	})
}

// WithdrawWithKey runs a bearer-authenticated withdraw to a PIX key.
func (h *PixHandler) WithdrawWithKey(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var input struct {
		KeyType        string          `json:"key_type"`
		KeyValue       string          `json:"key_value"`
		Amount         decimal.Decimal `json:"amount"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	tx, err := h.orchestration.WithdrawWithKey(c.Context(), principal, orchestrator.KeyWithdrawRequest{
		Amount:         input.Amount,
		KeyType:        input.KeyType,
		KeyValue:       input.KeyValue,
		IdempotencyKey: input.IdempotencyKey,
		SourceIP:       c.IP(),
	})
	if err != nil {
		return response.Error(c, bearerPixStatus(err), err.Error())
	}

	return c.JSON(fiber.Map{
		"transaction_id": tx.ID,
		"state":          tx.State,
		"amount":         tx.Amount,
	})
}
