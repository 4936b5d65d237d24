package handlers

import (
	"errors"

	"saldo/internal/services/orchestrator"
	"saldo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type PostbackHandler struct {
	orchestration orchestrator.Service
}

func NewPostbackHandler(orchestration orchestrator.Service) *PostbackHandler {
	return &PostbackHandler{orchestration: orchestration}
}

// AcquirerPostback consumes asynchronous settlement callbacks. Unknown
// transactions are acknowledged with 200 but not processed, so the
// acquirer stops retrying.
func (h *PostbackHandler) AcquirerPostback(c *fiber.Ctx) error {
	var input struct {
		ProviderTransactionID string `json:"provider_transaction_id"`
		Outcome               string `json:"outcome"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	tx, err := h.orchestration.OnCallback(c.Context(), input.ProviderTransactionID, input.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrUnknownTransaction),
			errors.Is(err, orchestrator.ErrUnknownOutcome):
			log.Printf("ignoring postback for %q: %v", input.ProviderTransactionID, err)
			return c.JSON(fiber.Map{"status": "ignored"})
		default:
			return response.ServerError(c, "failed to process postback")
		}
	}

	return c.JSON(fiber.Map{
		"status":         "acknowledged",
		"transaction_id": tx.ID,
		"state":          tx.State,
	})
}
