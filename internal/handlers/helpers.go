// Package handlers exposes the HTTP surface: session auth, cached
// profile/balance reads, and the deposit/withdraw orchestration
// endpoints.
package handlers

import (
	"errors"

	"saldo/internal/models"
	"saldo/internal/services/acquirer"
	"saldo/internal/services/apikey"
	"saldo/internal/services/ledger"
	"saldo/internal/services/orchestrator"
	"saldo/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// currentUser pulls the bearer-authenticated principal from the context.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, fiber.ErrUnauthorized
	}
	return user, nil
}

// isValidationErr matches the field/format/range error classes.
func isValidationErr(err error) bool {
	return errors.Is(err, validation.ErrMissingField) ||
		errors.Is(err, validation.ErrInvalidFormat) ||
		errors.Is(err, validation.ErrOutOfRange) ||
		errors.Is(err, validation.ErrInvalidPixKeyType)
}

// orchestrationStatus maps domain errors to HTTP statuses for the
// API-key authenticated endpoints: 400 missing credentials, 401 invalid
// credentials, 422 field validation, 400 ledger refusals.
func orchestrationStatus(err error) int {
	switch {
	case errors.Is(err, apikey.ErrMissingCredentials):
		return fiber.StatusBadRequest
	case errors.Is(err, apikey.ErrInvalidCredentials),
		errors.Is(err, orchestrator.ErrAccountInactive),
		errors.Is(err, ledger.ErrUserInactive):
		return fiber.StatusUnauthorized
	case isValidationErr(err):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrWithdrawBlocked):
		return fiber.StatusBadRequest
	case errors.Is(err, orchestrator.ErrIPNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, acquirer.ErrNoAcquirerAvailable),
		errors.Is(err, acquirer.ErrUnavailable),
		errors.Is(err, acquirer.ErrTimeout),
		errors.Is(err, acquirer.ErrRejected):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// bearerPixStatus maps domain errors for the bearer-authenticated PIX
// endpoints, where validation and ledger refusals are 400s.
func bearerPixStatus(err error) int {
	switch {
	case isValidationErr(err),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrWithdrawBlocked):
		return fiber.StatusBadRequest
	case errors.Is(err, orchestrator.ErrAccountInactive),
		errors.Is(err, ledger.ErrUserInactive):
		return fiber.StatusUnauthorized
	case errors.Is(err, orchestrator.ErrIPNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, acquirer.ErrNoAcquirerAvailable),
		errors.Is(err, acquirer.ErrUnavailable),
		errors.Is(err, acquirer.ErrTimeout),
		errors.Is(err, acquirer.ErrRejected):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
