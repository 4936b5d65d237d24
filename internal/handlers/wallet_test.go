package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"saldo/internal/models"
	"saldo/internal/services/acquirer"
	"saldo/internal/services/apikey"
	"saldo/internal/services/ledger"
	"saldo/internal/services/orchestrator"
	"saldo/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOrchestrator returns scripted results for every operation.
type stubOrchestrator struct {
	tx          *models.Transaction
	err         error
	callbackTx  *models.Transaction
	callbackErr error
}

func (s *stubOrchestrator) Deposit(ctx context.Context, req orchestrator.DepositRequest) (*models.Transaction, error) {
	return s.tx, s.err
}
func (s *stubOrchestrator) Withdraw(ctx context.Context, req orchestrator.WithdrawRequest) (*models.Transaction, error) {
	return s.tx, s.err
}
func (s *stubOrchestrator) GenerateQR(ctx context.Context, user *models.User, req orchestrator.QRRequest) (*models.Transaction, error) {
	return s.tx, s.err
}
func (s *stubOrchestrator) WithdrawWithKey(ctx context.Context, user *models.User, req orchestrator.KeyWithdrawRequest) (*models.Transaction, error) {
	return s.tx, s.err
}
func (s *stubOrchestrator) OnCallback(ctx context.Context, providerTransactionID, outcome string) (*models.Transaction, error) {
	return s.callbackTx, s.callbackErr
}

func newWalletApp(stub *stubOrchestrator) *fiber.App {
	app := fiber.New()
	handler := NewWalletHandler(stub)
	app.Post("/wallet/deposit/payment", handler.DepositPayment)
	app.Post("/wallet/pixout", handler.Pixout)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderApiToken, "tok")
	req.Header.Set(HeaderApiSecret, "sec")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]interface{}{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &payload))
	}
	return resp.StatusCode, payload
}

func TestPixoutStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing credentials", apikey.ErrMissingCredentials, fiber.StatusBadRequest},
		{"invalid credentials", apikey.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"inactive account", orchestrator.ErrAccountInactive, fiber.StatusUnauthorized},
		{"inactive account at reserve", ledger.ErrUserInactive, fiber.StatusUnauthorized},
		{"invalid pix key type", validation.ErrInvalidPixKeyType, fiber.StatusUnprocessableEntity},
		{"missing field", validation.MissingField("pixKey"), fiber.StatusUnprocessableEntity},
		{"amount out of range", validation.ErrOutOfRange, fiber.StatusUnprocessableEntity},
		{"insufficient funds", ledger.ErrInsufficientFunds, fiber.StatusBadRequest},
		{"withdraw blocked", ledger.ErrWithdrawBlocked, fiber.StatusBadRequest},
		{"ip not allowed", orchestrator.ErrIPNotAllowed, fiber.StatusForbidden},
		{"no acquirer", acquirer.ErrNoAcquirerAvailable, fiber.StatusBadGateway},
		{"acquirer timeout", acquirer.ErrTimeout, fiber.StatusBadGateway},
		{"acquirer rejected", acquirer.Rejected("key not found"), fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newWalletApp(&stubOrchestrator{err: tt.err})
			status, payload := postJSON(t, app, "/wallet/pixout", fiber.Map{
				"amount":          100,
				"pixKey":          "52998224725",
				"pixKeyType":      "cpf",
				"baasPostbackUrl": "https://merchant.example.com/postback",
			})
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestPixoutSuccess(t *testing.T) {
	app := newWalletApp(&stubOrchestrator{tx: &models.Transaction{
		ID:     "tx-1",
		State:  models.StateSubmitted,
		Amount: decimal.NewFromInt(100),
	}})

	status, payload := postJSON(t, app, "/wallet/pixout", fiber.Map{
		"amount":          100,
		"pixKey":          "52998224725",
		"pixKeyType":      "cpf",
		"baasPostbackUrl": "https://merchant.example.com/postback",
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "tx-1", payload["transaction_id"])
	assert.Equal(t, models.StateSubmitted, payload["state"])
}

func TestDepositPaymentSuccess(t *testing.T) {
	app := newWalletApp(&stubOrchestrator{tx: &models.Transaction{
		ID:     "tx-2",
		State:  models.StateSubmitted,
		Amount: decimal.NewFromInt(250),
		QRCode: "00020126580014br.gov.bcb.pix",
	}})

	status, payload := postJSON(t, app, "/wallet/deposit/payment", fiber.Map{
		"amount":      250,
		"debtor_name": "Maria Souza",
		"email":       "maria@example.com",
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "tx-2", payload["transaction_id"])
	assert.Equal(t, "00020126580014br.gov.bcb.pix", payload["qrcode"])
}

func TestAcquirerPostback(t *testing.T) {
	newApp := func(stub *stubOrchestrator) *fiber.App {
		app := fiber.New()
		app.Post("/postback/acquirer", NewPostbackHandler(stub).AcquirerPostback)
		return app
	}

	t.Run("acknowledged", func(t *testing.T) {
		app := newApp(&stubOrchestrator{callbackTx: &models.Transaction{
			ID:    "tx-3",
			State: models.StateSettled,
		}})
		status, payload := postJSON(t, app, "/postback/acquirer", fiber.Map{
			"provider_transaction_id": "prov-1",
			"outcome":                 "confirmed",
		})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "acknowledged", payload["status"])
		assert.Equal(t, models.StateSettled, payload["state"])
	})

	t.Run("unknown transaction is ignored with 200", func(t *testing.T) {
		app := newApp(&stubOrchestrator{callbackErr: orchestrator.ErrUnknownTransaction})
		status, payload := postJSON(t, app, "/postback/acquirer", fiber.Map{
			"provider_transaction_id": "never-seen",
			"outcome":                 "confirmed",
		})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ignored", payload["status"])
	})

	t.Run("unknown outcome is ignored with 200", func(t *testing.T) {
		app := newApp(&stubOrchestrator{callbackErr: orchestrator.ErrUnknownOutcome})
		status, payload := postJSON(t, app, "/postback/acquirer", fiber.Map{
			"provider_transaction_id": "prov-1",
			"outcome":                 "processing",
		})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ignored", payload["status"])
	})
}
