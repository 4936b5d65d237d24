// Package routes wires repositories, services and handlers onto the
// fiber application.
package routes

import (
	"saldo/internal/config"
	"saldo/internal/handlers"
	"saldo/internal/middleware"
	"saldo/internal/repositories"
	"saldo/internal/services/acquirer"
	"saldo/internal/services/apikey"
	"saldo/internal/services/auth"
	"saldo/internal/services/ledger"
	"saldo/internal/services/orchestrator"
	"saldo/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers all routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cache repositories.CacheRepository) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	keyRepo := repositories.NewApiKeyRepository(db)
	acquirerRepo := repositories.NewAcquirerRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	// Services, leaves first
	apiKeyService := apikey.NewService(keyRepo, userRepo)
	authService := auth.NewService(userRepo, apiKeyService)
	ledgerService := ledger.NewService(db, cache)
	userService := user.NewService(userRepo, txRepo, cache)

	registry := acquirer.NewRegistry(acquirerRepo,
		acquirer.NewSandboxHandle(config.GetEnv("PIX_ACQUIRER_REFERENCE", "treeal")),
		acquirer.NewStripeCardHandle("stripe"),
	)

	maxAmount, err := decimal.NewFromString(config.GetEnv("MAX_TRANSACTION_AMOUNT", "50000"))
	if err != nil {
		maxAmount = decimal.Zero
	}
	orchestration := orchestrator.NewService(
		apiKeyService,
		registry,
		ledgerService,
		txRepo,
		userRepo,
		cache,
		orchestrator.Config{
			MaxAmount:       maxAmount,
			AcquirerTimeout: config.GetDurationEnv("ACQUIRER_TIMEOUT", orchestrator.DefaultAcquirerTimeout),
		},
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(orchestration)
	pixHandler := handlers.NewPixHandler(orchestration)
	postbackHandler := handlers.NewPostbackHandler(orchestration)
	healthHandler := handlers.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Public
	app.Get("/health", healthHandler.Check)
	app.Post("/auth/login", authHandler.Login)
	app.Post("/auth/register", authHandler.Register)

	// API key authenticated (credentials validated inside the
	// orchestrator so the 400/401/422 order is deterministic)
	app.Post("/wallet/deposit/payment", walletHandler.DepositPayment)
	app.Post("/pixout", walletHandler.Pixout)

	// Acquirer-facing
	app.Post("/postback/acquirer", postbackHandler.AcquirerPostback)

	// Bearer authenticated
	app.Get("/user/profile", authMiddleware.Handler, userHandler.GetProfile)
	app.Put("/user/profile", authMiddleware.Handler, userHandler.UpdateProfile)
	app.Get("/balance", authMiddleware.Handler, userHandler.GetBalance)
	app.Post("/pix/generate-qr", authMiddleware.Handler, pixHandler.GenerateQR)
	app.Post("/pix/withdraw-with-key", authMiddleware.Handler, pixHandler.WithdrawWithKey)
}
