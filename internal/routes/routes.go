// Package routes defines the API routing configuration.
// It groups the wallet, payment, network and admin surfaces and binds
// them to their handlers.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/handlers"
	"quncipay/internal/services/ledger"
	"quncipay/internal/services/notification"
	"quncipay/internal/services/offline"
	"quncipay/internal/services/transaction"
)

// Deps carries the wired services the handlers need.
type Deps struct {
	Store         *ledger.Store
	Engine        transaction.Service
	Offline       *offline.Service
	Notifications *notification.Service
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Deps) {
	walletHandler := handlers.NewWalletHandler(deps.Store, deps.Engine)
	paymentHandler := handlers.NewPaymentHandler(deps.Engine)
	transactionHandler := handlers.NewTransactionHandler(deps.Store)
	networkHandler := handlers.NewNetworkHandler(deps.Offline)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	adminHandler := handlers.NewAdminHandler(deps.Engine)

	app.Get("/health", handlers.HealthCheck)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("Welcome to QunciPay API!") })

	api := app.Group("/api")

	// Wallet routes
	wallet := api.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Post("/topup", walletHandler.TopUp)
	wallet.Post("/topup/card", walletHandler.TopUpWithCard)
	wallet.Post("/topup/link", walletHandler.CreateTopUpLink)
	wallet.Post("/transfer/offline", walletHandler.TransferToOffline)
	wallet.Post("/transfer/online", walletHandler.TransferToOnline)

	// Payment routes
	api.Post("/payment", paymentHandler.CreatePayment)
	api.Post("/cashout", paymentHandler.CashOut)

	// Transaction routes
	api.Get("/transactions", transactionHandler.GetTransactions)
	api.Get("/transactions/:id", transactionHandler.GetTransaction)
	api.Get("/transactions/:id/explanation", paymentHandler.GetExplanation)

	// Network simulation and offline sync
	api.Post("/network/toggle", networkHandler.ToggleNetwork)
	api.Post("/sync", networkHandler.TriggerSync)

	// Notifications
	api.Get("/notifications", notificationHandler.GetNotifications)

	// Admin routes
	admin := api.Group("/admin")
	admin.Post("/transactions/:id/approve", adminHandler.OverrideApprove)
	admin.Post("/transactions/:id/reject", adminHandler.OverrideReject)
	admin.Post("/wallet/lock", adminHandler.SetWalletLock)
}
