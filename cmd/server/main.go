// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quncipay/internal/config"
	"quncipay/internal/repositories/cache"
	"quncipay/internal/routes"
	"quncipay/internal/services/cards"
	"quncipay/internal/services/ledger"
	"quncipay/internal/services/notification"
	"quncipay/internal/services/offline"
	"quncipay/internal/services/risk"
	"quncipay/internal/services/settlement"
	"quncipay/internal/services/transaction"
)

// Demo opening balances, overridable through the environment.
const (
	defaultOnlineBalance   int64 = 4500000
	defaultOfflineBalance  int64 = 500000
	defaultMerchantBalance int64 = 1250000
	defaultPoints          int64 = 1250
)

func main() {
	config.LoadEnv()
	setupLogger()

	store := ledger.NewStore(ledger.Seed{
		OnlineBalance:   config.GetInt64Env("SEED_ONLINE_BALANCE", defaultOnlineBalance),
		OfflineBalance:  config.GetInt64Env("SEED_OFFLINE_BALANCE", defaultOfflineBalance),
		MerchantBalance: config.GetInt64Env("SEED_MERCHANT_BALANCE", defaultMerchantBalance),
		Points:          config.GetInt64Env("SEED_POINTS", defaultPoints),
	})

	cacheService := cache.New(
		config.GetEnv("REDIS_ADDR", ""),
		config.GetEnv("REDIS_PASSWORD", ""),
		config.GetIntEnv("REDIS_DB", 0),
	)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close cache")
		}
	}()

	oracle := risk.NewClient(
		config.GetEnv("RISK_ORACLE_URL", ""),
		config.GetDurationEnv("RISK_ORACLE_TIMEOUT", risk.DefaultTimeout),
	)

	gateway, err := settlement.NewClient(settlement.Config{
		BaseURL:     config.GetEnv("GATEWAY_BASE_URL", ""),
		MerchantID:  config.GetEnv("GATEWAY_MERCHANT_ID", ""),
		PrivateKey:  config.GetEnv("GATEWAY_PRIVATE_KEY", ""),
		RedirectURL: config.GetEnv("GATEWAY_REDIRECT_URL", ""),
		Timeout:     config.GetDurationEnv("GATEWAY_TIMEOUT", 10*time.Second),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid gateway configuration")
	}

	charger := cards.New(config.GetEnv("STRIPE_SECRET_KEY", ""))
	notifications := notification.NewService()

	engineConfig := transaction.Config{
		UserID:          config.GetEnv("DEMO_USER_ID", ""),
		Location:        config.GetEnv("DEMO_LOCATION", ""),
		TypicalLocation: config.GetEnv("DEMO_TYPICAL_LOCATION", ""),
	}

	offlineService := offline.NewService(store, oracle, notifications, offline.Config{
		UserID:          engineConfig.UserID,
		Location:        engineConfig.Location,
		TypicalLocation: engineConfig.TypicalLocation,
	})

	engine := transaction.NewService(
		store, oracle, gateway, charger, offlineService, cacheService, notifications, engineConfig,
	)

	app := fiber.New(fiber.Config{
		AppName: "QunciPay Core",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Deps{
		Store:         store,
		Engine:        engine,
		Offline:       offlineService,
		Notifications: notifications,
	})

	addr := ":" + config.GetEnv("PORT", "3000")
	log.Info().Str("addr", addr).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !config.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
