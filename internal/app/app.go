package app

import (
	"net/http"
	"time"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/auth"
	"agritoken-backend/internal/config"
	"agritoken-backend/internal/database"
	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/farms"
	"agritoken-backend/internal/health"
	"agritoken-backend/internal/invest"
	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/middleware"
	"agritoken-backend/internal/payout"
	"agritoken-backend/internal/pkg/farmlock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowLocalhost: cfg.Env != "production",
	}))

	// Session (Redis); the client is reused for request stats and auth session tracking
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Request stats (after session)
	app.Use(middleware.RequestStats(rdb))

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health (no auth)
	healthHandlers := &health.Handlers{
		Rdb:        rdb,
		DB:         &gormDBPinger{db: db},
		GatewayURL: cfg.AssetGatewayURL,
		AdminKey:   cfg.HealthAdminKey,
	}
	app.Get("/api/health", healthHandlers.Status)
	app.Get("/health/json", healthHandlers.Detail)
	app.Get("/health/reset", healthHandlers.Reset)

	// Auth (no auth middleware)
	authHandlers := &auth.Handlers{
		Service: &auth.Service{DB: db},
		Rdb:     rdb,
		Config:  sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/signup", authHandlers.Signup)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil {
		locks := farmlock.NewRegistry()
		assetLedger := &assets.HTTPClient{
			BaseURL: cfg.AssetGatewayURL,
			APIKey:  cfg.AssetGatewayKey,
		}
		ledgerService := &ledger.Service{DB: db}

		// Farms module
		farmService := &farms.Service{DB: db, Assets: assetLedger, Locks: locks}
		farmHandlers := &farms.Handlers{Service: farmService, TokenizeTimeout: tokenizeTimeout(cfg)}
		farmGroup := app.Group("/api/v1/farms", middleware.RequireAuth())
		farmGroup.Post("/", farmHandlers.CreateFarm)
		farmGroup.Get("/", farmHandlers.ListFarms)
		farmGroup.Get("/stats", farmHandlers.GetStats)
		farmGroup.Get("/:farm_id", farmHandlers.GetFarm)
		farmGroup.Put("/:farm_id", farmHandlers.UpdateFarm)
		farmGroup.Delete("/:farm_id", farmHandlers.DeleteFarm)
		farmGroup.Post("/:farm_id/tokenize", middleware.RequireRole(domain.RoleFarmer), farmHandlers.TokenizeFarm)

		// Invest module
		investService := &invest.Service{DB: db, Ledger: ledgerService, Assets: assetLedger, Locks: locks}
		investHandlers := &invest.Handlers{
			Service:       investService,
			StripeCreator: &invest.RealStripeCreator{SecretKey: cfg.StripeSecretKey},
		}
		investGroup := app.Group("/api/v1/invest", middleware.RequireAuth())
		investGroup.Post("/acquire", investHandlers.Acquire)
		investGroup.Post("/payment-intent", investHandlers.CreatePaymentIntent)
		investGroup.Get("/portfolio", investHandlers.Portfolio)
		investGroup.Get("/farm-holdings/:farm_id", investHandlers.FarmHoldings)

		// Payout module
		payoutService := &payout.Service{DB: db, Ledger: ledgerService, Locks: locks}
		payoutHandlers := &payout.Handlers{Service: payoutService}
		payoutGroup := app.Group("/api/v1/payouts", middleware.RequireAuth())
		payoutGroup.Post("/distribute", middleware.RequireRole(domain.RoleFarmer), payoutHandlers.Distribute)
		payoutGroup.Get("/history/:farm_id", payoutHandlers.History)
	}

	return app, db, rdb, nil
}

func tokenizeTimeout(cfg *config.Config) time.Duration {
	if cfg.TokenizeTimeout != "" {
		if d, err := time.ParseDuration(cfg.TokenizeTimeout); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

// Handler returns the Fiber app as a net/http handler for serverless hosts.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
