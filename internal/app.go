// internal/app.go
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	router "networth-ledger/internal/api"
	"networth-ledger/internal/api/handler"
	"networth-ledger/internal/api/middleware"
	"networth-ledger/internal/auth"
	"networth-ledger/internal/config"
	"networth-ledger/internal/ratelimit"
	"networth-ledger/internal/repository"
	"networth-ledger/internal/repository/sqlstore"
	"networth-ledger/internal/service"
	"networth-ledger/internal/util"
	"networth-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger zerolog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository     repository.UserRepository
	SnapshotRepository repository.SnapshotRepository

	// Services
	Tokens        *auth.TokenService
	UserService   service.UserService
	LedgerService service.LedgerService

	LoginLimiter ratelimit.Limiter
	Metrics      *middleware.Metrics

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	app.Logger = util.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	app.Logger.Info().Str("driver", cfg.Database.Driver).Msg("Application configuration loaded successfully.")

	if cfg.Auth.UsesDefaultJWTSecret() {
		app.Logger.Warn().Msg("auth.jwt_secret is the built-in default, tokens can be forged until it is changed")
	}

	// Totals and item values are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Connect to Database and apply migrations
	database, err := db.Open(cfg.Database.DB())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	if err := db.Migrate(ctx, app.DB, cfg.Database.Driver); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info().Msg("Database connection established and schema up to date.")

	// 4. Initialize Repositories
	app.UserRepository = sqlstore.NewUserRepository()
	app.SnapshotRepository = sqlstore.NewSnapshotRepository()

	// 5. Initialize Services
	app.Tokens = auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	app.UserService = service.NewUserService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.SnapshotRepository,
		app.Tokens,
		cfg.Auth.BcryptCost,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.DB,
		app.SnapshotRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	if err := app.UserService.EnsureAdmin(ctx, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	app.Logger.Info().Msg("Services initialized.")

	// 6. Login throttling and metrics
	app.LoginLimiter = app.newLoginLimiter()
	if cfg.Metrics.Enabled {
		app.Metrics = middleware.NewMetrics()
	}

	// 7. Initialize HTTP Handlers and Router
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}
	app.HTTPHandler = router.NewRouter(router.RouterConfig{
		AssetHandler:   handler.NewAssetHandler(app.LedgerService, app.Logger),
		UserHandler:    handler.NewUserHandler(app.UserService, app.Logger),
		Tokens:         app.Tokens,
		Logger:         app.Logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		TrustedProxies: trustedProxies,
		Metrics:        app.Metrics,
		MetricsPath:    cfg.Metrics.Path,
		LoginLimiter:   app.LoginLimiter,
		LoginLimit:     cfg.RateLimit.LoginLimit,
		LoginWindow:    cfg.RateLimit.LoginWindow,
	})
	app.Logger.Info().Msg("HTTP router and handlers initialized.")

	return nil
}

// newLoginLimiter prefers a shared Redis limiter and falls back to process memory.
func (app *Application) newLoginLimiter() ratelimit.Limiter {
	rc := app.Config.Redis
	if rc.Enabled {
		limiter, err := ratelimit.NewRedisLimiter(rc.Addr, rc.Password, rc.DB, app.Logger)
		if err == nil {
			app.Logger.Info().Str("addr", rc.Addr).Msg("Login rate limiter backed by Redis.")
			return limiter
		}
		app.Logger.Warn().Err(err).Msg("Redis unavailable, login rate limiter falls back to memory.")
	}
	return ratelimit.NewMemoryLimiter()
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Shutting down application...")
	if app.LoginLimiter != nil {
		app.LoginLimiter.Close()
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error().Err(err).Msg("Failed to close database connection")
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info().Msg("Database connection closed.")
	}
	app.Logger.Info().Msg("Application shut down gracefully.")
	return nil
}
