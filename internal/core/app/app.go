package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/inventorypro/inventorypro/internal/core/http"
	"github.com/inventorypro/inventorypro/internal/core/identity"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/internal/core/store/drivers/sqlite"
	"github.com/inventorypro/inventorypro/pkg/cryptox"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db store.Store

	// Services
	sessionService      *service.SessionService
	otpService          *service.OTPService
	auditService        *service.AuditService
	authService         *service.AuthService
	authorizeService    *service.AuthorizeService
	exchangeService     *service.ExchangeService
	userService         *service.UserService
	inventoryService    *service.InventoryService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "inventorypro",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("server starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "err", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "err", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "err", err)
		return err
	}

	app.logger.Info("server stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:      app.db,
		SessionTTL: app.cfg.SessionTTL,
	}
	app.otpService = &service.OTPService{
		Store:       app.db,
		Sender:      service.LogSender{},
		Digits:      app.cfg.OTPDigits,
		TTL:         app.cfg.OTPTTL,
		MaxAttempts: app.cfg.OTPMaxAttempts,
	}
	app.auditService = &service.AuditService{Store: app.db}
	app.authService = &service.AuthService{
		Store:    app.db,
		Sessions: app.sessionService,
		OTP:      app.otpService,
		Audit:    app.auditService,
	}
	app.authorizeService = &service.AuthorizeService{Sessions: app.sessionService}
	app.userService = &service.UserService{Store: app.db, Audit: app.auditService}
	app.inventoryService = &service.InventoryService{Store: app.db, Audit: app.auditService}

	if app.cfg.IdentityProviderURL != "" {
		app.exchangeService = &service.ExchangeService{
			Store: app.db,
			Provider: identity.NewClient(
				app.cfg.IdentityProviderName,
				app.cfg.IdentityProviderURL,
				app.cfg.IdentityTimeout,
			),
			ProviderName: app.cfg.IdentityProviderName,
			Sessions:     app.sessionService,
			Audit:        app.auditService,
		}
		app.logger.Info("external identity exchange enabled",
			"provider", app.cfg.IdentityProviderName)
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		httpapi.CookieConfig{
			Name:     app.cfg.CookieName,
			Domain:   app.cfg.CookieDomain,
			SameSite: app.cfg.CookieSameSite,
			Secure:   app.cfg.CookieSecure,
			TTL:      app.cfg.SessionTTL,
		},
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.AuthorizeService = app.authorizeService
	router.ExchangeService = app.exchangeService // nil without a provider URL
	router.UserService = app.userService
	router.AuditService = app.auditService
	router.InventoryService = app.inventoryService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
