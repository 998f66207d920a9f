package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/acrelay/internal/relay/http"
	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
	"github.com/aussiebroadwan/acrelay/internal/relay/store/drivers/memory"
	"github.com/aussiebroadwan/acrelay/internal/relay/store/drivers/sqlite"
	"github.com/aussiebroadwan/acrelay/pkg/cryptox"
	"github.com/aussiebroadwan/acrelay/pkg/jwtx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the relay's store, services and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	convertService      *service.ConvertService
	callbackService     *service.CallbackService
	delivery            *service.DeliveryManager
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ac-relay",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("relay starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.ResultStore,
		"webhook_configured", app.cfg.WebhookURL != "",
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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
	app.logger.Info("shutting down relay...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Open event streams only end when their client leaves; cut them at the deadline.
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing result store", "error", err)
		return err
	}

	app.logger.Info("relay stopped")
	return nil
}

// initStore opens the configured result store and applies migrations.
func (app *Application) initStore() error {
	switch app.cfg.ResultStore {
	case "", "memory":
		app.db = memory.NewStore()
		return nil
	case "sqlite":
	default:
		return fmt.Errorf("unknown result store %q (want memory or sqlite)", app.cfg.ResultStore)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices builds the services. Missing secrets are not fatal: the
// affected endpoints answer 500 naming the setting, as readyz does.
func (app *Application) initServices() error {
	secretHash, err := app.clientSecretHash()
	if err != nil {
		return err
	}

	var (
		signer   *jwtx.HS256Signer
		verifier jwtx.Verifier
	)
	if app.cfg.JWTSecret != "" {
		key := []byte(app.cfg.JWTSecret)
		signer = jwtx.NewSignerHS256(key)
		verifier = jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{
			Issuer: app.cfg.Issuer,
			Leeway: 5 * time.Second,
		})
		if err := signer.Validate(); err != nil {
			app.logger.Warn("JWT secret rejected, token issuance disabled", "error", err)
		}
	} else {
		app.logger.Warn("JWT secret not set, token endpoints will fail")
	}
	if secretHash == "" {
		app.logger.Warn("client secret not set, token issuance will fail")
	}
	if app.cfg.WebhookURL == "" {
		app.logger.Warn("N8N_WEBHOOK_URL not set, conversions will fail")
	}

	app.tokenService = &service.TokenService{
		Signer:     signer,
		Verifier:   verifier,
		SecretHash: secretHash,
		Issuer:     app.cfg.Issuer,
		TTL:        jwtx.DefaultClientTokenTTL,
		EngineTTL:  jwtx.DefaultEngineTokenTTL,
	}

	app.delivery = service.NewDeliveryManager(app.db)

	app.convertService = &service.ConvertService{
		Tokens:     app.tokenService,
		Delivery:   app.delivery,
		WebhookURL: app.cfg.WebhookURL,
		Client:     &http.Client{},
		Timeout:    app.cfg.EngineTimeout,
	}
	app.callbackService = &service.CallbackService{
		Tokens:   app.tokenService,
		Delivery: app.delivery,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.ResultTTL,
	)

	return nil
}

// clientSecretHash prefers the precomputed hash, otherwise hashes the
// plaintext secret once at startup.
func (app *Application) clientSecretHash() (string, error) {
	if app.cfg.ClientSecretHash != "" {
		if !cryptox.IsSecretHash(app.cfg.ClientSecretHash) {
			return "", errors.New("RELAY_CLIENT_SECRET_HASH is not an argon2id hash")
		}
		return app.cfg.ClientSecretHash, nil
	}
	if app.cfg.ClientSecret == "" {
		return "", nil
	}

	hash, err := cryptox.HashSecret(app.cfg.ClientSecret)
	if err != nil {
		return "", fmt.Errorf("hash client secret: %w", err)
	}
	return hash, nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cfg.AllowedOrigins,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.ConvertService = app.convertService
	router.CallbackService = app.callbackService
	router.Delivery = app.delivery
	router.PublicBaseURL = app.cfg.PublicBaseURL
	router.StaticDir = app.cfg.StaticDir
	router.KeepAlive = app.cfg.SSEKeepAlive
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
