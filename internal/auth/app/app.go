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

	httpapi "github.com/quollify/gatekey/internal/auth/http"
	"github.com/quollify/gatekey/internal/auth/mail"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/internal/auth/store/cache"
	"github.com/quollify/gatekey/internal/auth/store/drivers/sqlite"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	revoked store.RevokedTokens // blacklist, cache-wrapped when redis is configured
	redis   *cache.RedisKV
	signer  *jwtx.HS256Signer
	verify  jwtx.Verifier

	mailPublisher *mail.Publisher
	mailConsumer  *mail.Consumer
	mailCancel    context.CancelFunc

	authService         *service.AuthService
	tokenService        *service.TokenService
	logoutService       *service.LogoutService
	recoveryService     *service.RecoveryService
	roleService         *service.RoleService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatekey-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper path for password hashing must be set before the first hash.
	cryptox.SetPepperPath(cfg.PepperFile)

	signer, err := jwtx.NewSignerHS256([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize verifier: %w", err)
	}
	app.signer = signer
	app.verify = verifier

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initBlacklist()
	if err := app.initMail(); err != nil {
		return nil, err
	}
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.startMailConsumer()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.mailCancel != nil {
		app.mailCancel()
	}
	if app.mailPublisher != nil {
		if err := app.mailPublisher.Close(); err != nil {
			app.logger.Error("error closing mail publisher", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

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

// initBlacklist wires the revocation blacklist, layering the redis cache
// over the database when REDIS_ADDR is configured.
func (app *Application) initBlacklist() {
	app.revoked = app.db.RevokedTokens()

	if app.cfg.RedisAddr == "" {
		app.logger.Info("blacklist cache disabled, using database only")
		return
	}

	app.redis = cache.NewRedisKV(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
	app.revoked = cache.NewRevokedTokens(app.db.RevokedTokens(), app.redis)
	app.logger.Info("blacklist cache enabled", "addr", app.cfg.RedisAddr)
}

// initMail wires the recovery-mail pipeline. Without a broker the mails are
// logged directly so the recovery flow still completes in dev setups.
func (app *Application) initMail() error {
	if app.cfg.AMQPURL == "" {
		app.logger.Info("mail queue disabled, recovery mails go to the log")
		return nil
	}

	pub, err := mail.NewPublisher(app.cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("failed to connect to mail broker: %w", err)
	}
	app.mailPublisher = pub
	app.mailConsumer = &mail.Consumer{
		URL:    app.cfg.AMQPURL,
		Sender: &mail.LogSender{Logger: app.logger},
		Logger: app.logger,
	}
	return nil
}

func (app *Application) startMailConsumer() {
	if app.mailConsumer == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.mailCancel = cancel
	go func() {
		if err := app.mailConsumer.Run(ctx); err != nil && ctx.Err() == nil {
			app.logger.Error("mail consumer stopped", "error", err)
		}
	}()
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Verifier:   app.verify,
		Store:      app.db,
		Revoked:    app.revoked,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.authService = &service.AuthService{Store: app.db, Tokens: app.tokenService}
	app.logoutService = &service.LogoutService{Store: app.db, Revoked: app.revoked, Verifier: app.verify}
	app.roleService = &service.RoleService{Store: app.db, Revoked: app.revoked, Verifier: app.verify}

	var mailer service.RecoveryMailer
	if app.mailPublisher != nil {
		mailer = app.mailPublisher
	} else {
		mailer = &logMailer{sender: &mail.LogSender{Logger: app.logger}}
	}
	app.recoveryService = &service.RecoveryService{
		Store:   app.db,
		Mailer:  mailer,
		BaseURL: app.cfg.RecoveryBaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verify,
		revocationChecker{app.revoked},
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.LogoutService = app.logoutService
	router.RecoveryService = app.recoveryService
	router.RoleService = app.roleService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// revocationChecker adapts the blacklist repo to the authn middleware.
type revocationChecker struct {
	revoked store.RevokedTokens
}

func (c revocationChecker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return c.revoked.IsTokenRevoked(ctx, jti)
}

// logMailer delivers recovery mails straight to the Sender when no broker is
// configured.
type logMailer struct {
	sender mail.Sender
}

func (m *logMailer) PublishRecoveryMail(ctx context.Context, rm service.RecoveryMail) error {
	return m.sender.Send(ctx, rm)
}
