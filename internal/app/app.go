package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/iotsec/internal/adapters/cve"
	"github.com/lcalzada-xor/iotsec/internal/adapters/fingerprint"
	"github.com/lcalzada-xor/iotsec/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/iotsec/internal/adapters/web/server"
	"github.com/lcalzada-xor/iotsec/internal/config"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/lcalzada-xor/iotsec/internal/core/services/alerts"
	"github.com/lcalzada-xor/iotsec/internal/core/services/audit"
	"github.com/lcalzada-xor/iotsec/internal/core/services/auth"
	"github.com/lcalzada-xor/iotsec/internal/core/services/correlation"
	"github.com/lcalzada-xor/iotsec/internal/core/services/ingest"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"k8s.io/utils/clock"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config *config.Config
	Clock  clock.Clock

	Store      *storage.SQLiteAdapter
	CVERepo    *cve.SQLiteRepository
	VendorRepo fingerprint.VendorRepository
	Identifier *fingerprint.VendorIdentifier
	Source     ports.VulnerabilitySource

	Ingestor     *ingest.ScanIngestor
	Alerts       *alerts.AlertPersistence
	Correlator   *correlation.Orchestrator
	Lookup       *correlation.VendorLookup
	AuthService  *auth.AuthService
	AuditService *audit.AuditService

	WebServer *webserver.Server

	logger  *slog.Logger
	closers []io.Closer
}

// Option customizes bootstrap.
type Option func(*Application)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(app *Application) { app.Clock = clk }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(app *Application) { app.logger = logger }
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		Config: cfg,
		Clock:  clock.RealClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}
	app.initVendorData()
	if err := app.initSource(); err != nil {
		return err
	}

	// 2. Domain Services
	filter := correlation.NewRelevanceFilter(correlation.DefaultCategories, correlation.DefaultLimit)
	suggester := correlation.NewSuggestionEngine(correlation.DefaultSuggestionRules)

	app.Ingestor = ingest.NewScanIngestor(app.Store, app.Clock, app.logger)
	app.Alerts = alerts.NewAlertPersistence(app.Store, app.Clock, app.logger)
	app.Correlator = correlation.NewOrchestrator(correlation.Dependencies{
		Identifier: app.Identifier,
		Source:     app.Source,
		Alerts:     app.Alerts,
		Devices:    app.Store,
		Filter:     filter,
		Suggester:  suggester,
		Logger:     app.logger,
	}, app.Config.Workers)
	app.Lookup = correlation.NewVendorLookup(app.Source, filter, suggester, app.Config.FallbackVendors, app.logger)

	app.AuditService = audit.NewAuditService(app.Store, app.Clock, app.logger)
	app.AuthService = auth.NewAuthService(app.Store, app.Clock)

	if err := app.ensureDefaultAdmin(); err != nil {
		app.logger.Warn("Could not ensure default admin", "error", err)
	}

	// 3. Servers
	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Services{
		Auth:       app.AuthService,
		Audit:      app.AuditService,
		Ingestor:   app.Ingestor,
		Correlator: app.Correlator,
		Lookup:     app.Lookup,
		Devices:    app.Store,
		Alerts:     app.Store,
		Clock:      app.Clock,
		Logger:     app.logger,
	})

	return nil
}

func (app *Application) initStorage() error {
	if err := ensureDir(app.Config.DBPath); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init system storage: %w", err)
	}
	app.Store = store
	app.closers = append(app.closers, store)
	return nil
}

// initVendorData opens the optional OUI registry. The built-in table
// still identifies devices when the registry is missing.
func (app *Application) initVendorData() {
	if path := app.Config.OUIDBPath; path != "" {
		if _, err := os.Stat(path); err != nil {
			app.logger.Warn("OUI registry unavailable, using built-in table", "path", path, "error", err)
		} else if db, err := fingerprint.NewOUIDatabase(path, app.Config.OUICacheSize); err != nil {
			app.logger.Warn("Failed to open OUI registry, using built-in table", "path", path, "error", err)
		} else {
			app.VendorRepo = db
			app.closers = append(app.closers, db)
		}
	}

	app.Identifier = fingerprint.NewVendorIdentifier(fingerprint.DefaultTables(), app.VendorRepo, app.logger)
}

func (app *Application) initSource() error {
	switch app.Config.CVESource {
	case config.SourceLocal:
		if err := ensureDir(app.Config.CVEDBPath); err != nil {
			return fmt.Errorf("failed to create CVE directory: %w", err)
		}
		repo, err := cve.NewSQLiteRepository(app.Config.CVEDBPath)
		if err != nil {
			return fmt.Errorf("failed to open CVE mirror: %w", err)
		}
		app.CVERepo = repo
		app.closers = append(app.closers, repo)
		app.Source = cve.NewLocalSource(repo, app.Config.CVEResults, app.logger)
	default:
		if app.Config.CVEAPIKey == "" {
			app.logger.Warn("No NVD API key configured, requests are subject to public rate limits")
		}
		app.Source = cve.NewNVDClient(cve.NVDConfig{
			BaseURL:        app.Config.CVEAPIURL,
			APIKey:         app.Config.CVEAPIKey,
			Timeout:        app.Config.CVETimeout,
			ResultsPerPage: app.Config.CVEResults,
		}, app.logger)
	}
	app.logger.Info("Vulnerability source ready", "source", app.Config.CVESource)
	return nil
}

func (app *Application) ensureDefaultAdmin() error {
	if app.Config.AdminPassword == "" {
		return nil
	}
	created, err := app.AuthService.EnsureUser(context.Background(), domain.User{
		Username: app.Config.AdminUser,
		Role:     domain.RoleAdmin,
	}, app.Config.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		app.logger.Info("Provisioned admin user", "username", app.Config.AdminUser)
	}
	return nil
}

// Owner resolves a username to the owner ID its records are stored under.
func (app *Application) Owner(ctx context.Context, username string) (string, error) {
	user, err := app.Store.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnauthorized, username)
	}
	return user.ID, nil
}

// Run serves the HTTP API until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("Starting iotsec components...")

	errChan := make(chan error, 1)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	app.logger.Info("iotsec ready. Press Ctrl+C to terminate.")

	select {
	case <-ctx.Done():
		app.logger.Info("Termination signal received")
		return nil
	case err := <-errChan:
		return err
	}
}

// Close releases storage handles in reverse order of acquisition.
func (app *Application) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

func ensureDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}
