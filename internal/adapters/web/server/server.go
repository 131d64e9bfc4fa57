package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/iotsec/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"k8s.io/utils/clock"
)

const (
	loginAttempts = 5
	loginWindow   = time.Minute
)

// Services are the engine ports the HTTP API exposes.
type Services struct {
	Auth       ports.AuthService
	Audit      ports.AuditService
	Ingestor   ports.ScanIngestor
	Correlator ports.Correlator
	Lookup     ports.VendorLookup
	Devices    ports.DeviceRepository
	Alerts     ports.AlertRepository
	Clock      clock.PassiveClock
	Logger     *slog.Logger
}

// Server handles the caller-facing HTTP API.
type Server struct {
	Addr         string
	AuthService  ports.AuthService
	LoginLimiter *middleware.RateLimiter

	AuthHandler        *handlers.AuthHandler
	ScanHandler        *handlers.ScanHandler
	CorrelationHandler *handlers.CorrelationHandler
	AlertHandler       *handlers.AlertHandler
	VendorHandler      *handlers.VendorHandler
	AuditHandler       *handlers.AuditHandler

	logger *slog.Logger
	srv    *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, svc Services) *Server {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	return &Server{
		Addr:         addr,
		AuthService:  svc.Auth,
		LoginLimiter: middleware.NewRateLimiter(loginAttempts, loginWindow, svc.Clock),

		AuthHandler:        handlers.NewAuthHandler(svc.Auth, svc.Audit, logger),
		ScanHandler:        handlers.NewScanHandler(svc.Ingestor, svc.Devices, svc.Audit, logger),
		CorrelationHandler: handlers.NewCorrelationHandler(svc.Correlator, svc.Audit, logger),
		AlertHandler:       handlers.NewAlertHandler(svc.Alerts, logger),
		VendorHandler:      handlers.NewVendorHandler(svc.Lookup, svc.Audit, logger),
		AuditHandler:       handlers.NewAuditHandler(svc.Audit, logger),
		logger:             logger,
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "iotsec-server")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Web server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
