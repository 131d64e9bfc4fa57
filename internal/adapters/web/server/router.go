package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/iotsec/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public API (with rate limiting)
	r.Handle("/api/login", middleware.RateLimitMiddleware(s.LoginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.AuthHandler.HandleLogout).Methods(http.MethodPost)

	// Protected API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(s.AuthService))

	requireOperator := middleware.RoleMiddleware(domain.RoleOperator)
	protectOp := func(h http.HandlerFunc) http.Handler {
		return requireOperator(h)
	}

	api.HandleFunc("/me", s.AuthHandler.HandleMe).Methods(http.MethodGet)
	api.Handle("/scans", protectOp(s.ScanHandler.HandleIngest)).Methods(http.MethodPost)
	api.HandleFunc("/devices", s.ScanHandler.HandleListDevices).Methods(http.MethodGet)
	api.Handle("/correlations", protectOp(s.CorrelationHandler.HandleCorrelate)).Methods(http.MethodPost)
	api.HandleFunc("/alerts", s.AlertHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/vendors/{vendor}/vulnerabilities", s.VendorHandler.HandleLookup).Methods(http.MethodGet)
	api.HandleFunc("/audit-logs", s.AuditHandler.HandleGetLogs).Methods(http.MethodGet)

	return r
}
