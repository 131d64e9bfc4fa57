package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

const defaultAlertLimit = 100

// AlertHandler serves stored security alerts.
type AlertHandler struct {
	Alerts ports.AlertRepository
	logger *slog.Logger
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alerts ports.AlertRepository, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{Alerts: alerts, logger: orDefault(logger)}
}

// HandleList returns the caller's alerts, newest first.
func (h *AlertHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	limit, ok := parseLimit(r, defaultAlertLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	alerts, err := h.Alerts.ListAlerts(r.Context(), owner, limit)
	if err != nil {
		writeEngineError(w, h.logger, "list_alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func parseLimit(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
