package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// AuditHandler handles audit logging operations
type AuditHandler struct {
	Service ports.AuditService
	logger  *slog.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service ports.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{Service: service, logger: orDefault(logger)}
}

// HandleGetLogs returns the caller's audit logs
func (h *AuditHandler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, 100)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	logs, err := h.Service.GetLogs(r.Context(), ownerID(r), limit)
	if err != nil {
		writeEngineError(w, h.logger, "audit_logs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs": logs,
	})
}
