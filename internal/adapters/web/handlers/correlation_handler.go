package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// CorrelationRequest selects the devices to correlate. An empty list
// selects every device of the caller.
type CorrelationRequest struct {
	DeviceIDs []string `json:"device_ids"`
}

// CorrelationHandler runs correlation for the caller's devices.
type CorrelationHandler struct {
	Correlator ports.Correlator
	Audit      ports.AuditService
	logger     *slog.Logger
}

// NewCorrelationHandler creates a new CorrelationHandler
func NewCorrelationHandler(correlator ports.Correlator, audit ports.AuditService, logger *slog.Logger) *CorrelationHandler {
	return &CorrelationHandler{Correlator: correlator, Audit: audit, logger: orDefault(logger)}
}

// HandleCorrelate returns one result per correlated device.
func (h *CorrelationHandler) HandleCorrelate(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var req CorrelationRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", domain.ErrInvalidInput, err))
			return
		}
	}

	results, err := h.Correlator.CorrelateOwner(r.Context(), owner, req.DeviceIDs)
	if err != nil {
		writeEngineError(w, h.logger, "correlate", err)
		return
	}

	audit(r, h.Audit, h.logger, owner, domain.ActionCorrelate, "devices", fmt.Sprintf("%d devices correlated", len(results)))

	if len(results) == 0 {
		writeStatus(w, http.StatusOK, "no_vulnerabilities_found")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
