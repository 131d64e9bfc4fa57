package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/iotsec/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// maxBodyBytes bounds request bodies; scan output for a home network is far smaller.
const maxBodyBytes = 10 << 20

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("Failed to encode response", "error", err)
	}
}

func writeStatus(w http.ResponseWriter, status int, s string) {
	writeJSON(w, status, statusResponse{Status: s})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps an engine error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDevicesFound):
		return http.StatusOK
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError renders err with the status of its kind. Storage and
// unknown failures are not echoed back to the caller.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Error("Request failed", "op", op, "error", err)
		writeError(w, status, domain.ErrStorageFailure.Error())
	case http.StatusOK:
		writeStatus(w, status, "no_devices_found")
	case statusClientClosedRequest, http.StatusServiceUnavailable:
		logger.Info("Request abandoned", "op", op, "error", err)
		writeError(w, status, err.Error())
	default:
		writeError(w, status, err.Error())
	}
}

// ownerID returns the authenticated owner of the request.
func ownerID(r *http.Request) string {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return ""
	}
	return user.ID
}

func audit(r *http.Request, svc ports.AuditService, logger *slog.Logger, owner string, action domain.AuditAction, target, details string) {
	if svc == nil || owner == "" {
		return
	}
	if err := svc.Log(r.Context(), owner, action, target, details); err != nil {
		logger.Warn("Failed to record audit entry", "action", action, "error", err)
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
