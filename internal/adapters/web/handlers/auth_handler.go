package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/iotsec/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// sessionMaxAge matches the session lifetime of the auth service.
const sessionMaxAge = 86400

// AuthHandler handles login, logout and identity queries.
type AuthHandler struct {
	Service ports.AuthService
	Audit   ports.AuditService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service ports.AuthService, audit ports.AuditService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Audit: audit, logger: orDefault(logger)}
}

// HandleLogin exchanges credentials for a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, err := h.Service.Login(r.Context(), creds)
	if err != nil {
		h.logger.Info("Login rejected", "username", creds.Username, "error", err)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user, err := h.Service.ValidateToken(r.Context(), token); err == nil {
		audit(r, h.Audit, h.logger, user.ID, domain.ActionLogin, user.Username, "")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   sessionMaxAge,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "logged_in",
		"token":  token,
	})
}

// HandleLogout drops the caller's session, if any.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			h.logger.Warn("Logout failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	writeStatus(w, http.StatusOK, "logged_out")
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
