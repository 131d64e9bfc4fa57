package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	users map[string]*domain.User
}

func (s stubAuth) Login(context.Context, domain.Credentials) (string, error) { return "", nil }
func (s stubAuth) Logout(context.Context, string) error                      { return nil }
func (s stubAuth) CreateUser(context.Context, domain.User, string) error     { return nil }

func (s stubAuth) ValidateToken(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, domain.ErrUnauthorized
}

func TestAuthMiddleware(t *testing.T) {
	auth := stubAuth{users: map[string]*domain.User{
		"tok": {ID: "owner-1", Role: domain.RoleOperator},
	}}

	var seen *domain.User
	h := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
	}))

	t.Run("bearer header", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		if assert.NotNil(t, seen) {
			assert.Equal(t, "owner-1", seen.ID)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, seen)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		cookies := rec.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, -1, cookies[0].MaxAge)
		}
	})
}

func TestRoleMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RoleMiddleware(domain.RoleOperator)(ok)

	for role, want := range map[domain.Role]int{
		domain.RoleAdmin:    http.StatusNoContent,
		domain.RoleOperator: http.StatusNoContent,
		domain.RoleViewer:   http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/scans", nil)
		req = req.WithContext(WithUser(req.Context(), &domain.User{ID: "u", Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scans", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
