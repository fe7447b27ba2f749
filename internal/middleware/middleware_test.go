package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-backend/internal/access"
	"fleet-backend/internal/auth"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/config"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*AuthMiddleware, *auth.JWTManager, *cache.Cache, *models.User) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-secret"
	cfg.JWT.ExpirationHours = 1
	jwt := auth.NewJWTManager(cfg)

	users := memory.New().Store().Users
	driver := &models.User{ID: "drv", Name: "Rahim", Phone: "017", Role: models.RoleDriver, IsActive: true}
	require.NoError(t, users.Create(context.Background(), driver))

	revoked := cache.NewLocal()
	return NewAuthMiddleware(jwt, users, revoked), jwt, revoked, driver
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(user.ID))
}

func TestAuthenticate(t *testing.T) {
	m, jwt, revoked, driver := setup(t)
	handler := m.Authenticate(http.HandlerFunc(echoUser))

	token, err := jwt.GenerateToken(driver)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}

	claims, err := jwt.ValidateToken(token)
	require.NoError(t, err)
	revoked.RevokeToken(context.Background(), claims.ID, claims.ExpiresAt.Time)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_SuspendedUser(t *testing.T) {
	m, jwt, _, driver := setup(t)
	token, err := jwt.GenerateToken(driver)
	require.NoError(t, err)

	driver.IsActive = false
	require.NoError(t, m.users.Update(context.Background(), driver))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	m.Authenticate(http.HandlerFunc(echoUser)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthenticate_WebSocketTokenQuery(t *testing.T) {
	m, jwt, _, driver := setup(t)
	token, err := jwt.GenerateToken(driver)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/ws?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rr := httptest.NewRecorder()
	m.Authenticate(http.HandlerFunc(echoUser)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "drv", rr.Body.String())

	plain := httptest.NewRequest(http.MethodGet, "/api/me?token="+token, nil)
	rr = httptest.NewRecorder()
	m.Authenticate(http.HandlerFunc(echoUser)).ServeHTTP(rr, plain)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireCapability(t *testing.T) {
	m, _, _, driver := setup(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(user *models.User, actions ...access.Action) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		rr := httptest.NewRecorder()
		m.RequireCapability(actions...)(ok).ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(driver, access.UpdateTripStatus))
	assert.Equal(t, http.StatusForbidden, serve(driver, access.SettleTrips))
	assert.Equal(t, http.StatusNoContent, serve(driver, access.ManageSalaries, access.ViewOwnSalary), "any listed action is enough")
	assert.Equal(t, http.StatusUnauthorized, serve(nil, access.ViewTrips))
}

type stubFeatures struct {
	features models.Features
	err      error
}

func (s stubFeatures) Features(context.Context) (models.Features, error) {
	return s.features, s.err
}

func TestRequireFeature(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	serve := func(src FeatureSource, feature Feature) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		RequireFeature(src, feature)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		return rr
	}

	on := stubFeatures{features: models.Features{Chat: true, Reports: false, Payments: true}}
	assert.Equal(t, http.StatusNoContent, serve(on, FeatureChat).Code)
	assert.Equal(t, http.StatusNoContent, serve(on, FeaturePayments).Code)

	off := serve(on, FeatureReports)
	assert.Equal(t, http.StatusForbidden, off.Code)
	assert.Contains(t, off.Body.String(), "Feature disabled: reports")

	broken := stubFeatures{err: errors.New("db down")}
	assert.Equal(t, http.StatusInternalServerError, serve(broken, FeatureChat).Code)
}

func TestPanicRecovery(t *testing.T) {
	handler := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error": "Internal server error"}`, rr.Body.String())
}
