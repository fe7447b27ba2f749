package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-backend/internal/auth"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/chat"
	"fleet-backend/internal/config"
	"fleet-backend/internal/events"
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/health"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "router-secret"
	cfg.JWT.ExpirationHours = 1

	st := memory.New().Store()
	appCache := cache.NewLocal()
	pub := events.Discard{}
	hub := chat.NewHub()

	jwtManager := auth.NewJWTManager(cfg)
	totpService := services.NewTOTPService(st.Users)
	userService := services.NewUserService(st.Users, jwtManager, appCache, totpService)
	settingService := services.NewSystemSettingService(st.Settings, appCache)
	tripService := services.NewTripService(st, pub)
	paymentService := services.NewPaymentService(st, pub)
	salaryService := services.NewSalaryService(st, paymentService)
	chatService := services.NewChatService(st.Messages, st.Users, hub, pub)
	requestService := services.NewRequestService(st, tripService, paymentService, chatService, pub)
	dashboardService := services.NewDashboardService(st, tripService, paymentService, salaryService, requestService)

	_, err := userService.SeedAdmin(context.Background(), "Admin", "admin@fleet.com", "admin-pass")
	require.NoError(t, err)

	router := NewRouter(&Handlers{
		Auth:       handlers.NewAuthHandler(userService, dashboardService),
		TOTP:       handlers.NewTOTPHandler(totpService),
		Users:      handlers.NewUserHandler(userService, chatService),
		Vehicles:   handlers.NewVehicleHandler(services.NewVehicleService(st.Vehicles, st.Users)),
		Trips:      handlers.NewTripHandler(tripService),
		Payments:   handlers.NewPaymentHandler(paymentService),
		Salaries:   handlers.NewSalaryHandler(salaryService),
		Requests:   handlers.NewRequestHandler(requestService),
		Chat:       handlers.NewChatHandler(chatService, hub),
		Dashboards: handlers.NewDashboardHandler(dashboardService),
		Reports:    handlers.NewReportHandler(services.NewReportService(tripService, settingService)),
		Settings:   handlers.NewSystemSettingHandler(settingService),
		Backup:     handlers.NewBackupHandler(nil),
		Health:     handlers.NewHealthHandler(health.NewHealthChecker(nil, config.StorageMemory, appCache)),
	}, middleware.NewAuthMiddleware(jwtManager, st.Users, appCache), settingService)

	return &testServer{t: t, handler: router, users: userService}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(identifier, password string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Identifier: identifier, Password: password})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp models.AuthResponse
	require.NoError(s.t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", nil).Code)

	rr := s.do(http.MethodGet, "/api/settings/public", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), services.DefaultAppName)
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Identifier: "admin@fleet.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := s.login("admin@fleet.com", "admin-pass")
	me := s.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"SUPER_ADMIN"`)
	assert.Contains(t, me.Body.String(), `"manage_settings"`)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/trips", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", "not-a-token", nil).Code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin@fleet.com", "admin-pass")

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/logout", token, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", token, nil).Code)
}

func TestRouter_CapabilityCheck(t *testing.T) {
	s := newTestServer(t)
	_, err := s.users.CreateManager(context.Background(), &models.CreateUserRequest{
		Name: "Karim", Email: "karim@fleet.com", Password: "karim-pass",
	})
	require.NoError(t, err)
	token := s.login("karim@fleet.com", "karim-pass")

	rr := s.do(http.MethodPost, "/api/managers", token, models.CreateUserRequest{Name: "x", Email: "x@fleet.com", Password: "x-pass-123"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/trips", token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/settings", token, nil).Code)
}

func TestRouter_DestructiveNeedsConfirm(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin@fleet.com", "admin-pass")

	assert.Equal(t, http.StatusPreconditionRequired, s.do(http.MethodDelete, "/api/trips/missing", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/trips/missing?confirm=true", token, nil).Code)
}

func TestRouter_FeatureToggle(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin@fleet.com", "admin-pass")

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/chat/contacts", token, nil).Code)

	off := false
	req := models.UpdateSettingsRequest{}
	req.FeaturesEnabled = &struct {
		Chat     *bool `json:"chat,omitempty"`
		Reports  *bool `json:"reports,omitempty"`
		Payments *bool `json:"payments,omitempty"`
	}{Chat: &off}
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/settings", token, req).Code)

	rr := s.do(http.MethodGet, "/api/chat/contacts", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Feature disabled: chat")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/payments", token, nil).Code)
}

func TestRouter_BackupUnconfigured(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin@fleet.com", "admin-pass")

	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/api/admin/backup", token, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/api/admin/backups", token, nil).Code)
}
