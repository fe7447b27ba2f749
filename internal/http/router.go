package http

import (
	"net/http"

	"fleet-backend/internal/access"
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	TOTP       *handlers.TOTPHandler
	Users      *handlers.UserHandler
	Vehicles   *handlers.VehicleHandler
	Trips      *handlers.TripHandler
	Payments   *handlers.PaymentHandler
	Salaries   *handlers.SalaryHandler
	Requests   *handlers.RequestHandler
	Chat       *handlers.ChatHandler
	Dashboards *handlers.DashboardHandler
	Reports    *handlers.ReportHandler
	Settings   *handlers.SystemSettingHandler
	Backup     *handlers.BackupHandler
	Health     *handlers.HealthHandler
}

func NewRouter(h *Handlers, authMiddleware *middleware.AuthMiddleware, features middleware.FeatureSource) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// can wraps a handler with a capability check
	can := func(fn http.HandlerFunc, actions ...access.Action) http.Handler {
		return authMiddleware.RequireCapability(actions...)(fn)
	}

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	r.HandleFunc("/api/settings/public", h.Settings.Public).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Current user
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods("POST")
	api.HandleFunc("/me", h.Auth.Me).Methods("GET")
	api.HandleFunc("/me", h.Auth.UpdateProfile).Methods("PUT")
	api.HandleFunc("/me/stats", h.Auth.ProfileStats).Methods("GET")
	api.HandleFunc("/me/totp/setup", h.TOTP.SetupTOTP).Methods("POST")
	api.HandleFunc("/me/totp/enable", h.TOTP.EnableTOTP).Methods("POST")
	api.HandleFunc("/me/totp/disable", h.TOTP.DisableTOTP).Methods("POST")

	// Users
	api.Handle("/managers", can(h.Users.ListManagers, access.ManageManagers)).Methods("GET")
	api.Handle("/managers", can(h.Users.CreateManager, access.ManageManagers)).Methods("POST")
	api.Handle("/managers/{id}", can(h.Users.UpdateManager, access.ManageManagers)).Methods("PUT")
	api.Handle("/drivers", can(h.Users.ListDrivers, access.ManageDrivers, access.ExploreFleet)).Methods("GET")
	api.Handle("/drivers", can(h.Users.CreateDriver, access.ManageDrivers)).Methods("POST")
	api.Handle("/drivers/{id}", can(h.Users.UpdateDriver, access.ManageDrivers)).Methods("PUT")
	api.Handle("/sub-managers", can(h.Users.ListSubManagers, access.ManageSubManagers, access.ExploreFleet)).Methods("GET")
	api.Handle("/sub-managers", can(h.Users.CreateSubManager, access.ManageSubManagers)).Methods("POST")
	api.Handle("/sub-managers/{id}", can(h.Users.UpdateSubManager, access.ManageSubManagers)).Methods("PUT")
	api.Handle("/directory", can(h.Users.Directory, access.ViewDirectory)).Methods("GET")

	// Vehicles
	api.Handle("/vehicles", can(h.Vehicles.List, access.ViewVehicles)).Methods("GET")
	api.Handle("/vehicles", can(h.Vehicles.Create, access.ManageVehicles)).Methods("POST")
	api.Handle("/vehicles/alerts", can(h.Vehicles.Alerts, access.ViewVehicles)).Methods("GET")
	api.Handle("/vehicles/{id}", can(h.Vehicles.Update, access.ManageVehicles)).Methods("PUT")
	api.Handle("/vehicles/{id}", can(h.Vehicles.Delete, access.ManageVehicles)).Methods("DELETE")

	// Trips - fixed paths before /{id}
	api.Handle("/trips", can(h.Trips.List, access.ViewTrips)).Methods("GET")
	api.Handle("/trips", can(h.Trips.Create, access.CreateTrips)).Methods("POST")
	api.Handle("/trips/active", can(h.Trips.ActiveTrip, access.UpdateTripStatus)).Methods("GET")
	api.Handle("/trips/active/status", can(h.Trips.UpdateActiveStatus, access.UpdateTripStatus)).Methods("POST")
	api.Handle("/trips/export-sheet", can(h.Trips.ExportSheet, access.ViewTrips)).Methods("GET")
	api.Handle("/trips/{id}", can(h.Trips.Get, access.ViewTrips)).Methods("GET")
	api.Handle("/trips/{id}", can(h.Trips.Update, access.EditTrips)).Methods("PUT")
	api.Handle("/trips/{id}", can(h.Trips.Delete, access.DeleteTrips)).Methods("DELETE")
	api.Handle("/trips/{id}/settle", can(h.Trips.Settle, access.SettleTrips)).Methods("POST")

	// Payments and payment requests
	payments := api.NewRoute().Subrouter()
	payments.Use(middleware.RequireFeature(features, middleware.FeaturePayments))
	payments.Handle("/payments", can(h.Payments.List, access.ViewPayments)).Methods("GET")
	payments.Handle("/payments", can(h.Payments.Create, access.CreatePayments)).Methods("POST")
	payments.Handle("/payments/{id}", can(h.Payments.Delete, access.DeletePayments)).Methods("DELETE")
	payments.Handle("/payment-requests", can(h.Requests.ListPaymentRequests, access.ViewRequests)).Methods("GET")
	payments.Handle("/payment-requests", can(h.Requests.CreatePaymentRequest, access.CreatePaymentRequests)).Methods("POST")
	payments.Handle("/payment-requests/{id}/approve", can(h.Requests.ApprovePaymentRequest, access.ReviewRequests)).Methods("POST")
	payments.Handle("/payment-requests/{id}/reject", can(h.Requests.RejectPaymentRequest, access.ReviewRequests)).Methods("POST")

	// Trip requests
	api.Handle("/trip-requests", can(h.Requests.ListTripRequests, access.ViewRequests)).Methods("GET")
	api.Handle("/trip-requests", can(h.Requests.CreateTripRequest, access.CreateTripRequests)).Methods("POST")
	api.Handle("/trip-requests/{id}/approve", can(h.Requests.ApproveTripRequest, access.ReviewRequests)).Methods("POST")
	api.Handle("/trip-requests/{id}/reject", can(h.Requests.RejectTripRequest, access.ReviewRequests)).Methods("POST")

	// Salaries
	api.Handle("/salaries", can(h.Salaries.List, access.ManageSalaries)).Methods("GET")
	api.Handle("/salaries/{driverId}/{month}", can(h.Salaries.Get, access.ManageSalaries, access.ViewOwnSalary)).Methods("GET")
	api.Handle("/salaries/{driverId}/{month}/advances", can(h.Salaries.AddAdvance, access.ManageSalaries)).Methods("POST")
	api.Handle("/salaries/{driverId}/{month}/settle", can(h.Salaries.Settle, access.ManageSalaries)).Methods("POST")

	// Chat
	chat := api.PathPrefix("/chat").Subrouter()
	chat.Use(middleware.RequireFeature(features, middleware.FeatureChat))
	chat.Handle("/contacts", can(h.Chat.Contacts, access.Chat)).Methods("GET")
	chat.Handle("/conversations/{userId}", can(h.Chat.Conversation, access.Chat)).Methods("GET")
	chat.Handle("/messages", can(h.Chat.Send, access.Chat)).Methods("POST")
	chat.Handle("/ws", can(h.Chat.Connect, access.Chat)).Methods("GET")

	// Dashboards
	api.Handle("/dashboard/admin", can(h.Dashboards.Admin, access.AdminDashboard)).Methods("GET")
	api.Handle("/dashboard/manager", can(h.Dashboards.Manager, access.ManagerDashboard)).Methods("GET")
	api.Handle("/dashboard/sub-manager", can(h.Dashboards.SubManager, access.SubManagerDashboard)).Methods("GET")
	api.Handle("/dashboard/ujala", can(h.Dashboards.Ujala, access.UjalaDashboard)).Methods("GET")
	api.Handle("/dashboard/driver", can(h.Dashboards.Driver, access.DriverDashboard)).Methods("GET")
	api.Handle("/fleet", can(h.Dashboards.FleetExplorer, access.ExploreFleet)).Methods("GET")

	// Reports
	reports := api.PathPrefix("/reports").Subrouter()
	reports.Use(middleware.RequireFeature(features, middleware.FeatureReports))
	reports.Handle("/companies", can(h.Reports.Companies, access.ViewReports)).Methods("GET")
	reports.Handle("/monthly", can(h.Reports.Monthly, access.ViewReports)).Methods("GET")

	// Admin
	api.Handle("/settings", can(h.Settings.Get, access.ManageSettings)).Methods("GET")
	api.Handle("/settings", can(h.Settings.Update, access.ManageSettings)).Methods("PUT")
	api.Handle("/admin/backup", can(h.Backup.Run, access.RunBackup)).Methods("POST")
	api.Handle("/admin/backups", can(h.Backup.List, access.RunBackup)).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.Handle("/health/detailed", authMiddleware.Authenticate(can(h.Health.DetailedHealth, access.ManageSettings))).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
