package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-backend/internal/auth"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/chat"
	"fleet-backend/internal/config"
	"fleet-backend/internal/database"
	"fleet-backend/internal/db"
	"fleet-backend/internal/events"
	h "fleet-backend/internal/http"
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/health"
	"fleet-backend/internal/logger"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/repositories"
	"fleet-backend/internal/services"
	"fleet-backend/internal/store"
	"fleet-backend/internal/store/memory"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	appLogger := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage backend
	var (
		st       *store.Store
		memDB    *memory.DB
		pinger   health.Pinger
		shutdown = func() {}
	)
	switch cfg.Server.Storage {
	case config.StoragePostgres:
		pool := db.Connect(cfg)
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := database.NewMigrator(pool).RunMigrations(migrateCtx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		cancel()
		st = repositories.NewStore(pool)
		pinger = pool
		shutdown = pool.Close
	default:
		memDB = memory.New()
		if err := memDB.LoadFile(cfg.Server.DataFile); err != nil {
			log.Fatalf("Failed to load %s: %v", cfg.Server.DataFile, err)
		}
		st = memDB.Store()
		go autosave(ctx, memDB, cfg.Server.DataFile)
		log.Printf("[Store] Using in-memory store (data file: %s)", cfg.Server.DataFile)
	}

	appCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer appCache.Close()

	publisher := events.Connect(cfg.NSQ.Addr)
	defer publisher.Stop()

	hub := chat.NewHub()
	go hub.Run(ctx)

	// Initialize services
	jwtManager := auth.NewJWTManager(cfg)
	totpService := services.NewTOTPService(st.Users)
	userService := services.NewUserService(st.Users, jwtManager, appCache, totpService)
	settingService := services.NewSystemSettingService(st.Settings, appCache)
	vehicleService := services.NewVehicleService(st.Vehicles, st.Users)
	tripService := services.NewTripService(st, publisher)
	paymentService := services.NewPaymentService(st, publisher)
	salaryService := services.NewSalaryService(st, paymentService)
	chatService := services.NewChatService(st.Messages, st.Users, hub, publisher)
	requestService := services.NewRequestService(st, tripService, paymentService, chatService, publisher)
	dashboardService := services.NewDashboardService(st, tripService, paymentService, salaryService, requestService)
	reportService := services.NewReportService(tripService, settingService)

	collector := services.NewMetricsCollector(st, 30*time.Second)
	collector.Start()
	defer collector.Stop()

	var backupService *services.BackupService
	if cfg.BackupEnabled() {
		client, err := services.NewS3Client(ctx, cfg)
		if err != nil {
			log.Warnf("[Backup] Disabled: %v", err)
		} else {
			backupService = services.NewBackupService(st, client, cfg.Backup.Bucket, cfg.Backup.Prefix)
			if cfg.Backup.Interval > 0 {
				backupService.Schedule(ctx, cfg.Backup.Interval)
			}
		}
	}

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if _, err := userService.SeedAdmin(seedCtx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}
	cancel()

	// Initialize handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, st.Users, appCache)
	router := h.NewRouter(&h.Handlers{
		Auth:       handlers.NewAuthHandler(userService, dashboardService),
		TOTP:       handlers.NewTOTPHandler(totpService),
		Users:      handlers.NewUserHandler(userService, chatService),
		Vehicles:   handlers.NewVehicleHandler(vehicleService),
		Trips:      handlers.NewTripHandler(tripService),
		Payments:   handlers.NewPaymentHandler(paymentService),
		Salaries:   handlers.NewSalaryHandler(salaryService),
		Requests:   handlers.NewRequestHandler(requestService),
		Chat:       handlers.NewChatHandler(chatService, hub),
		Dashboards: handlers.NewDashboardHandler(dashboardService),
		Reports:    handlers.NewReportHandler(reportService),
		Settings:   handlers.NewSystemSettingHandler(settingService),
		Backup:     handlers.NewBackupHandler(backupService),
		Health:     handlers.NewHealthHandler(health.NewHealthChecker(pinger, cfg.Server.Storage, appCache)),
	}, authMiddleware, settingService)

	handler := middleware.PanicRecovery(middleware.RequestLogger(appLogger)(middleware.NewCORS(cfg)(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s (storage: %s)", addr, cfg.Server.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}

	if memDB != nil {
		if err := memDB.SaveFile(shutdownCtx, cfg.Server.DataFile); err != nil {
			log.Errorf("[Store] Failed to save %s: %v", cfg.Server.DataFile, err)
		} else {
			log.Printf("[Store] Saved %s", cfg.Server.DataFile)
		}
	}
	shutdown()
}

// autosave writes the in-memory store to disk every five minutes
func autosave(ctx context.Context, memDB *memory.DB, path string) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := memDB.SaveFile(ctx, path); err != nil {
				log.Errorf("[Store] Autosave failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
