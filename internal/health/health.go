package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type CacheHealth interface {
	IsHealthy(ctx context.Context) bool
}

type HealthChecker struct {
	db        Pinger
	backend   string
	cache     CacheHealth
	startedAt time.Time
}

type HealthStatus struct {
	Status  string         `json:"status"`
	Storage DatabaseHealth `json:"storage"`
	Redis   string         `json:"redis"`
	Uptime  string         `json:"uptime"`
	System  *SystemHealth  `json:"system,omitempty"`
}

type DatabaseHealth struct {
	Backend      string `json:"backend"`
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type SystemHealth struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used_bytes"`
	MemoryTotal   uint64  `json:"memory_total_bytes"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      uint64  `json:"disk_used_bytes"`
	DiskTotal     uint64  `json:"disk_total_bytes"`
}

// NewHealthChecker takes a nil db for the in-memory backend
func NewHealthChecker(db Pinger, backend string, cache CacheHealth) *HealthChecker {
	return &HealthChecker{db: db, backend: backend, cache: cache, startedAt: time.Now()}
}

func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	redis := "disabled"
	if h.cache != nil && h.cache.IsHealthy(ctx) {
		redis = "healthy"
	}

	return HealthStatus{
		Status:  status,
		Storage: dbHealth,
		Redis:   redis,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	}
}

// CheckDetailed adds host CPU, memory and disk usage
func (h *HealthChecker) CheckDetailed(ctx context.Context) HealthStatus {
	status := h.CheckBasic(ctx)
	sys := &SystemHealth{}

	if cpuPercents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		sys.CPUPercent = cpuPercents[0]
	}
	if memStats, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		sys.MemoryPercent = memStats.UsedPercent
		sys.MemoryUsed = memStats.Used
		sys.MemoryTotal = memStats.Total
	}
	if diskStats, err := disk.UsageWithContext(ctx, "/"); err == nil {
		sys.DiskPercent = diskStats.UsedPercent
		sys.DiskUsed = diskStats.Used
		sys.DiskTotal = diskStats.Total
	}

	status.System = sys
	return status
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	if h.db == nil {
		return DatabaseHealth{Backend: h.backend, Status: "healthy"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Backend:      h.backend,
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Backend:      h.backend,
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
