package services

import (
	"context"
	"sync"
	"time"

	"fleet-backend/internal/dues"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	log "github.com/sirupsen/logrus"
)

// FleetSnapshot is what one collection pass computed
type FleetSnapshot struct {
	TripsByStatus          map[models.TripStatus]int
	PendingTripRequests    int
	PendingPaymentRequests int
	OpenPartyDue           float64
	OpenDriverPending      float64
}

// MetricsCollector periodically publishes fleet gauges to Prometheus
type MetricsCollector struct {
	store           *store.Store
	collectInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

func NewMetricsCollector(st *store.Store, interval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		store:           st,
		collectInterval: interval,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the background collection
func (c *MetricsCollector) Start() {
	log.Println("[MetricsCollector] Starting metrics collector...")

	// Collect immediately on start
	c.collectAll()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collectAll()
			case <-c.stopChan:
				log.Println("[MetricsCollector] Stopping metrics collector...")
				return
			}
		}
	}()
}

// Stop stops the metrics collection
func (c *MetricsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *MetricsCollector) collectAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := c.Collect(ctx)
	if err != nil {
		log.Warnf("[MetricsCollector] Collection failed: %v", err)
		return
	}

	for _, status := range []models.TripStatus{models.TripLoading, models.TripRunning, models.TripDelayed, models.TripUnloaded, models.TripCompleted} {
		metrics.TripsByStatus.WithLabelValues(string(status)).Set(float64(snap.TripsByStatus[status]))
	}
	metrics.PendingRequests.WithLabelValues("trip").Set(float64(snap.PendingTripRequests))
	metrics.PendingRequests.WithLabelValues("payment").Set(float64(snap.PendingPaymentRequests))
	metrics.OutstandingAmount.WithLabelValues("party_due").Set(snap.OpenPartyDue)
	metrics.OutstandingAmount.WithLabelValues("driver_pending").Set(snap.OpenDriverPending)
}

// Collect computes the gauges without publishing them
func (c *MetricsCollector) Collect(ctx context.Context) (*FleetSnapshot, error) {
	trips, err := c.store.Trips.List(ctx)
	if err != nil {
		return nil, err
	}
	tripReqs, err := c.store.TripRequests.List(ctx)
	if err != nil {
		return nil, err
	}
	payReqs, err := c.store.PaymentRequests.List(ctx)
	if err != nil {
		return nil, err
	}

	snap := &FleetSnapshot{TripsByStatus: make(map[models.TripStatus]int)}
	for _, t := range trips {
		snap.TripsByStatus[t.Status]++
		if t.Status == models.TripCompleted {
			continue
		}
		if due := dues.PartyDue(t); due > 0 {
			snap.OpenPartyDue += due
		}
		if pending := dues.DriverPending(t); pending > 0 {
			snap.OpenDriverPending += pending
		}
	}
	for _, r := range tripReqs {
		if r.Pending() {
			snap.PendingTripRequests++
		}
	}
	for _, r := range payReqs {
		if r.Pending() {
			snap.PendingPaymentRequests++
		}
	}
	return snap, nil
}
