package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleet_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	TripsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_trips_created_total",
		Help: "Trips created, by movement (INPUT/EXPORT).",
	}, []string{"movement"})

	TripTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_trip_status_transitions_total",
		Help: "Trip status changes by target status.",
	}, []string{"status"})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_payments_recorded_total",
		Help: "Payments recorded by payment type.",
	}, []string{"type"})

	PaymentAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_payment_amount_taka_total",
		Help: "Sum of recorded payment amounts by payment type.",
	}, []string{"type"})

	RequestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_requests_resolved_total",
		Help: "Trip and payment requests resolved by kind and outcome.",
	}, []string{"kind", "outcome"})

	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_chat_messages_total",
		Help: "Chat messages stored.",
	})

	ChatConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_chat_websocket_connections",
		Help: "Open chat WebSocket connections.",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	TripsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_trips",
		Help: "Trips currently in each status.",
	}, []string{"status"})

	PendingRequests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_pending_requests",
		Help: "Trip and payment requests waiting for review.",
	}, []string{"kind"})

	OutstandingAmount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_outstanding_amount_taka",
		Help: "Open party dues and driver pending amounts over unsettled trips.",
	}, []string{"kind"})
)
