package services

import (
	"context"
	"fmt"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/dues"
	"fleet-backend/internal/events"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type PaymentService struct {
	Payments store.PaymentStore
	Trips    store.TripStore
	Vehicles store.VehicleStore
	Events   events.Publisher
	Clock    timeutil.Clock
}

func NewPaymentService(st *store.Store, pub events.Publisher) *PaymentService {
	return &PaymentService{
		Payments: st.Payments,
		Trips:    st.Trips,
		Vehicles: st.Vehicles,
		Events:   pub,
	}
}

// List returns the payments visible to viewer, newest first. Salary payments
// belong to the salary ledger and are left out of the manager-side list;
// drivers and the super admin still get them.
func (s *PaymentService) List(ctx context.Context, viewer *models.User) ([]*models.Payment, error) {
	payments, trips, vehicles, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	visible := access.Payments(viewer, payments, trips, vehicles)
	if viewer.Role != models.RoleDriver && viewer.Role != models.RoleSuperAdmin {
		kept := visible[:0]
		for _, p := range visible {
			if p.PaymentType != models.PaymentSalary {
				kept = append(kept, p)
			}
		}
		visible = kept
	}
	access.SortPaymentsByDateDesc(visible)
	return visible, nil
}

func (s *PaymentService) collections(ctx context.Context) ([]*models.Payment, []*models.Trip, []*models.Vehicle, error) {
	payments, err := s.Payments.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	trips, err := s.Trips.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return payments, trips, vehicles, nil
}

// Create records a manual payment. remaining_due is the party due of the
// referenced trips minus the amount; trips themselves are not changed.
func (s *PaymentService) Create(ctx context.Context, actor *models.User, req *models.CreatePaymentRequest) (*models.Payment, error) {
	paymentType := strings.TrimSpace(req.PaymentType)
	if paymentType == "" {
		paymentType = models.PaymentSingleTrip
	}
	if req.Amount <= 0 {
		return nil, invalidf("amount must be positive")
	}

	now := clockNow(s.Clock)
	date := req.Date
	if date == "" {
		date = timeutil.Today(now)
	}
	if !timeutil.ValidDate(date) {
		return nil, invalidf("date must be YYYY-MM-DD")
	}

	trips, err := s.resolveTrips(ctx, actor, req.TripIDs)
	if err != nil {
		return nil, err
	}

	if req.VehicleID != "" {
		v, err := s.Vehicles.Get(ctx, req.VehicleID)
		if err != nil || len(access.Vehicles(actor, []*models.Vehicle{v})) == 0 {
			return nil, invalidf("vehicle_id does not name one of your vehicles")
		}
	}

	p := &models.Payment{
		ID:           uuid.NewString(),
		PaymentType:  paymentType,
		Payer:        ResolveRentCompany(req.Payer, req.CustomCompanyName),
		VehicleID:    req.VehicleID,
		TripIDs:      tripIDs(trips),
		Amount:       req.Amount,
		RemainingDue: RemainingDue(trips, req.Amount),
		Date:         date,
		Notes:        strings.TrimSpace(req.Notes),
		RecordedBy:   actor.ID,
		CreatedAt:    now,
	}
	if err := s.record(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// record stores p and reports it
func (s *PaymentService) record(ctx context.Context, p *models.Payment) error {
	if err := s.Payments.Create(ctx, p); err != nil {
		return err
	}
	s.recorded(p)
	return nil
}

// recorded reports a payment that reached the store
func (s *PaymentService) recorded(p *models.Payment) {
	metrics.PaymentsRecorded.WithLabelValues(p.PaymentType).Inc()
	metrics.PaymentAmount.WithLabelValues(p.PaymentType).Add(p.Amount)
	publish(s.Events, events.TopicSettlement, "payment.recorded", p.ID, p.RecordedBy, p.CreatedAt, map[string]string{
		"payment_type": p.PaymentType,
		"amount":       fmt.Sprintf("%.2f", p.Amount),
	})
	log.Printf("[Payments] Recorded %s of %.2f (%d trips)", p.PaymentType, p.Amount, len(p.TripIDs))
}

// Delete removes a payment. Trip amounts stay as they are; reconciliation is manual.
func (s *PaymentService) Delete(ctx context.Context, actor *models.User, id string) error {
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		return err
	}
	_, trips, vehicles, err := s.collections(ctx)
	if err != nil {
		return err
	}
	if len(access.Payments(actor, []*models.Payment{p}, trips, vehicles)) == 0 {
		return store.ErrNotFound
	}
	if err := s.Payments.Delete(ctx, p.ID); err != nil {
		return err
	}
	log.Printf("[Payments] %s deleted %s of %.2f", actor.Name, p.PaymentType, p.Amount)
	return nil
}

// resolveTrips loads each distinct id, which must be a trip actor can see
func (s *PaymentService) resolveTrips(ctx context.Context, actor *models.User, ids []string) ([]*models.Trip, error) {
	seen := make(map[string]bool, len(ids))
	var trips []*models.Trip
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		t, err := s.Trips.Get(ctx, id)
		if err != nil || len(access.Trips(actor, []*models.Trip{t})) == 0 {
			return nil, invalidf("trip %s is not one of your trips", id)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// RemainingDue is the summed party due of trips less what was just paid
func RemainingDue(trips []*models.Trip, amount float64) float64 {
	var due float64
	for _, t := range trips {
		due += dues.PartyDue(t)
	}
	return due - amount
}

func tripIDs(trips []*models.Trip) []string {
	ids := make([]string, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	return ids
}
