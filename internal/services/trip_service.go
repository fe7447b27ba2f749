package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

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

// Picking one of these rent company options means the custom name is used instead
var customCompanyOptions = []string{"বাহির", "নিজ", "outside", "own"}

type TripService struct {
	Trips    store.TripStore
	Vehicles store.VehicleStore
	Users    store.UserStore
	Payments store.PaymentStore
	Events   events.Publisher
	Clock    timeutil.Clock

	mu         sync.Mutex
	lastNumber int64
}

func NewTripService(st *store.Store, pub events.Publisher) *TripService {
	return &TripService{
		Trips:    st.Trips,
		Vehicles: st.Vehicles,
		Users:    st.Users,
		Payments: st.Payments,
		Events:   pub,
	}
}

// List returns the trips visible to viewer, newest first, with derived amounts
func (s *TripService) List(ctx context.Context, viewer *models.User, f models.TripFilter) ([]*models.TripView, error) {
	all, err := s.Trips.List(ctx)
	if err != nil {
		return nil, err
	}
	trips := access.Trips(viewer, all)
	access.SortTripsByDateDesc(trips)

	names, err := s.lookup(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	views := make([]*models.TripView, 0, len(trips))
	for _, t := range trips {
		if f.Movement != "" && t.MovementStatus != f.Movement {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Month != "" && !strings.HasPrefix(t.Date, f.Month) {
			continue
		}
		v := names.view(t)
		if search != "" &&
			!strings.Contains(strings.ToLower(v.VehicleNumber), search) &&
			!strings.Contains(strings.ToLower(v.DriverName), search) {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// ExportSheet lists EXPORT trips for the settlement sheet
func (s *TripService) ExportSheet(ctx context.Context, viewer *models.User, search string, status models.TripStatus) ([]*models.TripView, error) {
	return s.List(ctx, viewer, models.TripFilter{Movement: models.MovementExport, Status: status, Search: search})
}

func (s *TripService) Get(ctx context.Context, viewer *models.User, id string) (*models.TripView, error) {
	t, err := s.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	names, err := s.lookup(ctx)
	if err != nil {
		return nil, err
	}
	return names.view(t), nil
}

func (s *TripService) visible(ctx context.Context, viewer *models.User, id string) (*models.Trip, error) {
	t, err := s.Trips.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(access.Trips(viewer, []*models.Trip{t})) == 0 {
		return nil, store.ErrNotFound
	}
	return t, nil
}

// Create logs a new trip for the acting main manager
func (s *TripService) Create(ctx context.Context, actor *models.User, req *models.TripRequestBody) (*models.TripView, error) {
	t := &models.Trip{
		ManagerID: actor.ID,
		Status:    models.TripLoading,
	}
	if err := s.apply(ctx, actor, t, req); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}
	log.Printf("[Trips] %s created %s (%s) for vehicle %s", actor.Name, t.TripNumber, t.MovementStatus, t.VehicleID)
	return s.Get(ctx, actor, t.ID)
}

// insert numbers and stores a fully populated trip
func (s *TripService) insert(ctx context.Context, t *models.Trip) error {
	s.prepare(t)
	if err := s.Trips.Create(ctx, t); err != nil {
		return err
	}
	s.created(t)
	return nil
}

// prepare stamps the identity, number and totals of a trip about to be stored
func (s *TripService) prepare(t *models.Trip) {
	now := clockNow(s.Clock)
	t.ID = uuid.NewString()
	t.TripNumber = s.nextNumber(now.UnixMilli())
	t.TotalAdvancePaid = dues.TotalAdvance(t)
	t.CreatedAt = now
	t.UpdatedAt = now
}

func (s *TripService) created(t *models.Trip) {
	metrics.TripsCreated.WithLabelValues(string(t.MovementStatus)).Inc()
}

// nextNumber returns TRP-<millis>, bumped when two trips land on the same millisecond
func (s *TripService) nextNumber(millis int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if millis <= s.lastNumber {
		millis = s.lastNumber + 1
	}
	s.lastNumber = millis
	return fmt.Sprintf("TRP-%d", millis)
}

func (s *TripService) Update(ctx context.Context, actor *models.User, id string, req *models.TripRequestBody) (*models.TripView, error) {
	t, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, t, req); err != nil {
		return nil, err
	}
	t.TotalAdvancePaid = dues.TotalAdvance(t)
	t.UpdatedAt = clockNow(s.Clock)
	if err := s.Trips.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, t.ID)
}

// Delete removes the trip only. Payments that reference it are kept as recorded.
func (s *TripService) Delete(ctx context.Context, actor *models.User, id string) error {
	t, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Trips.Delete(ctx, t.ID); err != nil {
		return err
	}
	log.Printf("[Trips] %s deleted %s", actor.Name, t.TripNumber)
	return nil
}

func (s *TripService) apply(ctx context.Context, actor *models.User, t *models.Trip, req *models.TripRequestBody) error {
	vehicle, err := s.Vehicles.Get(ctx, req.VehicleID)
	if err != nil || len(access.Vehicles(actor, []*models.Vehicle{vehicle})) == 0 {
		return invalidf("vehicle_id does not name one of your vehicles")
	}

	movement := req.MovementStatus
	if movement == "" {
		movement = models.MovementInput
	}
	if !movement.Valid() {
		return invalidf("movement_status must be INPUT or EXPORT")
	}

	tripType := req.TripType
	if tripType == "" {
		tripType = models.TripTypeInput
	}
	if tripType != models.TripTypeInput && tripType != models.TripTypeLocal {
		return invalidf("trip_type must be Input or Local")
	}

	loading := strings.TrimSpace(req.LoadingPoint)
	unloading := strings.TrimSpace(req.UnloadingPoint)
	if loading == "" || unloading == "" {
		return invalidf("loading_point and unloading_point are required")
	}

	date := req.Date
	if date == "" {
		date = timeutil.Today(clockNow(s.Clock))
	}
	if !timeutil.ValidDate(date) {
		return invalidf("date must be YYYY-MM-DD")
	}

	if req.Status != "" {
		if !req.Status.Valid() {
			return invalidf("unknown status %q", req.Status)
		}
		t.Status = req.Status
	}

	if req.PartyFare < 0 || req.PartyAdvanceAmount < 0 || req.CompanyAdvanceAmount < 0 ||
		(req.PackageAmount != nil && *req.PackageAmount < 0) {
		return invalidf("amounts cannot be negative")
	}

	if req.RelatedTripID != "" {
		if req.RelatedTripID == t.ID {
			return invalidf("a trip cannot be related to itself")
		}
		if _, err := s.visible(ctx, actor, req.RelatedTripID); err != nil {
			return invalidf("related_trip_id does not name one of your trips")
		}
	}

	t.VehicleID = vehicle.ID
	t.DriverID = vehicle.DriverID
	t.MovementStatus = movement
	t.TripType = tripType
	t.LoadingPoint = loading
	t.UnloadingPoint = unloading
	t.Date = date
	t.PartyFare = req.PartyFare
	if req.PackageAmount != nil {
		t.PackageAmount = *req.PackageAmount
	}
	t.PartyAdvanceAmount = req.PartyAdvanceAmount
	t.CompanyAdvanceAmount = req.CompanyAdvanceAmount
	t.RentCompany = ResolveRentCompany(req.RentCompany, req.CustomCompanyName)
	t.RelatedTripID = req.RelatedTripID
	t.Notes = strings.TrimSpace(req.Notes)
	return nil
}

// ResolveRentCompany swaps the generic "outside"/"own" pick for the typed name when one is given
func ResolveRentCompany(selected, custom string) string {
	selected = strings.TrimSpace(selected)
	custom = strings.TrimSpace(custom)
	for _, opt := range customCompanyOptions {
		if strings.EqualFold(selected, opt) && custom != "" {
			return custom
		}
	}
	return selected
}

// ActiveTrip is the driver's newest trip that is not Completed
func (s *TripService) ActiveTrip(ctx context.Context, driver *models.User) (*models.TripView, error) {
	all, err := s.Trips.List(ctx)
	if err != nil {
		return nil, err
	}
	trips := access.Trips(driver, all)
	access.SortTripsByDateDesc(trips)
	for _, t := range trips {
		if t.Status != models.TripCompleted {
			return dues.View(t), nil
		}
	}
	return nil, ErrNoActiveTrip
}

// UpdateActiveStatus applies a driver status change to their active trip
func (s *TripService) UpdateActiveStatus(ctx context.Context, driver *models.User, next models.TripStatus) (*models.TripView, error) {
	active, err := s.ActiveTrip(ctx, driver)
	if err != nil {
		return nil, err
	}
	t := active.Trip
	if !t.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.Status, next)
	}

	now := clockNow(s.Clock)
	prev := t.Status
	t.Status = next
	if next == models.TripUnloaded {
		t.UnloadingDate = timeutil.Today(now)
	}
	t.UpdatedAt = now
	if err := s.Trips.Update(ctx, t); err != nil {
		return nil, err
	}

	metrics.TripTransitions.WithLabelValues(string(next)).Inc()
	publish(s.Events, events.TopicTripStatus, "trip.status_changed", t.ID, driver.ID, now, map[string]string{
		"trip_number": t.TripNumber,
		"from":        string(prev),
		"to":          string(next),
	})
	log.Printf("[Trips] %s moved %s from %s to %s", driver.Name, t.TripNumber, prev, next)
	return dues.View(t), nil
}

// Settle pays the driver what is pending on an EXPORT trip and completes it with its related leg
func (s *TripService) Settle(ctx context.Context, actor *models.User, id string) (*models.Payment, error) {
	t, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.MovementStatus != models.MovementExport {
		return nil, invalidf("only EXPORT trips are settled")
	}
	if t.Status == models.TripCompleted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, t.TripNumber)
	}

	pending := dues.DriverPending(t)
	if pending <= 0 {
		return nil, ErrNothingToSettle
	}

	now := clockNow(s.Clock)
	tripIDs := []string{t.ID}
	var relatedID string
	if t.RelatedTripID != "" {
		related, err := s.Trips.Get(ctx, t.RelatedTripID)
		if err == nil {
			relatedID = related.ID
			tripIDs = append(tripIDs, related.ID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	payment := &models.Payment{
		ID:           uuid.NewString(),
		PaymentType:  models.PaymentDriverSettlement,
		VehicleID:    t.VehicleID,
		TripIDs:      tripIDs,
		Amount:       pending,
		RemainingDue: 0,
		Date:         timeutil.Today(now),
		Notes:        "Final settlement for " + t.TripNumber,
		RecordedBy:   actor.ID,
		CreatedAt:    now,
	}
	if err := s.Trips.Settle(ctx, t.ID, relatedID, payment, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, t.TripNumber)
		}
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(payment.PaymentType).Inc()
	metrics.PaymentAmount.WithLabelValues(payment.PaymentType).Add(payment.Amount)
	metrics.TripTransitions.WithLabelValues(string(models.TripCompleted)).Inc()
	publish(s.Events, events.TopicSettlement, "trip.settled", t.ID, actor.ID, now, map[string]string{
		"trip_number": t.TripNumber,
		"payment_id":  payment.ID,
		"amount":      fmt.Sprintf("%.2f", payment.Amount),
	})
	log.Printf("[Trips] %s settled %s for %.2f", actor.Name, t.TripNumber, pending)
	return payment, nil
}

// names resolves vehicle numbers and driver names for trip views
type names struct {
	vehicles map[string]string
	drivers  map[string]string
}

func (s *TripService) lookup(ctx context.Context) (*names, error) {
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	n := &names{
		vehicles: make(map[string]string, len(vehicles)),
		drivers:  make(map[string]string, len(users)),
	}
	for _, v := range vehicles {
		n.vehicles[v.ID] = v.VehicleNumber
	}
	for _, u := range users {
		n.drivers[u.ID] = u.Name
	}
	return n, nil
}

func (n *names) view(t *models.Trip) *models.TripView {
	v := dues.View(t)
	v.VehicleNumber = n.vehicles[t.VehicleID]
	v.DriverName = n.drivers[t.DriverID]
	return v
}
