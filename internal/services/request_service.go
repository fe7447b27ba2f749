package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-backend/internal/access"
	"fleet-backend/internal/events"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestService runs the sub-manager request flow: trip requests from
// sub-managers, payment requests from Ujala managers, both resolved by a main manager.
type RequestService struct {
	TripRequests    store.TripRequestStore
	PaymentRequests store.PaymentRequestStore
	Users           store.UserStore
	Vehicles        store.VehicleStore
	Trips           *TripService
	Payments        *PaymentService
	Chat            *ChatService
	Events          events.Publisher
	Clock           timeutil.Clock
}

func NewRequestService(st *store.Store, trips *TripService, payments *PaymentService, chat *ChatService, pub events.Publisher) *RequestService {
	return &RequestService{
		TripRequests:    st.TripRequests,
		PaymentRequests: st.PaymentRequests,
		Users:           st.Users,
		Vehicles:        st.Vehicles,
		Trips:           trips,
		Payments:        payments,
		Chat:            chat,
		Events:          pub,
	}
}

// CreateTripRequest records a pending request. The leg follows the sub-manager's type.
func (s *RequestService) CreateTripRequest(ctx context.Context, sub *models.User, body *models.CreateTripRequestBody) (*models.TripRequest, error) {
	v, err := s.Vehicles.Get(ctx, body.VehicleID)
	if err != nil || len(access.Vehicles(sub, []*models.Vehicle{v})) == 0 {
		return nil, invalidf("vehicle_id does not name a vehicle of your manager")
	}
	loading := strings.TrimSpace(body.LoadingPoint)
	unloading := strings.TrimSpace(body.UnloadingPoint)
	if loading == "" || unloading == "" {
		return nil, invalidf("loading_point and unloading_point are required")
	}
	if body.EstimatedFare < 0 {
		return nil, invalidf("estimated_fare cannot be negative")
	}

	requestType := models.MovementInput
	if sub.SubManagerType == models.SubManagerExport {
		requestType = models.MovementExport
	}

	req := &models.TripRequest{
		ID:             uuid.NewString(),
		SubManagerID:   sub.ID,
		VehicleID:      v.ID,
		LoadingPoint:   loading,
		UnloadingPoint: unloading,
		RentCompany:    ResolveRentCompany(body.RentCompany, body.CustomCompanyName),
		EstimatedFare:  body.EstimatedFare,
		RequestType:    requestType,
		Timestamp:      clockNow(s.Clock),
		Resolution:     models.Resolution{Status: models.RequestPending},
	}
	if err := s.TripRequests.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Printf("[Requests] %s requested a %s trip for %s", sub.Name, requestType, v.VehicleNumber)
	return req, nil
}

// ListTripRequests returns the requests visible to viewer, newest first
func (s *RequestService) ListTripRequests(ctx context.Context, viewer *models.User) ([]*models.TripRequest, error) {
	all, err := s.TripRequests.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := access.TripRequests(viewer, all, users)
	reverse(out)
	return out, nil
}

func (s *RequestService) tripRequest(ctx context.Context, viewer *models.User, id string) (*models.TripRequest, error) {
	req, err := s.TripRequests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(access.TripRequests(viewer, []*models.TripRequest{req}, users)) == 0 {
		return nil, store.ErrNotFound
	}
	return req, nil
}

// ApproveTripRequest turns a pending request into a Loading trip managed by
// the approver and tells the requester the new trip number over chat.
func (s *RequestService) ApproveTripRequest(ctx context.Context, approver *models.User, id string, body *models.ApproveTripRequestBody) (*models.TripRequest, *models.TripView, error) {
	req, err := s.tripRequest(ctx, approver, id)
	if err != nil {
		return nil, nil, err
	}
	now := clockNow(s.Clock)
	if err := req.Approve(approver.ID, now); err != nil {
		return nil, nil, err
	}

	vehicle, err := s.Vehicles.Get(ctx, req.VehicleID)
	if err != nil {
		return nil, nil, invalidf("requested vehicle no longer exists")
	}

	tripType := body.TripType
	if tripType == "" {
		tripType = models.TripTypeInput
	}
	if tripType != models.TripTypeInput && tripType != models.TripTypeLocal {
		return nil, nil, invalidf("trip_type must be Input or Local")
	}
	date := body.Date
	if date == "" {
		date = timeutil.Today(now)
	}
	if !timeutil.ValidDate(date) {
		return nil, nil, invalidf("date must be YYYY-MM-DD")
	}
	if body.PartyAdvanceAmount < 0 || body.CompanyAdvanceAmount < 0 || (body.PackageAmount != nil && *body.PackageAmount < 0) {
		return nil, nil, invalidf("amounts cannot be negative")
	}
	if body.RelatedTripID != "" {
		if _, err := s.Trips.visible(ctx, approver, body.RelatedTripID); err != nil {
			return nil, nil, invalidf("related_trip_id does not name one of your trips")
		}
	}

	trip := &models.Trip{
		VehicleID:            vehicle.ID,
		DriverID:             vehicle.DriverID,
		ManagerID:            approver.ID,
		MovementStatus:       req.RequestType,
		TripType:             tripType,
		LoadingPoint:         req.LoadingPoint,
		UnloadingPoint:       req.UnloadingPoint,
		Date:                 date,
		Status:               models.TripLoading,
		PartyFare:            req.EstimatedFare,
		PartyAdvanceAmount:   body.PartyAdvanceAmount,
		CompanyAdvanceAmount: body.CompanyAdvanceAmount,
		RentCompany:          req.RentCompany,
		RelatedTripID:        body.RelatedTripID,
	}
	if body.PackageAmount != nil {
		trip.PackageAmount = *body.PackageAmount
	}
	s.Trips.prepare(trip)
	req.TripID = trip.ID
	if err := s.TripRequests.Resolve(ctx, req, trip); err != nil {
		return nil, nil, resolveErr(err)
	}
	s.Trips.created(trip)

	text := fmt.Sprintf("Trip request approved: %s (%s -> %s)", trip.TripNumber, trip.LoadingPoint, trip.UnloadingPoint)
	if _, err := s.Chat.deliver(ctx, approver.ID, req.SubManagerID, text); err != nil {
		log.Warnf("[Requests] approval notice for %s not sent: %v", req.ID, err)
	}

	s.resolved("trip", req.ID, approver.ID, models.RequestApproved, now, map[string]string{"trip_id": trip.ID})
	log.Printf("[Requests] %s approved trip request %s as %s", approver.Name, req.ID, trip.TripNumber)

	view, err := s.Trips.Get(ctx, approver, trip.ID)
	if err != nil {
		return nil, nil, err
	}
	return req, view, nil
}

func (s *RequestService) RejectTripRequest(ctx context.Context, approver *models.User, id, reason string) (*models.TripRequest, error) {
	req, err := s.tripRequest(ctx, approver, id)
	if err != nil {
		return nil, err
	}
	now := clockNow(s.Clock)
	if err := req.Reject(approver.ID, now, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}
	if err := s.TripRequests.Resolve(ctx, req, nil); err != nil {
		return nil, resolveErr(err)
	}
	s.resolved("trip", req.ID, approver.ID, models.RequestRejected, now, nil)
	return req, nil
}

// CreatePaymentRequest records a collection reported by an Ujala manager
func (s *RequestService) CreatePaymentRequest(ctx context.Context, requester *models.User, body *models.CreatePaymentRequestBody) (*models.PaymentRequest, error) {
	payer := strings.TrimSpace(body.Payer)
	if payer == "" {
		return nil, invalidf("payer is required")
	}
	if body.Amount <= 0 {
		return nil, invalidf("amount must be positive")
	}
	trips, err := s.Payments.resolveTrips(ctx, requester, body.TripIDs)
	if err != nil {
		return nil, err
	}

	req := &models.PaymentRequest{
		ID:          uuid.NewString(),
		RequesterID: requester.ID,
		Payer:       payer,
		VehicleID:   body.VehicleID,
		TripIDs:     tripIDs(trips),
		Amount:      body.Amount,
		Notes:       strings.TrimSpace(body.Notes),
		Timestamp:   clockNow(s.Clock),
		Resolution:  models.Resolution{Status: models.RequestPending},
	}
	if err := s.PaymentRequests.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Printf("[Requests] %s requested a %.2f payment from %s", requester.Name, req.Amount, payer)
	return req, nil
}

func (s *RequestService) ListPaymentRequests(ctx context.Context, viewer *models.User) ([]*models.PaymentRequest, error) {
	all, err := s.PaymentRequests.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := access.PaymentRequests(viewer, all, users)
	reverse(out)
	return out, nil
}

func (s *RequestService) paymentRequest(ctx context.Context, viewer *models.User, id string) (*models.PaymentRequest, error) {
	req, err := s.PaymentRequests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(access.PaymentRequests(viewer, []*models.PaymentRequest{req}, users)) == 0 {
		return nil, store.ErrNotFound
	}
	return req, nil
}

// ApprovePaymentRequest records an "Ujala Request" payment for the requested trips
func (s *RequestService) ApprovePaymentRequest(ctx context.Context, approver *models.User, id string) (*models.PaymentRequest, *models.Payment, error) {
	req, err := s.paymentRequest(ctx, approver, id)
	if err != nil {
		return nil, nil, err
	}
	now := clockNow(s.Clock)
	if err := req.Approve(approver.ID, now); err != nil {
		return nil, nil, err
	}

	trips, err := s.Payments.resolveTrips(ctx, approver, req.TripIDs)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		ID:           uuid.NewString(),
		PaymentType:  models.PaymentUjalaRequest,
		Payer:        req.Payer,
		VehicleID:    req.VehicleID,
		TripIDs:      tripIDs(trips),
		Amount:       req.Amount,
		RemainingDue: RemainingDue(trips, req.Amount),
		Date:         timeutil.Today(now),
		Notes:        req.Notes,
		RecordedBy:   approver.ID,
		CreatedAt:    now,
	}
	req.PaymentID = payment.ID
	if err := s.PaymentRequests.Resolve(ctx, req, payment); err != nil {
		return nil, nil, resolveErr(err)
	}
	s.Payments.recorded(payment)

	s.resolved("payment", req.ID, approver.ID, models.RequestApproved, now, map[string]string{"payment_id": payment.ID})
	log.Printf("[Requests] %s approved payment request %s", approver.Name, req.ID)
	return req, payment, nil
}

func (s *RequestService) RejectPaymentRequest(ctx context.Context, approver *models.User, id, reason string) (*models.PaymentRequest, error) {
	req, err := s.paymentRequest(ctx, approver, id)
	if err != nil {
		return nil, err
	}
	now := clockNow(s.Clock)
	if err := req.Reject(approver.ID, now, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}
	if err := s.PaymentRequests.Resolve(ctx, req, nil); err != nil {
		return nil, resolveErr(err)
	}
	s.resolved("payment", req.ID, approver.ID, models.RequestRejected, now, nil)
	return req, nil
}

// resolveErr reports a request resolved by someone else since it was read
// the same way as one that was already resolved
func resolveErr(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return models.ErrRequestResolved
	}
	return err
}

func (s *RequestService) resolved(kind, id, actorID string, outcome models.RequestStatus, at time.Time, data map[string]string) {
	metrics.RequestsResolved.WithLabelValues(kind, string(outcome)).Inc()
	if data == nil {
		data = map[string]string{}
	}
	data["kind"] = kind
	data["outcome"] = string(outcome)
	publish(s.Events, events.TopicRequestResolved, "request."+string(outcome), id, actorID, at, data)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
