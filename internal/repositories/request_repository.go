package repositories

import (
	"context"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type TripRequestRepository struct {
	DB DB
}

func NewTripRequestRepository(db DB) *TripRequestRepository {
	return &TripRequestRepository{DB: db}
}

const tripRequestColumns = `id, sub_manager_id, vehicle_id, loading_point, unloading_point, rent_company,
	estimated_fare, request_type, status, requested_at, resolved_by, resolved_at, reject_reason, trip_id`

func scanTripRequest(row pgx.Row) (*models.TripRequest, error) {
	var t models.TripRequest
	err := row.Scan(&t.ID, &t.SubManagerID, &t.VehicleID, &t.LoadingPoint, &t.UnloadingPoint, &t.RentCompany,
		&t.EstimatedFare, &t.RequestType, &t.Status, &t.Timestamp, &t.ResolvedBy, &t.ResolvedAt, &t.RejectReason, &t.TripID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TripRequestRepository) Create(ctx context.Context, t *models.TripRequest) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO trip_requests(id, sub_manager_id, vehicle_id, loading_point, unloading_point, rent_company,
			estimated_fare, request_type, status, requested_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.SubManagerID, t.VehicleID, t.LoadingPoint, t.UnloadingPoint, t.RentCompany,
		t.EstimatedFare, t.RequestType, t.Status, t.Timestamp,
	)
	return mapErr(err)
}

func (r *TripRequestRepository) Get(ctx context.Context, id string) (*models.TripRequest, error) {
	return scanTripRequest(r.DB.QueryRow(ctx, `SELECT `+tripRequestColumns+` FROM trip_requests WHERE id=$1`, id))
}

func (r *TripRequestRepository) List(ctx context.Context) ([]*models.TripRequest, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+tripRequestColumns+` FROM trip_requests ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*models.TripRequest
	for rows.Next() {
		t, err := scanTripRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, t)
	}
	return reqs, rows.Err()
}

// Resolve writes the resolution fields, and the approved trip when given, in one
// transaction. Only a pending row is updated; the request body itself is immutable.
func (r *TripRequestRepository) Resolve(ctx context.Context, t *models.TripRequest, trip *models.Trip) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE trip_requests SET status=$2, resolved_by=$3, resolved_at=$4, reject_reason=$5, trip_id=$6
         WHERE id=$1 AND status=$7`,
		t.ID, t.Status, t.ResolvedBy, t.ResolvedAt, t.RejectReason, t.TripID, models.RequestPending,
	)
	if err := guarded(ctx, tx, "trip_requests", t.ID, tag, err); err != nil {
		return err
	}
	if trip != nil {
		if err := insertTrip(ctx, tx, trip); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type PaymentRequestRepository struct {
	DB DB
}

func NewPaymentRequestRepository(db DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{DB: db}
}

const paymentRequestColumns = `id, requester_id, payer, vehicle_id, trip_ids, amount, notes, status,
	requested_at, resolved_by, resolved_at, reject_reason, payment_id`

func scanPaymentRequest(row pgx.Row) (*models.PaymentRequest, error) {
	var p models.PaymentRequest
	err := row.Scan(&p.ID, &p.RequesterID, &p.Payer, &p.VehicleID, &p.TripIDs, &p.Amount, &p.Notes, &p.Status,
		&p.Timestamp, &p.ResolvedBy, &p.ResolvedAt, &p.RejectReason, &p.PaymentID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PaymentRequestRepository) Create(ctx context.Context, p *models.PaymentRequest) error {
	tripIDs := p.TripIDs
	if tripIDs == nil {
		tripIDs = []string{}
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO payment_requests(id, requester_id, payer, vehicle_id, trip_ids, amount, notes, status, requested_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.RequesterID, p.Payer, p.VehicleID, tripIDs, p.Amount, p.Notes, p.Status, p.Timestamp,
	)
	return mapErr(err)
}

func (r *PaymentRequestRepository) Get(ctx context.Context, id string) (*models.PaymentRequest, error) {
	return scanPaymentRequest(r.DB.QueryRow(ctx, `SELECT `+paymentRequestColumns+` FROM payment_requests WHERE id=$1`, id))
}

func (r *PaymentRequestRepository) List(ctx context.Context) ([]*models.PaymentRequest, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+paymentRequestColumns+` FROM payment_requests ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*models.PaymentRequest
	for rows.Next() {
		p, err := scanPaymentRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, p)
	}
	return reqs, rows.Err()
}

func (r *PaymentRequestRepository) Resolve(ctx context.Context, p *models.PaymentRequest, payment *models.Payment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE payment_requests SET status=$2, resolved_by=$3, resolved_at=$4, reject_reason=$5, payment_id=$6
         WHERE id=$1 AND status=$7`,
		p.ID, p.Status, p.ResolvedBy, p.ResolvedAt, p.RejectReason, p.PaymentID, models.RequestPending,
	)
	if err := guarded(ctx, tx, "payment_requests", p.ID, tag, err); err != nil {
		return err
	}
	if payment != nil {
		if err := insertPayment(ctx, tx, payment); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
