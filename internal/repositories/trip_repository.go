package repositories

import (
	"context"
	"time"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type TripRepository struct {
	DB DB
}

func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{DB: db}
}

const tripColumns = `id, trip_number, vehicle_id, driver_id, manager_id, movement_status, trip_type,
	loading_point, unloading_point, trip_date, unloading_date, status, party_fare, package_amount,
	party_advance_amount, company_advance_amount, total_advance_paid, rent_company, related_trip_id, notes,
	created_at, updated_at`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var t models.Trip
	err := row.Scan(&t.ID, &t.TripNumber, &t.VehicleID, &t.DriverID, &t.ManagerID, &t.MovementStatus, &t.TripType,
		&t.LoadingPoint, &t.UnloadingPoint, &t.Date, &t.UnloadingDate, &t.Status, &t.PartyFare, &t.PackageAmount,
		&t.PartyAdvanceAmount, &t.CompanyAdvanceAmount, &t.TotalAdvancePaid, &t.RentCompany, &t.RelatedTripID, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TripRepository) Create(ctx context.Context, t *models.Trip) error {
	return insertTrip(ctx, r.DB, t)
}

func insertTrip(ctx context.Context, q querier, t *models.Trip) error {
	_, err := q.Exec(ctx,
		`INSERT INTO trips(id, trip_number, vehicle_id, driver_id, manager_id, movement_status, trip_type,
			loading_point, unloading_point, trip_date, unloading_date, status, party_fare, package_amount,
			party_advance_amount, company_advance_amount, total_advance_paid, rent_company, related_trip_id, notes,
			created_at, updated_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21)`,
		t.ID, t.TripNumber, t.VehicleID, t.DriverID, t.ManagerID, t.MovementStatus, t.TripType,
		t.LoadingPoint, t.UnloadingPoint, t.Date, t.UnloadingDate, t.Status, t.PartyFare, t.PackageAmount,
		t.PartyAdvanceAmount, t.CompanyAdvanceAmount, t.TotalAdvancePaid, t.RentCompany, t.RelatedTripID, t.Notes,
		t.CreatedAt,
	)
	return mapErr(err)
}

func (r *TripRepository) Get(ctx context.Context, id string) (*models.Trip, error) {
	return scanTrip(r.DB.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
}

func (r *TripRepository) List(ctx context.Context) ([]*models.Trip, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *TripRepository) Update(ctx context.Context, t *models.Trip) error {
	return affected(r.DB.Exec(ctx,
		`UPDATE trips SET trip_number=$2, vehicle_id=$3, driver_id=$4, manager_id=$5, movement_status=$6,
			trip_type=$7, loading_point=$8, unloading_point=$9, trip_date=$10, unloading_date=$11, status=$12,
			party_fare=$13, package_amount=$14, party_advance_amount=$15, company_advance_amount=$16,
			total_advance_paid=$17, rent_company=$18, related_trip_id=$19, notes=$20, updated_at=$21
         WHERE id=$1`,
		t.ID, t.TripNumber, t.VehicleID, t.DriverID, t.ManagerID, t.MovementStatus, t.TripType,
		t.LoadingPoint, t.UnloadingPoint, t.Date, t.UnloadingDate, t.Status, t.PartyFare, t.PackageAmount,
		t.PartyAdvanceAmount, t.CompanyAdvanceAmount, t.TotalAdvancePaid, t.RentCompany, t.RelatedTripID, t.Notes,
		t.UpdatedAt,
	))
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	return affected(r.DB.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id))
}

// Settle completes the trip and its related leg and records p in one transaction.
// The status guard makes a second settlement of the same trip a conflict.
func (r *TripRepository) Settle(ctx context.Context, id, related string, p *models.Payment, at time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE trips SET status=$2, updated_at=$3 WHERE id=$1 AND status<>$2`,
		id, models.TripCompleted, at)
	if err := guarded(ctx, tx, "trips", id, tag, err); err != nil {
		return err
	}
	if related != "" {
		if _, err := tx.Exec(ctx, `UPDATE trips SET status=$2, updated_at=$3 WHERE id=$1`,
			related, models.TripCompleted, at); err != nil {
			return mapErr(err)
		}
	}
	if err := insertPayment(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
