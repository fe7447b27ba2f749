package repositories

import (
	"context"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	DB DB
}

func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `id, payment_type, payer, vehicle_id, trip_ids, amount, remaining_due, payment_date,
	notes, recorded_by, created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.PaymentType, &p.Payer, &p.VehicleID, &p.TripIDs, &p.Amount, &p.RemainingDue,
		&p.Date, &p.Notes, &p.RecordedBy, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return insertPayment(ctx, r.DB, p)
}

func insertPayment(ctx context.Context, q querier, p *models.Payment) error {
	tripIDs := p.TripIDs
	if tripIDs == nil {
		tripIDs = []string{}
	}
	_, err := q.Exec(ctx,
		`INSERT INTO payments(id, payment_type, payer, vehicle_id, trip_ids, amount, remaining_due, payment_date,
			notes, recorded_by, created_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.PaymentType, p.Payer, p.VehicleID, tripIDs, p.Amount, p.RemainingDue, p.Date,
		p.Notes, p.RecordedBy, p.CreatedAt,
	)
	return mapErr(err)
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	return scanPayment(r.DB.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
}

func (r *PaymentRepository) List(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Delete removes only the payment row; trips it referenced keep their amounts
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return affected(r.DB.Exec(ctx, `DELETE FROM payments WHERE id=$1`, id))
}
