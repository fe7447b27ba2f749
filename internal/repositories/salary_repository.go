package repositories

import (
	"context"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/jackc/pgx/v5"
)

type SalaryRepository struct {
	DB DB
}

func NewSalaryRepository(db DB) *SalaryRepository {
	return &SalaryRepository{DB: db}
}

const salaryColumns = `id, driver_id, month, base_salary, bonus, is_settled, settled_at, created_at`

func scanSalary(row pgx.Row) (*models.SalaryRecord, error) {
	var s models.SalaryRecord
	err := row.Scan(&s.ID, &s.DriverID, &s.Month, &s.BaseSalary, &s.Bonus, &s.IsSettled, &s.SettledAt, &s.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	s.Advances = []models.SalaryAdvance{}
	return &s, nil
}

func (r *SalaryRepository) Get(ctx context.Context, driverID, month string) (*models.SalaryRecord, error) {
	s, err := scanSalary(r.DB.QueryRow(ctx,
		`SELECT `+salaryColumns+` FROM salary_records WHERE driver_id=$1 AND month=$2`, driverID, month))
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, amount, advance_date, notes FROM salary_advances WHERE salary_id=$1 ORDER BY seq`, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.SalaryAdvance
		if err := rows.Scan(&a.ID, &a.Amount, &a.Date, &a.Notes); err != nil {
			return nil, err
		}
		s.Advances = append(s.Advances, a)
	}
	return s, rows.Err()
}

func (r *SalaryRepository) Create(ctx context.Context, s *models.SalaryRecord) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO salary_records(id, driver_id, month, base_salary, bonus, is_settled, settled_at, created_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.DriverID, s.Month, s.BaseSalary, s.Bonus, s.IsSettled, s.SettledAt, s.CreatedAt,
	)
	return mapErr(err)
}

// AddAdvance locks the record row so it cannot be settled under the new advance
func (r *SalaryRepository) AddAdvance(ctx context.Context, driverID, month string, a models.SalaryAdvance) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var salaryID string
	var settled bool
	err = tx.QueryRow(ctx,
		`SELECT id, is_settled FROM salary_records WHERE driver_id=$1 AND month=$2 FOR UPDATE`, driverID, month,
	).Scan(&salaryID, &settled)
	if err != nil {
		return mapErr(err)
	}
	if settled {
		return store.ErrConflict
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO salary_advances(id, salary_id, amount, advance_date, notes) VALUES($1, $2, $3, $4, $5)`,
		a.ID, salaryID, a.Amount, a.Date, a.Notes,
	); err != nil {
		return mapErr(err)
	}
	return tx.Commit(ctx)
}

// Settle takes the same row lock as AddAdvance, then checks the record is still
// unsettled with the advances s was computed from before recording p.
func (r *SalaryRepository) Settle(ctx context.Context, s *models.SalaryRecord, p *models.Payment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var settled bool
	if err := tx.QueryRow(ctx, `SELECT is_settled FROM salary_records WHERE id=$1 FOR UPDATE`, s.ID).Scan(&settled); err != nil {
		return mapErr(err)
	}
	var advances int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM salary_advances WHERE salary_id=$1`, s.ID).Scan(&advances); err != nil {
		return mapErr(err)
	}
	if settled || advances != len(s.Advances) {
		return store.ErrConflict
	}

	if _, err := tx.Exec(ctx, `UPDATE salary_records SET is_settled=true, settled_at=$2 WHERE id=$1`,
		s.ID, s.SettledAt); err != nil {
		return mapErr(err)
	}
	if p != nil {
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *SalaryRepository) List(ctx context.Context) ([]*models.SalaryRecord, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+salaryColumns+` FROM salary_records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.SalaryRecord
	byID := make(map[string]*models.SalaryRecord)
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	advRows, err := r.DB.Query(ctx,
		`SELECT salary_id, id, amount, advance_date, notes FROM salary_advances ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer advRows.Close()

	for advRows.Next() {
		var salaryID string
		var a models.SalaryAdvance
		if err := advRows.Scan(&salaryID, &a.ID, &a.Amount, &a.Date, &a.Notes); err != nil {
			return nil, err
		}
		if s, ok := byID[salaryID]; ok {
			s.Advances = append(s.Advances, a)
		}
	}
	return records, advRows.Err()
}
