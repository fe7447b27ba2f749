package repositories

import (
	"context"
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salaryCreated = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func salaryRow(id, driverID string, settled bool) []any {
	return []any{id, driverID, "2024-05", 5000.0, 0.0, settled, nil, salaryCreated}
}

func TestSalaryRepository_GetLoadsAdvances(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)

	mock.ExpectQuery("FROM salary_records WHERE driver_id").WithArgs("d1", "2024-05").
		WillReturnRows(pgxmock.NewRows(columns(salaryColumns)).AddRow(salaryRow("s1", "d1", false)...))
	mock.ExpectQuery("FROM salary_advances WHERE salary_id").WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "amount", "advance_date", "notes"}).
			AddRow("a1", 1500.0, "2024-05-03", models.DefaultAdvanceNotes).
			AddRow("a2", 2000.0, "2024-05-09", "Eid"))

	rec, err := repo.Get(context.Background(), "d1", "2024-05")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.ID)
	assert.Nil(t, rec.SettledAt)
	require.Len(t, rec.Advances, 2)
	assert.Equal(t, "Eid", rec.Advances[1].Notes)
}

func TestSalaryRepository_ListGivesEveryRecordAnAdvanceSlice(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)

	mock.ExpectQuery("FROM salary_records ORDER BY seq").
		WillReturnRows(pgxmock.NewRows(columns(salaryColumns)).
			AddRow(salaryRow("s1", "d1", false)...).
			AddRow(salaryRow("s2", "d2", true)...))
	mock.ExpectQuery("FROM salary_advances ORDER BY seq").
		WillReturnRows(pgxmock.NewRows([]string{"salary_id", "id", "amount", "advance_date", "notes"}).
			AddRow("s1", "a1", 1500.0, "2024-05-03", models.DefaultAdvanceNotes))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Advances, 1)
	require.NotNil(t, list[1].Advances, "advances serialise as [] not null")
	assert.Empty(t, list[1].Advances)
}

func TestSalaryRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)

	mock.ExpectExec("INSERT INTO salary_records").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.SalaryRecord{ID: "s9", DriverID: "d1", Month: "2024-05"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSalaryRepository_AddAdvance(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)
	advance := models.SalaryAdvance{ID: "a3", Amount: 800, Date: "2024-05-10", Notes: models.DefaultAdvanceNotes}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("d1", "2024-05").
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_settled"}).AddRow("s1", false))
	mock.ExpectExec("INSERT INTO salary_advances").
		WithArgs("a3", "s1", 800.0, "2024-05-10", models.DefaultAdvanceNotes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AddAdvance(context.Background(), "d1", "2024-05", advance))
}

func TestSalaryRepository_AddAdvanceToSettledMonth(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("d1", "2024-05").
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_settled"}).AddRow("s1", true))
	mock.ExpectRollback()

	err := repo.AddAdvance(context.Background(), "d1", "2024-05", models.SalaryAdvance{ID: "a4", Amount: 100})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSalaryRepository_Settle(t *testing.T) {
	mock := newMock(t)
	repo := NewSalaryRepository(mock)
	at := time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC)
	rec := &models.SalaryRecord{ID: "s1", DriverID: "d1", Month: "2024-05", BaseSalary: 5000,
		Advances: []models.SalaryAdvance{{ID: "a1", Amount: 1500}}, IsSettled: true, SettledAt: &at}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_settled FROM salary_records").WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"is_settled"}).AddRow(false))
	mock.ExpectQuery("SELECT count").WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE salary_records SET is_settled").WithArgs("s1", &at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Settle(context.Background(), rec, &models.Payment{ID: "p1", Amount: 3500}))
}

func TestSalaryRepository_SettleRefusesStaleRecord(t *testing.T) {
	tests := []struct {
		name     string
		settled  bool
		advances int
	}{
		{"already settled", true, 1},
		{"advance added since read", false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewSalaryRepository(mock)
			rec := &models.SalaryRecord{ID: "s1", Advances: []models.SalaryAdvance{{ID: "a1", Amount: 1500}}}

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT is_settled FROM salary_records").WithArgs("s1").
				WillReturnRows(pgxmock.NewRows([]string{"is_settled"}).AddRow(tt.settled))
			mock.ExpectQuery("SELECT count").WithArgs("s1").
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(tt.advances))
			mock.ExpectRollback()

			err := repo.Settle(context.Background(), rec, &models.Payment{ID: "p1"})
			assert.ErrorIs(t, err, store.ErrConflict)
		})
	}
}
