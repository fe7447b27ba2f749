package repositories

import (
	"context"
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripCreated = time.Date(2024, 5, 8, 9, 30, 0, 0, time.UTC)

func sampleTrip(id string) *models.Trip {
	return &models.Trip{
		ID:                   id,
		TripNumber:           "TRP-1715160600000",
		VehicleID:            "veh",
		DriverID:             "drv",
		ManagerID:            "mgr",
		MovementStatus:       models.MovementExport,
		TripType:             models.TripTypeInput,
		LoadingPoint:         "Chittagong Port",
		UnloadingPoint:       "Gazipur",
		Date:                 "2024-05-08",
		Status:               models.TripUnloaded,
		PartyFare:            15000,
		PackageAmount:        12000,
		PartyAdvanceAmount:   3000,
		CompanyAdvanceAmount: 2000,
		TotalAdvancePaid:     5000,
		RentCompany:          "Ujala Transport",
		CreatedAt:            tripCreated,
		UpdatedAt:            tripCreated,
	}
}

func tripValues(t *models.Trip) []any {
	return []any{t.ID, t.TripNumber, t.VehicleID, t.DriverID, t.ManagerID, t.MovementStatus, t.TripType,
		t.LoadingPoint, t.UnloadingPoint, t.Date, t.UnloadingDate, t.Status, t.PartyFare, t.PackageAmount,
		t.PartyAdvanceAmount, t.CompanyAdvanceAmount, t.TotalAdvancePaid, t.RentCompany, t.RelatedTripID, t.Notes,
		t.CreatedAt, t.UpdatedAt}
}

func TestTripRepository_CreateGetList(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)
	ctx := context.Background()
	trip := sampleTrip("t1")

	mock.ExpectExec("INSERT INTO trips").
		WithArgs(tripValues(trip)[:21]...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(ctx, trip))

	mock.ExpectQuery("FROM trips WHERE id").
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows(columns(tripColumns)).AddRow(tripValues(trip)...))
	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, trip, got)

	second := sampleTrip("t2")
	second.RelatedTripID = "t1"
	mock.ExpectQuery("FROM trips ORDER BY seq").
		WillReturnRows(pgxmock.NewRows(columns(tripColumns)).
			AddRow(tripValues(trip)...).
			AddRow(tripValues(second)...))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[1].ID)
	assert.Equal(t, "t1", list[1].RelatedTripID)
}

func TestTripRepository_NotFoundAndDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery("FROM trips WHERE id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectExec("UPDATE trips SET").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(ctx, sampleTrip("missing")), store.ErrNotFound)

	mock.ExpectExec("DELETE FROM trips").WithArgs("missing").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), store.ErrNotFound)

	mock.ExpectExec("INSERT INTO trips").WillReturnError(&pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, repo.Create(ctx, sampleTrip("t1")), store.ErrDuplicate)
}

func TestTripRepository_SettleCompletesLegsAndRecordsPayment(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)
	at := tripCreated.Add(48 * time.Hour)
	payment := &models.Payment{ID: "p1", PaymentType: models.PaymentDriverSettlement, TripIDs: []string{"export", "input"}, Amount: 7000}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE trips SET status").
		WithArgs("export", models.TripCompleted, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE trips SET status").
		WithArgs("input", models.TripCompleted, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Settle(context.Background(), "export", "input", payment, at))
}

func TestTripRepository_SettleTwiceIsConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)
	at := tripCreated

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE trips SET status").
		WithArgs("export", models.TripCompleted, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("export").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Settle(context.Background(), "export", "", &models.Payment{ID: "p2"}, at)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestTripRepository_SettleMissingTrip(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE trips SET status").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := repo.Settle(context.Background(), "ghost", "", &models.Payment{ID: "p3"}, tripCreated)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
