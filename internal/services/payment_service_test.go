package services

import (
	"testing"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment_RemainingDue(t *testing.T) {
	f := newFleet(t)
	trip := f.exportTrip(t)

	p, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{
		Payer:             "outside",
		CustomCompanyName: "Meghna Logistics",
		TripIDs:           []string{trip.ID, trip.ID, ""},
		Amount:            7000,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSingleTrip, p.PaymentType)
	assert.Equal(t, "Meghna Logistics", p.Payer)
	assert.Equal(t, []string{trip.ID}, p.TripIDs, "duplicates and blanks are dropped")
	assert.Equal(t, 5000.0, p.RemainingDue, "party due 12000 less 7000")
	assert.Equal(t, "2024-05-10", p.Date)
	assert.Equal(t, f.manager.ID, p.RecordedBy)
}

func TestCreatePayment_Validation(t *testing.T) {
	f := newFleet(t)
	foreign := &models.Trip{ID: "foreign", ManagerID: "someone-else"}
	require.NoError(t, f.st.Trips.Create(f.ctx, foreign))

	_, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{Amount: 10, Date: "2024-13-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{Amount: 10, TripIDs: []string{foreign.ID}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeletePayment_LeavesTripUnchanged(t *testing.T) {
	f := newFleet(t)
	trip := f.exportTrip(t)
	before, err := f.st.Trips.Get(f.ctx, trip.ID)
	require.NoError(t, err)

	p, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{
		PaymentType: models.PaymentDriverSettlement,
		TripIDs:     []string{trip.ID},
		Amount:      7000,
	})
	require.NoError(t, err)
	require.NoError(t, f.payments.Delete(f.ctx, f.manager, p.ID))

	after, err := f.st.Trips.Get(f.ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.st.Payments.Get(f.ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListPayments_DriverSeesOwn(t *testing.T) {
	f := newFleet(t)
	trip := f.exportTrip(t)
	_, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{TripIDs: []string{trip.ID}, Amount: 500, Date: "2024-05-01"})
	require.NoError(t, err)
	_, err = f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{VehicleID: f.vehicle.ID, Amount: 300, Date: "2024-05-09"})
	require.NoError(t, err)
	_, err = f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{Amount: 100})
	require.NoError(t, err)

	mine, err := f.payments.List(f.ctx, f.driver)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2024-05-09", mine[0].Date)

	all, err := f.payments.List(f.ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListPayments_ManagerLedgerLeavesOutSalaries(t *testing.T) {
	f := newFleet(t)
	_, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{VehicleID: f.vehicle.ID, Amount: 300, Date: "2024-05-09"})
	require.NoError(t, err)
	_, salary, err := f.salaries.Settle(f.ctx, f.manager, f.driver.ID, "2024-05")
	require.NoError(t, err)
	require.NotNil(t, salary)

	ledger, err := f.payments.List(f.ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.NotEqual(t, models.PaymentSalary, ledger[0].PaymentType)

	mine, err := f.payments.List(f.ctx, f.driver)
	require.NoError(t, err)
	assert.Len(t, mine, 2, "drivers still see their salary payment")

	all, err := f.payments.List(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRemainingDue_MayGoNegative(t *testing.T) {
	trips := []*models.Trip{
		{PartyFare: 10000, PartyAdvanceAmount: 4000},
		{PartyFare: 2000},
	}

	assert.Equal(t, 0.0, RemainingDue(trips, 8000))
	assert.Equal(t, -500.0, RemainingDue(trips, 8500))
	assert.Equal(t, -100.0, RemainingDue(nil, 100))
}
