package services

import (
	"fmt"
	"testing"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTrip_DerivesPendingAndNumber(t *testing.T) {
	f := newFleet(t)

	trip := f.exportTrip(t)

	assert.Equal(t, fmt.Sprintf("TRP-%d", testNow.UnixMilli()), trip.TripNumber)
	assert.Equal(t, models.TripLoading, trip.Status)
	assert.Equal(t, f.manager.ID, trip.ManagerID)
	assert.Equal(t, f.driver.ID, trip.DriverID, "driver comes from the vehicle")
	assert.Equal(t, 5000.0, trip.TotalAdvancePaid)
	assert.Equal(t, 7000.0, trip.DriverPending)
	assert.Equal(t, 12000.0, trip.PartyDue)
	assert.Equal(t, "DHA-11-2233", trip.VehicleNumber)
	assert.Equal(t, "Rahim", trip.DriverName)
}

func TestCreateTrip_NumbersStayUniqueWithinOneMillisecond(t *testing.T) {
	f := newFleet(t)

	first := f.exportTrip(t)
	second := f.exportTrip(t)

	assert.NotEqual(t, first.TripNumber, second.TripNumber)
	assert.Equal(t, fmt.Sprintf("TRP-%d", testNow.UnixMilli()+1), second.TripNumber)
}

func TestCreateTrip_LocalTripUsesFareAsBase(t *testing.T) {
	f := newFleet(t)

	trip, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID:          f.vehicle.ID,
		TripType:           models.TripTypeLocal,
		LoadingPoint:       "Tongi",
		UnloadingPoint:     "Savar",
		PartyFare:          4000,
		PartyAdvanceAmount: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, models.MovementInput, trip.MovementStatus)
	assert.Equal(t, "2024-05-10", trip.Date)
	assert.Equal(t, 3000.0, trip.DriverPending)
}

func TestCreateTrip_RejectsBadInput(t *testing.T) {
	f := newFleet(t)
	other := &models.Vehicle{ID: "other", VehicleNumber: "X", ManagerID: "someone-else"}
	require.NoError(t, f.st.Vehicles.Create(f.ctx, other))

	cases := []struct {
		name string
		body models.TripRequestBody
	}{
		{"foreign vehicle", models.TripRequestBody{VehicleID: other.ID, LoadingPoint: "a", UnloadingPoint: "b"}},
		{"missing points", models.TripRequestBody{VehicleID: f.vehicle.ID}},
		{"bad movement", models.TripRequestBody{VehicleID: f.vehicle.ID, MovementStatus: "SIDEWAYS", LoadingPoint: "a", UnloadingPoint: "b"}},
		{"bad date", models.TripRequestBody{VehicleID: f.vehicle.ID, LoadingPoint: "a", UnloadingPoint: "b", Date: "10/05/2024"}},
		{"negative amount", models.TripRequestBody{VehicleID: f.vehicle.ID, LoadingPoint: "a", UnloadingPoint: "b", PartyFare: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			_, err := f.trips.Create(f.ctx, f.manager, &body)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestResolveRentCompany(t *testing.T) {
	assert.Equal(t, "Meghna Logistics", ResolveRentCompany("outside", "Meghna Logistics"))
	assert.Equal(t, "Meghna Logistics", ResolveRentCompany("বাহির", " Meghna Logistics "))
	assert.Equal(t, "outside", ResolveRentCompany("outside", ""))
	assert.Equal(t, "Ujala", ResolveRentCompany("Ujala", "ignored"))
}

func TestListTrips_FiltersAndScopes(t *testing.T) {
	f := newFleet(t)
	f.exportTrip(t)
	_, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID: f.vehicle.ID, LoadingPoint: "Tongi", UnloadingPoint: "Savar", Date: "2024-04-30",
	})
	require.NoError(t, err)

	all, err := f.trips.List(f.ctx, f.manager, models.TripFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-05-08", all[0].Date, "newest first")

	exports, err := f.trips.List(f.ctx, f.manager, models.TripFilter{Movement: models.MovementExport})
	require.NoError(t, err)
	assert.Len(t, exports, 1)

	april, err := f.trips.List(f.ctx, f.manager, models.TripFilter{Month: "2024-04"})
	require.NoError(t, err)
	assert.Len(t, april, 1)

	byDriver, err := f.trips.List(f.ctx, f.manager, models.TripFilter{Search: "rahim"})
	require.NoError(t, err)
	assert.Len(t, byDriver, 2)

	outsider := &models.User{ID: "m2", Role: models.RoleManager}
	none, err := f.trips.List(f.ctx, outsider, models.TripFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDriverStatus_FollowsTransitions(t *testing.T) {
	f := newFleet(t)
	trip := f.exportTrip(t)

	active, err := f.trips.ActiveTrip(f.ctx, f.driver)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, active.ID)

	_, err = f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripUnloaded)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	running, err := f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripRunning)
	require.NoError(t, err)
	assert.Equal(t, models.TripRunning, running.Status)

	_, err = f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition, "drivers cannot complete a trip")

	unloaded, err := f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripUnloaded)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", unloaded.UnloadingDate)

	_, err = f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripRunning)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDriverStatus_RepeatedDelayReport(t *testing.T) {
	f := newFleet(t)
	f.exportTrip(t)

	_, err := f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripRunning)
	require.NoError(t, err)
	_, err = f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripDelayed)
	require.NoError(t, err)

	again, err := f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripDelayed)
	require.NoError(t, err)
	assert.Equal(t, models.TripDelayed, again.Status)

	unloaded, err := f.trips.UpdateActiveStatus(f.ctx, f.driver, models.TripUnloaded)
	require.NoError(t, err)
	assert.Equal(t, models.TripUnloaded, unloaded.Status)
}

func TestActiveTrip_NoneWhenEverythingCompleted(t *testing.T) {
	f := newFleet(t)

	_, err := f.trips.ActiveTrip(f.ctx, f.driver)
	assert.ErrorIs(t, err, ErrNoActiveTrip)
}

func TestSettle_PaysPendingAndCompletesBothLegs(t *testing.T) {
	f := newFleet(t)
	input, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID: f.vehicle.ID, LoadingPoint: "Gazipur", UnloadingPoint: "Chittagong Port", Date: "2024-05-07",
	})
	require.NoError(t, err)
	export, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID:            f.vehicle.ID,
		MovementStatus:       models.MovementExport,
		LoadingPoint:         "Chittagong Port",
		UnloadingPoint:       "Gazipur",
		Date:                 "2024-05-08",
		PackageAmount:        amount(12000),
		PartyAdvanceAmount:   3000,
		CompanyAdvanceAmount: 2000,
		RelatedTripID:        input.ID,
	})
	require.NoError(t, err)

	payment, err := f.trips.Settle(f.ctx, f.manager, export.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentDriverSettlement, payment.PaymentType)
	assert.Equal(t, 7000.0, payment.Amount)
	assert.Equal(t, 0.0, payment.RemainingDue)
	assert.ElementsMatch(t, []string{export.ID, input.ID}, payment.TripIDs)

	for _, id := range []string{export.ID, input.ID} {
		got, err := f.st.Trips.Get(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.TripCompleted, got.Status)
	}

	_, err = f.trips.Settle(f.ctx, f.manager, export.ID)
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestSettle_Refusals(t *testing.T) {
	f := newFleet(t)
	input, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID: f.vehicle.ID, LoadingPoint: "a", UnloadingPoint: "b", PackageAmount: amount(9000),
	})
	require.NoError(t, err)
	paidUp, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID: f.vehicle.ID, MovementStatus: models.MovementExport, LoadingPoint: "a", UnloadingPoint: "b",
		PackageAmount: amount(5000), CompanyAdvanceAmount: 5000,
	})
	require.NoError(t, err)

	_, err = f.trips.Settle(f.ctx, f.manager, input.ID)
	assert.ErrorIs(t, err, ErrInvalidInput, "INPUT trips are not settled")

	_, err = f.trips.Settle(f.ctx, f.manager, paidUp.ID)
	assert.ErrorIs(t, err, ErrNothingToSettle)

	_, err = f.trips.Settle(f.ctx, f.manager, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTrip_KeepsPayments(t *testing.T) {
	f := newFleet(t)
	trip := f.exportTrip(t)
	payment, err := f.payments.Create(f.ctx, f.manager, &models.CreatePaymentRequest{
		TripIDs: []string{trip.ID}, Amount: 1000,
	})
	require.NoError(t, err)

	require.NoError(t, f.trips.Delete(f.ctx, f.manager, trip.ID))

	_, err = f.st.Trips.Get(f.ctx, trip.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.st.Payments.Get(f.ctx, payment.ID)
	assert.NoError(t, err)
}
