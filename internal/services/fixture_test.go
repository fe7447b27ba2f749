package services

import (
	"context"
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/store/memory"
	"fleet-backend/internal/timeutil"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, timeutil.BST)

// fleet is a manager with one driver, one vehicle and two sub-managers, all
// services wired against the same in-memory store and a pinned clock.
type fleet struct {
	ctx context.Context
	st  *store.Store

	admin   *models.User
	manager *models.User
	driver  *models.User
	sub     *models.User
	ujala   *models.User
	vehicle *models.Vehicle

	trips    *TripService
	payments *PaymentService
	salaries *SalaryService
	chat     *ChatService
	requests *RequestService
}

func newFleet(t *testing.T) *fleet {
	t.Helper()
	ctx := context.Background()
	st := memory.New().Store()
	clock := func() time.Time { return testNow }

	f := &fleet{
		ctx:     ctx,
		st:      st,
		admin:   &models.User{ID: "admin", Name: "Admin", Role: models.RoleSuperAdmin, IsActive: true},
		manager: &models.User{ID: "mgr", Name: "Karim", Email: "karim@fleet.com", Role: models.RoleManager, IsActive: true},
		driver:  &models.User{ID: "drv", Name: "Rahim", Phone: "01700000001", Role: models.RoleDriver, AssignedManagerID: "mgr", IsActive: true},
		sub: &models.User{ID: "sub", Name: "Selim", Role: models.RoleSubManager, SubManagerType: models.SubManagerExport,
			AssignedManagerID: "mgr", IsActive: true},
		ujala: &models.User{ID: "ujala", Name: "Jamal", Role: models.RoleUjalaManager, AssignedManagerID: "mgr", IsActive: true},
	}
	for _, u := range []*models.User{f.admin, f.manager, f.driver, f.sub, f.ujala} {
		require.NoError(t, st.Users.Create(ctx, u))
	}
	f.vehicle = &models.Vehicle{ID: "veh", VehicleNumber: "DHA-11-2233", ManagerID: "mgr", DriverID: "drv", IsActive: true}
	require.NoError(t, st.Vehicles.Create(ctx, f.vehicle))

	f.trips = NewTripService(st, nil)
	f.trips.Clock = clock
	f.payments = NewPaymentService(st, nil)
	f.payments.Clock = clock
	f.salaries = NewSalaryService(st, f.payments)
	f.salaries.Clock = clock
	f.chat = NewChatService(st.Messages, st.Users, nil, nil)
	f.chat.Clock = clock
	f.requests = NewRequestService(st, f.trips, f.payments, f.chat, nil)
	f.requests.Clock = clock
	return f
}

func amount(v float64) *float64 { return &v }

// exportTrip logs the 12000 package EXPORT trip with 3000 + 2000 advanced
func (f *fleet) exportTrip(t *testing.T) *models.TripView {
	t.Helper()
	trip, err := f.trips.Create(f.ctx, f.manager, &models.TripRequestBody{
		VehicleID:            f.vehicle.ID,
		MovementStatus:       models.MovementExport,
		LoadingPoint:         "Chittagong Port",
		UnloadingPoint:       "Gazipur",
		Date:                 "2024-05-08",
		PartyFare:            15000,
		PackageAmount:        amount(12000),
		PartyAdvanceAmount:   3000,
		CompanyAdvanceAmount: 2000,
		RentCompany:          "Ujala Transport",
	})
	require.NoError(t, err)
	return trip
}
