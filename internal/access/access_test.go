package access

import (
	"fmt"
	"testing"

	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() ([]*models.User, []*models.Trip, []*models.Vehicle, []*models.Payment) {
	users := []*models.User{
		{ID: "admin", Role: models.RoleSuperAdmin},
		{ID: "m1", Role: models.RoleManager},
		{ID: "m2", Role: models.RoleManager},
		{ID: "d1", Role: models.RoleDriver, AssignedManagerID: "m1"},
		{ID: "d2", Role: models.RoleDriver, AssignedManagerID: "m1"},
		{ID: "d3", Role: models.RoleDriver, AssignedManagerID: "m2"},
		{ID: "s1", Role: models.RoleSubManager, AssignedManagerID: "m1"},
		{ID: "u1", Role: models.RoleUjalaManager, AssignedManagerID: "m2"},
	}
	vehicles := []*models.Vehicle{
		{ID: "v1", ManagerID: "m1", DriverID: "d1"},
		{ID: "v2", ManagerID: "m1", DriverID: "d2"},
		{ID: "v3", ManagerID: "m2", DriverID: "d3"},
	}
	var trips []*models.Trip
	for i, v := range []string{"v1", "v2", "v3", "v1", "v3"} {
		var driver, manager string
		for _, vv := range vehicles {
			if vv.ID == v {
				driver, manager = vv.DriverID, vv.ManagerID
			}
		}
		trips = append(trips, &models.Trip{
			ID:        fmt.Sprintf("t%d", i),
			VehicleID: v,
			DriverID:  driver,
			ManagerID: manager,
			Date:      fmt.Sprintf("2024-05-%02d", 10-i),
		})
	}
	payments := []*models.Payment{
		{ID: "p1", RecordedBy: "m1", TripIDs: []string{"t0"}, Date: "2024-05-01"},
		{ID: "p2", RecordedBy: "m2", VehicleID: "v3", Date: "2024-05-02"},
		{ID: "p3", RecordedBy: "m1", TripIDs: []string{"t1"}, Date: "2024-05-03"},
	}
	return users, trips, vehicles, payments
}

func TestCan_TableIsKeyedByRole(t *testing.T) {
	assert.True(t, Can(models.RoleSuperAdmin, ManageManagers))
	assert.False(t, Can(models.RoleManager, ManageManagers))
	assert.True(t, Can(models.RoleManager, DeletePayments))
	assert.True(t, Can(models.RoleSuperAdmin, DeleteTrips))
	assert.False(t, Can(models.RoleSubManager, DeleteTrips))
	assert.True(t, Can(models.RoleSubManager, CreateTripRequests))
	assert.True(t, Can(models.RoleUjalaManager, CreatePaymentRequests))
	assert.True(t, Can(models.RoleDriver, UpdateTripStatus))
	assert.False(t, Can(models.RoleDriver, EditTrips))
	assert.False(t, Can(models.Role("GUEST"), Chat))
}

func TestCapabilities_ReturnsCopy(t *testing.T) {
	caps := Capabilities(models.RoleDriver)
	require.NotEmpty(t, caps)
	caps[0] = ManageManagers

	assert.False(t, Can(models.RoleDriver, ManageManagers))
}

func TestTrips_EveryReturnedRecordMatchesOwnership(t *testing.T) {
	users, trips, _, _ := fixture()

	for _, u := range users {
		got := Trips(u, trips)
		for _, tr := range got {
			switch u.Role {
			case models.RoleSuperAdmin:
			case models.RoleDriver:
				assert.Equal(t, u.ID, tr.DriverID, "user %s", u.ID)
			case models.RoleManager:
				assert.Equal(t, u.ID, tr.ManagerID, "user %s", u.ID)
			default:
				assert.Equal(t, u.AssignedManagerID, tr.ManagerID, "user %s", u.ID)
			}
		}
	}

	assert.Len(t, Trips(users[0], trips), len(trips))
	assert.Len(t, Trips(users[1], trips), 3)
	assert.Len(t, Trips(users[3], trips), 2)
}

func TestTrips_UnassignedUserSeesNothing(t *testing.T) {
	_, trips, _, _ := fixture()

	got := Trips(&models.User{ID: "s9", Role: models.RoleSubManager}, trips)

	assert.Empty(t, got)
}

func TestVehicles_ScopedByRole(t *testing.T) {
	users, _, vehicles, _ := fixture()

	assert.Len(t, Vehicles(users[0], vehicles), 3)
	for _, v := range Vehicles(users[2], vehicles) {
		assert.Equal(t, "m2", v.ManagerID)
	}
	got := Vehicles(users[3], vehicles)
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)
	for _, v := range Vehicles(users[6], vehicles) {
		assert.Equal(t, "m1", v.ManagerID)
	}
}

func TestPayments_DriverSeesOwnTripsOrVehicle(t *testing.T) {
	users, trips, vehicles, payments := fixture()

	d1 := Payments(users[3], payments, trips, vehicles)
	require.Len(t, d1, 1)
	assert.Equal(t, "p1", d1[0].ID)

	d3 := Payments(users[5], payments, trips, vehicles)
	require.Len(t, d3, 1)
	assert.Equal(t, "p2", d3[0].ID)

	for _, p := range Payments(users[1], payments, trips, vehicles) {
		assert.Equal(t, "m1", p.RecordedBy)
	}
	for _, p := range Payments(users[7], payments, trips, vehicles) {
		assert.Equal(t, "m2", p.RecordedBy)
	}
}

func TestDriversAndSubManagersOf(t *testing.T) {
	users, _, _, _ := fixture()

	drivers := DriversOf("m1", users)
	require.Len(t, drivers, 2)
	for _, d := range drivers {
		assert.Equal(t, models.RoleDriver, d.Role)
		assert.Equal(t, "m1", d.AssignedManagerID)
	}

	subs := SubManagersOf("m2", users)
	require.Len(t, subs, 1)
	assert.Equal(t, "u1", subs[0].ID)

	assert.Len(t, Managers(users), 2)
}

func TestTripRequests_ManagerSeesTeam(t *testing.T) {
	users, _, _, _ := fixture()
	reqs := []*models.TripRequest{
		{ID: "r1", SubManagerID: "s1"},
		{ID: "r2", SubManagerID: "u1"},
	}

	got := TripRequests(users[1], reqs, users)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)

	own := TripRequests(users[7], reqs, users)
	require.Len(t, own, 1)
	assert.Equal(t, "r2", own[0].ID)
}

func TestSortTripsByDateDesc_TiesKeepLatestInsertFirst(t *testing.T) {
	trips := []*models.Trip{
		{ID: "a", Date: "2024-05-01"},
		{ID: "b", Date: "2024-05-03"},
		{ID: "c", Date: "2024-05-01"},
		{ID: "d", Date: "2024-05-02"},
	}

	SortTripsByDateDesc(trips)

	var ids []string
	for _, tr := range trips {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
}
