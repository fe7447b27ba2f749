package services

import (
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVehicles(f *fleet) *VehicleService {
	s := NewVehicleService(f.st.Vehicles, f.st.Users)
	s.Clock = func() time.Time { return testNow }
	return s
}

func TestVehicleCreate(t *testing.T) {
	f := newFleet(t)
	svc := newVehicles(f)

	v, err := svc.Create(f.ctx, f.manager, &models.VehicleRequest{VehicleNumber: " dha-22-4455 ", OwnerName: "Hasan"})
	require.NoError(t, err)

	assert.Equal(t, "DHA-22-4455", v.VehicleNumber)
	assert.Equal(t, f.manager.ID, v.ManagerID)
	assert.True(t, v.IsActive)
	assert.Equal(t, testNow, v.CreatedAt)

	_, err = svc.Create(f.ctx, f.manager, &models.VehicleRequest{VehicleNumber: "dha-11-2233"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestVehicleCreate_Validation(t *testing.T) {
	f := newFleet(t)
	other := &models.User{ID: "mgr2", Name: "Other", Role: models.RoleManager, IsActive: true}
	foreign := &models.User{ID: "drv2", Name: "Foreign", Role: models.RoleDriver, AssignedManagerID: "mgr2", IsActive: true}
	require.NoError(t, f.st.Users.Create(f.ctx, other))
	require.NoError(t, f.st.Users.Create(f.ctx, foreign))
	svc := newVehicles(f)

	tests := []struct {
		name string
		req  models.VehicleRequest
	}{
		{"empty number", models.VehicleRequest{VehicleNumber: "  "}},
		{"bad expiry", models.VehicleRequest{VehicleNumber: "X-1", FitnessExpiry: "10/05/2024"}},
		{"not a driver", models.VehicleRequest{VehicleNumber: "X-1", DriverID: f.sub.ID}},
		{"unknown driver", models.VehicleRequest{VehicleNumber: "X-1", DriverID: "ghost"}},
		{"driver of another manager", models.VehicleRequest{VehicleNumber: "X-1", DriverID: foreign.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(f.ctx, f.manager, &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestVehicleVisibility(t *testing.T) {
	f := newFleet(t)
	other := &models.User{ID: "mgr2", Name: "Other", Role: models.RoleManager, IsActive: true}
	require.NoError(t, f.st.Users.Create(f.ctx, other))
	svc := newVehicles(f)
	theirs, err := svc.Create(f.ctx, other, &models.VehicleRequest{VehicleNumber: "CTG-1"})
	require.NoError(t, err)

	mine, err := svc.List(f.ctx, f.sub)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.vehicle.ID, mine[0].ID)

	all, err := svc.List(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Get(f.ctx, f.manager, theirs.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(f.ctx, f.manager, theirs.ID), store.ErrNotFound)
}

func TestVehicleUpdateAndDelete(t *testing.T) {
	f := newFleet(t)
	svc := newVehicles(f)
	inactive := false

	v, err := svc.Update(f.ctx, f.manager, f.vehicle.ID, &models.VehicleRequest{
		VehicleNumber: "DHA-11-2233", DriverID: f.driver.ID, IsActive: &inactive, TaxTokenExpiry: "2025-01-31",
	})
	require.NoError(t, err)
	assert.False(t, v.IsActive)
	assert.Equal(t, "2025-01-31", v.TaxTokenExpiry)

	require.NoError(t, svc.Delete(f.ctx, f.manager, f.vehicle.ID))
	_, err = f.st.Vehicles.Get(f.ctx, f.vehicle.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVehicleAlerts(t *testing.T) {
	f := newFleet(t)
	svc := newVehicles(f)
	_, err := svc.Create(f.ctx, f.manager, &models.VehicleRequest{
		VehicleNumber: "DHA-99", RoadPermitExpiry: "2024-05-09", TaxTokenExpiry: "2024-05-10",
	})
	require.NoError(t, err)

	alerts, err := svc.Alerts(f.ctx, f.manager)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "DHA-99", alerts[0].VehicleNumber)
	assert.True(t, alerts[0].Documents.RoadPermitExpired)
	assert.False(t, alerts[0].Documents.TaxTokenExpired, "expiring today is still valid")
}
