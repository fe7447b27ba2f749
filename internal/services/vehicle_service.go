package services

import (
	"context"
	"fmt"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type VehicleService struct {
	Vehicles store.VehicleStore
	Users    store.UserStore
	Clock    timeutil.Clock
}

func NewVehicleService(vehicles store.VehicleStore, users store.UserStore) *VehicleService {
	return &VehicleService{Vehicles: vehicles, Users: users}
}

// List returns the vehicles visible to viewer in insertion order
func (s *VehicleService) List(ctx context.Context, viewer *models.User) ([]*models.Vehicle, error) {
	all, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.Vehicles(viewer, all), nil
}

// Get returns a vehicle if viewer may see it
func (s *VehicleService) Get(ctx context.Context, viewer *models.User, id string) (*models.Vehicle, error) {
	v, err := s.Vehicles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(access.Vehicles(viewer, []*models.Vehicle{v})) == 0 {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *VehicleService) Create(ctx context.Context, actor *models.User, req *models.VehicleRequest) (*models.Vehicle, error) {
	now := clockNow(s.Clock)
	v := &models.Vehicle{
		ID:        uuid.NewString(),
		ManagerID: actor.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, actor, v, req); err != nil {
		return nil, err
	}
	if err := s.Vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	log.Printf("[Vehicles] %s registered %s", actor.Name, v.VehicleNumber)
	return v, nil
}

func (s *VehicleService) Update(ctx context.Context, actor *models.User, id string, req *models.VehicleRequest) (*models.Vehicle, error) {
	v, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, v, req); err != nil {
		return nil, err
	}
	v.UpdatedAt = clockNow(s.Clock)
	if err := s.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VehicleService) Delete(ctx context.Context, actor *models.User, id string) error {
	v, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Vehicles.Delete(ctx, v.ID); err != nil {
		return err
	}
	log.Printf("[Vehicles] %s deleted %s", actor.Name, v.VehicleNumber)
	return nil
}

// Alerts lists vehicles visible to viewer with at least one expired document
func (s *VehicleService) Alerts(ctx context.Context, viewer *models.User) ([]models.VehicleAlert, error) {
	vehicles, err := s.List(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return ExpiryAlerts(vehicles, timeutil.Today(clockNow(s.Clock))), nil
}

// ExpiryAlerts keeps the vehicles with an expired tax token, fitness or road permit
func ExpiryAlerts(vehicles []*models.Vehicle, today string) []models.VehicleAlert {
	alerts := []models.VehicleAlert{}
	for _, v := range vehicles {
		docs := v.Documents(today)
		if docs.Any() {
			alerts = append(alerts, models.VehicleAlert{
				VehicleID:     v.ID,
				VehicleNumber: v.VehicleNumber,
				Documents:     docs,
			})
		}
	}
	return alerts
}

func (s *VehicleService) apply(ctx context.Context, actor *models.User, v *models.Vehicle, req *models.VehicleRequest) error {
	number := strings.ToUpper(strings.TrimSpace(req.VehicleNumber))
	if number == "" {
		return invalidf("vehicle_number is required")
	}
	for _, d := range []struct{ field, value string }{
		{"tax_token_expiry", req.TaxTokenExpiry},
		{"fitness_expiry", req.FitnessExpiry},
		{"road_permit_expiry", req.RoadPermitExpiry},
	} {
		if d.value != "" && !timeutil.ValidDate(d.value) {
			return invalidf("%s must be YYYY-MM-DD", d.field)
		}
	}

	existing, err := s.Vehicles.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != v.ID && strings.EqualFold(other.VehicleNumber, number) {
			return fmt.Errorf("%w: vehicle %s already registered", store.ErrDuplicate, number)
		}
	}

	if req.DriverID != "" {
		driver, err := s.Users.Get(ctx, req.DriverID)
		if err != nil || driver.Role != models.RoleDriver {
			return invalidf("driver_id does not name a driver")
		}
		if scope := access.ManagerScope(actor); scope != "" && driver.AssignedManagerID != scope {
			return invalidf("driver is assigned to another manager")
		}
	}

	v.VehicleNumber = number
	v.OwnerName = strings.TrimSpace(req.OwnerName)
	v.DriverID = req.DriverID
	v.TaxTokenExpiry = req.TaxTokenExpiry
	v.FitnessExpiry = req.FitnessExpiry
	v.RoadPermitExpiry = req.RoadPermitExpiry
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	return nil
}
