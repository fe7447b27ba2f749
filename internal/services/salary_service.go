package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/dues"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type SalaryService struct {
	Salaries store.SalaryStore
	Users    store.UserStore
	Vehicles store.VehicleStore
	Payments *PaymentService
	Clock    timeutil.Clock
}

func NewSalaryService(st *store.Store, payments *PaymentService) *SalaryService {
	return &SalaryService{
		Salaries: st.Salaries,
		Users:    st.Users,
		Vehicles: st.Vehicles,
		Payments: payments,
	}
}

func (s *SalaryService) month(month string) (string, error) {
	if month == "" {
		return timeutil.Month(clockNow(s.Clock)), nil
	}
	if !timeutil.ValidMonth(month) {
		return "", invalidf("month must be YYYY-MM")
	}
	return month, nil
}

// List returns one salary view per driver of viewer for month. Drivers without
// a stored record get the default one; nothing is written.
func (s *SalaryService) List(ctx context.Context, viewer *models.User, month string) ([]*models.SalaryView, error) {
	month, err := s.month(month)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	drivers := access.DriversOf(access.ManagerScope(viewer), users)
	views := make([]*models.SalaryView, 0, len(drivers))
	for _, d := range drivers {
		rec, err := s.Salaries.Get(ctx, d.ID, month)
		if errors.Is(err, store.ErrNotFound) {
			rec = s.blank(d.ID, month)
		} else if err != nil {
			return nil, err
		}
		v := dues.SalaryView(rec)
		v.DriverName = d.Name
		views = append(views, v)
	}
	return views, nil
}

// Record returns the driver's record for month, creating it on first access
func (s *SalaryService) Record(ctx context.Context, viewer *models.User, driverID, month string) (*models.SalaryView, error) {
	driver, month, err := s.driver(ctx, viewer, driverID, month)
	if err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, driver.ID, month)
	if err != nil {
		return nil, err
	}
	v := dues.SalaryView(rec)
	v.DriverName = driver.Name
	return v, nil
}

// AddAdvance appends an advance dated today to an unsettled record
func (s *SalaryService) AddAdvance(ctx context.Context, actor *models.User, driverID, month string, req *models.AddAdvanceRequest) (*models.SalaryView, error) {
	if req.Amount <= 0 {
		return nil, invalidf("amount must be positive")
	}
	driver, month, err := s.driver(ctx, actor, driverID, month)
	if err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, driver.ID, month)
	if err != nil {
		return nil, err
	}
	if rec.IsSettled {
		return nil, fmt.Errorf("%w: salary for %s", ErrAlreadySettled, month)
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = models.DefaultAdvanceNotes
	}
	advance := models.SalaryAdvance{
		ID:     uuid.NewString(),
		Amount: req.Amount,
		Date:   timeutil.Today(clockNow(s.Clock)),
		Notes:  notes,
	}
	if err := s.Salaries.AddAdvance(ctx, driver.ID, month, advance); err != nil {
		return nil, settledErr(err, month)
	}
	if rec, err = s.Salaries.Get(ctx, driver.ID, month); err != nil {
		return nil, err
	}

	log.Printf("[Salary] Advance %.2f to %s for %s", req.Amount, driver.Name, month)
	v := dues.SalaryView(rec)
	v.DriverName = driver.Name
	return v, nil
}

// Settle closes the month. A Salary payment is recorded when anything is left to pay.
func (s *SalaryService) Settle(ctx context.Context, actor *models.User, driverID, month string) (*models.SalaryView, *models.Payment, error) {
	driver, month, err := s.driver(ctx, actor, driverID, month)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.load(ctx, driver.ID, month)
	if err != nil {
		return nil, nil, err
	}
	if rec.IsSettled {
		return nil, nil, fmt.Errorf("%w: salary for %s", ErrAlreadySettled, month)
	}

	now := clockNow(s.Clock)
	var payment *models.Payment
	if net := dues.NetPayable(rec); net > 0 {
		payment = &models.Payment{
			ID:           uuid.NewString(),
			PaymentType:  models.PaymentSalary,
			VehicleID:    s.vehicleOf(ctx, driver.ID),
			TripIDs:      []string{},
			Amount:       net,
			RemainingDue: 0,
			Date:         timeutil.Today(now),
			Notes:        "Monthly Salary Settle - " + month,
			RecordedBy:   actor.ID,
			CreatedAt:    now,
		}
	}

	rec.IsSettled = true
	rec.SettledAt = &now
	if err := s.Salaries.Settle(ctx, rec, payment); err != nil {
		return nil, nil, settledErr(err, month)
	}
	if payment != nil {
		s.Payments.recorded(payment)
	}

	log.Printf("[Salary] %s settled %s for %s", actor.Name, driver.Name, month)
	v := dues.SalaryView(rec)
	v.DriverName = driver.Name
	return v, payment, nil
}

// driver checks that viewer may see driverID's salary: drivers their own,
// managers their drivers, the super admin anyone.
func (s *SalaryService) driver(ctx context.Context, viewer *models.User, driverID, month string) (*models.User, string, error) {
	month, err := s.month(month)
	if err != nil {
		return nil, "", err
	}
	d, err := s.Users.Get(ctx, driverID)
	if err != nil {
		return nil, "", err
	}
	if d.Role != models.RoleDriver {
		return nil, "", store.ErrNotFound
	}
	switch viewer.Role {
	case models.RoleSuperAdmin:
	case models.RoleDriver:
		if d.ID != viewer.ID {
			return nil, "", store.ErrNotFound
		}
	default:
		if d.AssignedManagerID != access.ManagerScope(viewer) {
			return nil, "", store.ErrNotFound
		}
	}
	return d, month, nil
}

func (s *SalaryService) load(ctx context.Context, driverID, month string) (*models.SalaryRecord, error) {
	rec, err := s.Salaries.Get(ctx, driverID, month)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	rec = s.blank(driverID, month)
	err = s.Salaries.Create(ctx, rec)
	if errors.Is(err, store.ErrDuplicate) {
		return s.Salaries.Get(ctx, driverID, month)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// settledErr reports a record settled or changed since it was read as settled
func settledErr(err error, month string) error {
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%w: salary for %s", ErrAlreadySettled, month)
	}
	return err
}

func (s *SalaryService) blank(driverID, month string) *models.SalaryRecord {
	return &models.SalaryRecord{
		ID:         uuid.NewString(),
		DriverID:   driverID,
		Month:      month,
		BaseSalary: models.BaseSalary,
		Advances:   []models.SalaryAdvance{},
		CreatedAt:  clockNow(s.Clock),
	}
}

// vehicleOf returns the vehicle the driver is assigned to, so the payment shows up for them
func (s *SalaryService) vehicleOf(ctx context.Context, driverID string) string {
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return ""
	}
	for _, v := range vehicles {
		if v.DriverID == driverID {
			return v.ID
		}
	}
	return ""
}
