package services

import (
	"context"
	"sort"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/dues"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"
)

const (
	adminRecentLimit   = 8
	managerRecentLimit = 5
	newDueDays         = 2
	baseLocation       = "Base"
	noVehicle          = "Not Assigned"
)

// DashboardService builds the read-only per-role overviews
type DashboardService struct {
	Users    store.UserStore
	Vehicles store.VehicleStore
	Trips    *TripService
	Payments *PaymentService
	Salaries *SalaryService
	Requests *RequestService
	Clock    timeutil.Clock
}

func NewDashboardService(st *store.Store, trips *TripService, payments *PaymentService, salaries *SalaryService, requests *RequestService) *DashboardService {
	return &DashboardService{
		Users:    st.Users,
		Vehicles: st.Vehicles,
		Trips:    trips,
		Payments: payments,
		Salaries: salaries,
		Requests: requests,
	}
}

// IsUjala reports whether a rent company is the Ujala counterparty
func IsUjala(company string) bool {
	name := strings.ToLower(company)
	return strings.Contains(name, "ujala") || strings.Contains(name, "উজালা")
}

// recentTrips returns the last n inserted trips visible to viewer, latest first
func (s *DashboardService) recentTrips(ctx context.Context, viewer *models.User, n int) ([]*models.TripView, []*models.Trip, error) {
	all, err := s.Trips.Trips.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	visible := access.Trips(viewer, all)
	names, err := s.Trips.lookup(ctx)
	if err != nil {
		return nil, nil, err
	}
	recent := make([]*models.TripView, 0, n)
	for i := len(visible) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, names.view(visible[i]))
	}
	return recent, visible, nil
}

func (s *DashboardService) recentPayments(ctx context.Context, viewer *models.User, n int) ([]*models.Payment, error) {
	payments, trips, vehicles, err := s.Payments.collections(ctx)
	if err != nil {
		return nil, err
	}
	visible := access.Payments(viewer, payments, trips, vehicles)
	recent := make([]*models.Payment, 0, n)
	for i := len(visible) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, visible[i])
	}
	return recent, nil
}

func (s *DashboardService) Admin(ctx context.Context, admin *models.User) (*models.AdminDashboard, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	recentTrips, trips, err := s.recentTrips(ctx, admin, adminRecentLimit)
	if err != nil {
		return nil, err
	}
	recentPayments, err := s.recentPayments(ctx, admin, adminRecentLimit)
	if err != nil {
		return nil, err
	}

	d := &models.AdminDashboard{
		ManagerCount:   len(access.Managers(users)),
		DriverCount:    len(access.DriversOf("", users)),
		VehicleCount:   len(vehicles),
		RecentTrips:    recentTrips,
		RecentPayments: recentPayments,
	}
	for _, t := range trips {
		d.TotalPartyDue += dues.PartyDue(t)
	}
	return d, nil
}

func (s *DashboardService) Manager(ctx context.Context, manager *models.User) (*models.ManagerDashboard, error) {
	recentTrips, trips, err := s.recentTrips(ctx, manager, managerRecentLimit)
	if err != nil {
		return nil, err
	}
	recentPayments, err := s.recentPayments(ctx, manager, managerRecentLimit)
	if err != nil {
		return nil, err
	}
	names, err := s.Trips.lookup(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &models.ManagerDashboard{
		RunningTrips:   []*models.TripView{},
		RecentTrips:    recentTrips,
		RecentPayments: recentPayments,
		ExpiryAlerts:   ExpiryAlerts(access.Vehicles(manager, vehicles), timeutil.Today(clockNow(s.Clock))),
	}
	for _, t := range trips {
		if IsUjala(t.RentCompany) {
			d.UjalaPartyDue += dues.PartyDue(t)
		} else {
			d.OutsidePartyDue += dues.PartyDue(t)
		}
		d.TotalDriverPending += dues.DriverPending(t)
		if t.Status.InTransit() {
			d.RunningTrips = append(d.RunningTrips, names.view(t))
		}
	}
	return d, nil
}

// SubManager lists every visible vehicle with its latest trip, Unloaded vehicles first
func (s *DashboardService) SubManager(ctx context.Context, sub *models.User) (*models.SubManagerDashboard, error) {
	allVehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	allTrips, err := s.Trips.Trips.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	trips := access.Trips(sub, allTrips)
	access.SortTripsByDateDesc(trips)
	latest := make(map[string]*models.Trip)
	for _, t := range trips {
		if _, ok := latest[t.VehicleID]; !ok {
			latest[t.VehicleID] = t
		}
	}

	d := &models.SubManagerDashboard{Fleet: []models.FleetStatus{}}
	for _, v := range access.Vehicles(sub, allVehicles) {
		fs := models.FleetStatus{
			VehicleID:      v.ID,
			VehicleNumber:  v.VehicleNumber,
			DriverID:       v.DriverID,
			LastTripStatus: models.TripCompleted,
			LastMovement:   models.MovementInput,
			Location:       baseLocation,
		}
		if driver, ok := byID[v.DriverID]; ok {
			fs.DriverName = driver.Name
			fs.DriverPhone = driver.Phone
		}
		if t, ok := latest[v.ID]; ok {
			fs.LastTripStatus = t.Status
			fs.LastMovement = t.MovementStatus
			if t.UnloadingPoint != "" {
				fs.Location = t.UnloadingPoint
			}
		}
		if fs.LastTripStatus == models.TripUnloaded {
			d.UnloadedCount++
		}
		d.Fleet = append(d.Fleet, fs)
	}
	sort.SliceStable(d.Fleet, func(i, j int) bool {
		a, b := d.Fleet[i], d.Fleet[j]
		au, bu := a.LastTripStatus == models.TripUnloaded, b.LastTripStatus == models.TripUnloaded
		if au != bu {
			return au
		}
		return a.VehicleNumber < b.VehicleNumber
	})

	reqs, err := s.Requests.ListTripRequests(ctx, sub)
	if err != nil {
		return nil, err
	}
	for _, r := range reqs {
		if r.Pending() {
			d.PendingRequests++
		}
	}
	return d, nil
}

// Ujala groups trips with an outstanding party due by counterparty and leg
func (s *DashboardService) Ujala(ctx context.Context, viewer *models.User) (*models.UjalaDashboard, error) {
	trips, err := s.Trips.List(ctx, viewer, models.TripFilter{})
	if err != nil {
		return nil, err
	}
	now := clockNow(s.Clock)

	d := &models.UjalaDashboard{Ujala: emptyGroup(), Outside: emptyGroup()}
	for _, t := range trips {
		if t.PartyDue <= 0 {
			continue
		}
		group := &d.Outside
		if IsUjala(t.RentCompany) {
			group = &d.Ujala
		}
		days := timeutil.DaysBetween(t.Date, now)
		entry := models.DueEntry{TripView: t, New: days >= -newDueDays && days <= newDueDays}
		if t.MovementStatus == models.MovementExport {
			group.Export = append(group.Export, entry)
			group.ExportTotal += t.PartyDue
		} else {
			group.Import = append(group.Import, entry)
			group.ImportTotal += t.PartyDue
		}
		group.Total += t.PartyDue
	}
	d.GrandTotal = d.Ujala.Total + d.Outside.Total
	return d, nil
}

func emptyGroup() models.DueGroup {
	return models.DueGroup{Export: []models.DueEntry{}, Import: []models.DueEntry{}}
}

func (s *DashboardService) Driver(ctx context.Context, driver *models.User) (*models.DriverDashboard, error) {
	trips, err := s.Trips.List(ctx, driver, models.TripFilter{})
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments.List(ctx, driver)
	if err != nil {
		return nil, err
	}
	salary, err := s.Salaries.Record(ctx, driver, driver.ID, "")
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &models.DriverDashboard{
		Trips:    trips,
		Payments: payments,
		Salary:   salary,
	}
	for _, t := range trips {
		d.TotalPending += t.DriverPending
		if d.ActiveTrip == nil && t.Status != models.TripCompleted {
			d.ActiveTrip = t
		}
	}
	if mine := access.Vehicles(driver, vehicles); len(mine) > 0 {
		d.Vehicle = mine[0]
	}
	return d, nil
}

// FleetExplorer is the admin search over managers, drivers and vehicles
func (s *DashboardService) FleetExplorer(ctx context.Context, tab, query string) (*models.FleetExplorer, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	trips, err := s.Trips.Trips.List(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(query))
	match := func(text string) bool { return term == "" || strings.Contains(strings.ToLower(text), term) }
	want := func(name string) bool { return tab == "" || tab == name }
	today := timeutil.Today(clockNow(s.Clock))

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	out := &models.FleetExplorer{}
	if want("managers") {
		out.Managers = []models.ManagerSummary{}
		for _, m := range access.Managers(users) {
			if !match(m.Name) {
				continue
			}
			sum := models.ManagerSummary{User: m, DriverCount: len(access.DriversOf(m.ID, users))}
			for _, v := range vehicles {
				if v.ManagerID == m.ID {
					sum.VehicleCount++
				}
			}
			out.Managers = append(out.Managers, sum)
		}
	}
	if want("drivers") {
		out.Drivers = []models.DriverSummary{}
		for _, d := range access.DriversOf("", users) {
			if !match(d.Name) {
				continue
			}
			sum := models.DriverSummary{User: d}
			for _, t := range trips {
				if t.DriverID == d.ID {
					sum.TripCount++
					sum.TotalPending += dues.DriverPending(t)
				}
			}
			out.Drivers = append(out.Drivers, sum)
		}
	}
	if want("vehicles") {
		out.Vehicles = []models.VehicleSummary{}
		for _, v := range vehicles {
			if !match(v.VehicleNumber) {
				continue
			}
			out.Vehicles = append(out.Vehicles, models.VehicleSummary{
				Vehicle:    v,
				DriverName: names[v.DriverID],
				Documents:  v.Documents(today),
			})
		}
	}
	return out, nil
}

// ProfileStats summarises the user's own numbers for the profile page
func (s *DashboardService) ProfileStats(ctx context.Context, user *models.User) (*models.ProfileStats, error) {
	all, err := s.Trips.Trips.List(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.ProfileStats{Role: user.Role}
	switch user.Role {
	case models.RoleDriver:
		mine := access.Trips(user, all)
		stats.TripCount = len(mine)
		for _, t := range mine {
			stats.TotalPending += dues.DriverPending(t)
		}
		stats.VehicleNumber = noVehicle
		if v := access.Vehicles(user, vehicles); len(v) > 0 {
			stats.VehicleNumber = v[0].VehicleNumber
		}
	case models.RoleManager:
		users, err := s.Users.List(ctx)
		if err != nil {
			return nil, err
		}
		stats.DriverCount = len(access.DriversOf(user.ID, users))
		stats.FleetSize = len(access.Vehicles(user, vehicles))
		mine := access.Trips(user, all)
		stats.TripCount = len(mine)
		for _, t := range mine {
			if t.Status != models.TripCompleted {
				stats.ActiveTrips++
			}
		}
	default:
		stats.TripCount = len(access.Trips(user, all))
	}
	return stats, nil
}
