package access

import (
	"sort"

	"fleet-backend/internal/models"
)

// ManagerScope returns the manager whose records the user works within.
// Empty means unrestricted (super admin).
func ManagerScope(u *models.User) string {
	switch u.Role {
	case models.RoleSuperAdmin:
		return ""
	case models.RoleManager:
		return u.ID
	default:
		return u.AssignedManagerID
	}
}

func filter[T any](in []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Managers returns every MANAGER account
func Managers(users []*models.User) []*models.User {
	return filter(users, func(u *models.User) bool { return u.Role == models.RoleManager })
}

// DriversOf returns drivers assigned to managerID. An empty managerID returns all drivers.
func DriversOf(managerID string, users []*models.User) []*models.User {
	return filter(users, func(u *models.User) bool {
		return u.Role == models.RoleDriver && (managerID == "" || u.AssignedManagerID == managerID)
	})
}

// SubManagersOf returns sub-managers and Ujala managers assigned to managerID.
func SubManagersOf(managerID string, users []*models.User) []*models.User {
	return filter(users, func(u *models.User) bool {
		isSub := u.Role == models.RoleSubManager || u.Role == models.RoleUjalaManager
		return isSub && (managerID == "" || u.AssignedManagerID == managerID)
	})
}

// Trips returns the trips visible to viewer
func Trips(viewer *models.User, trips []*models.Trip) []*models.Trip {
	if viewer.Role == models.RoleDriver {
		return filter(trips, func(t *models.Trip) bool { return t.DriverID == viewer.ID })
	}
	if viewer.Role == models.RoleSuperAdmin {
		return filter(trips, func(*models.Trip) bool { return true })
	}
	scope := ManagerScope(viewer)
	return filter(trips, func(t *models.Trip) bool { return scope != "" && t.ManagerID == scope })
}

// Vehicles returns the vehicles visible to viewer
func Vehicles(viewer *models.User, vehicles []*models.Vehicle) []*models.Vehicle {
	if viewer.Role == models.RoleDriver {
		return filter(vehicles, func(v *models.Vehicle) bool { return v.DriverID == viewer.ID })
	}
	if viewer.Role == models.RoleSuperAdmin {
		return filter(vehicles, func(*models.Vehicle) bool { return true })
	}
	scope := ManagerScope(viewer)
	return filter(vehicles, func(v *models.Vehicle) bool { return scope != "" && v.ManagerID == scope })
}

// Payments returns the payments visible to viewer. Drivers see payments tied
// to one of their trips or to their vehicle.
func Payments(viewer *models.User, payments []*models.Payment, trips []*models.Trip, vehicles []*models.Vehicle) []*models.Payment {
	switch viewer.Role {
	case models.RoleSuperAdmin:
		return filter(payments, func(*models.Payment) bool { return true })
	case models.RoleDriver:
		mine := make(map[string]bool)
		for _, t := range trips {
			if t.DriverID == viewer.ID {
				mine[t.ID] = true
			}
		}
		for _, v := range vehicles {
			if v.DriverID == viewer.ID {
				mine[v.ID] = true
			}
		}
		return filter(payments, func(p *models.Payment) bool {
			if p.VehicleID != "" && mine[p.VehicleID] {
				return true
			}
			for _, id := range p.TripIDs {
				if mine[id] {
					return true
				}
			}
			return false
		})
	}
	scope := ManagerScope(viewer)
	return filter(payments, func(p *models.Payment) bool { return scope != "" && p.RecordedBy == scope })
}

// TripRequests: sub-managers see their own, managers see those raised by their sub-managers.
func TripRequests(viewer *models.User, reqs []*models.TripRequest, users []*models.User) []*models.TripRequest {
	switch viewer.Role {
	case models.RoleSuperAdmin:
		return filter(reqs, func(*models.TripRequest) bool { return true })
	case models.RoleManager:
		team := idSet(SubManagersOf(viewer.ID, users))
		return filter(reqs, func(r *models.TripRequest) bool { return team[r.SubManagerID] })
	}
	return filter(reqs, func(r *models.TripRequest) bool { return r.SubManagerID == viewer.ID })
}

// PaymentRequests follows the same rule as TripRequests
func PaymentRequests(viewer *models.User, reqs []*models.PaymentRequest, users []*models.User) []*models.PaymentRequest {
	switch viewer.Role {
	case models.RoleSuperAdmin:
		return filter(reqs, func(*models.PaymentRequest) bool { return true })
	case models.RoleManager:
		team := idSet(SubManagersOf(viewer.ID, users))
		return filter(reqs, func(r *models.PaymentRequest) bool { return team[r.RequesterID] })
	}
	return filter(reqs, func(r *models.PaymentRequest) bool { return r.RequesterID == viewer.ID })
}

func idSet(users []*models.User) map[string]bool {
	set := make(map[string]bool, len(users))
	for _, u := range users {
		set[u.ID] = true
	}
	return set
}

// SortTripsByDateDesc orders newest first. Input must be in insertion order;
// equal dates keep the later insertion first.
func SortTripsByDateDesc(trips []*models.Trip) {
	reverse(trips)
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].Date > trips[j].Date })
}

// SortPaymentsByDateDesc orders newest first with the same tie rule as trips
func SortPaymentsByDateDesc(payments []*models.Payment) {
	reverse(payments)
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].Date > payments[j].Date })
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
