// Package access holds the role capability table and the role-scoped record filters.
package access

import "fleet-backend/internal/models"

type Action string

const (
	ManageManagers        Action = "manage_managers"
	ManageSettings        Action = "manage_settings"
	RunBackup             Action = "run_backup"
	ExploreFleet          Action = "explore_fleet"
	ManageDrivers         Action = "manage_drivers"
	ManageSubManagers     Action = "manage_sub_managers"
	ViewVehicles          Action = "view_vehicles"
	ManageVehicles        Action = "manage_vehicles"
	ViewTrips             Action = "view_trips"
	CreateTrips           Action = "create_trips"
	EditTrips             Action = "edit_trips"
	DeleteTrips           Action = "delete_trips"
	UpdateTripStatus      Action = "update_trip_status"
	SettleTrips           Action = "settle_trips"
	CreateTripRequests    Action = "create_trip_requests"
	CreatePaymentRequests Action = "create_payment_requests"
	ViewRequests          Action = "view_requests"
	ReviewRequests        Action = "review_requests"
	ViewPayments          Action = "view_payments"
	CreatePayments        Action = "create_payments"
	DeletePayments        Action = "delete_payments"
	ManageSalaries        Action = "manage_salaries"
	ViewOwnSalary         Action = "view_own_salary"
	Chat                  Action = "chat"
	ViewDirectory         Action = "view_directory"
	ViewReports           Action = "view_reports"
	AdminDashboard        Action = "admin_dashboard"
	ManagerDashboard      Action = "manager_dashboard"
	SubManagerDashboard   Action = "sub_manager_dashboard"
	UjalaDashboard        Action = "ujala_dashboard"
	DriverDashboard       Action = "driver_dashboard"
)

// mainManager is shared by SUPER_ADMIN and MANAGER: the roles allowed to
// change trips, vehicles and payments.
var mainManager = []Action{
	ViewVehicles, ManageVehicles,
	ViewTrips, CreateTrips, EditTrips, DeleteTrips, SettleTrips,
	ViewRequests, ReviewRequests,
	ViewPayments, CreatePayments, DeletePayments,
	ManageSalaries, Chat, ViewReports,
}

var table = map[models.Role][]Action{
	models.RoleSuperAdmin: append([]Action{
		ManageManagers, ManageSettings, RunBackup, ExploreFleet, AdminDashboard,
	}, mainManager...),
	models.RoleManager: append([]Action{
		ManageDrivers, ManageSubManagers, ManagerDashboard,
	}, mainManager...),
	models.RoleSubManager: {
		ViewVehicles, ViewTrips, CreateTripRequests, ViewRequests,
		Chat, ViewDirectory, SubManagerDashboard,
	},
	models.RoleUjalaManager: {
		ViewTrips, ViewPayments, CreatePaymentRequests, ViewRequests,
		Chat, ViewDirectory, UjalaDashboard,
	},
	models.RoleDriver: {
		ViewVehicles, ViewTrips, UpdateTripStatus, ViewPayments, ViewOwnSalary,
		Chat, ViewDirectory, DriverDashboard,
	},
}

var capabilities = func() map[models.Role]map[Action]bool {
	out := make(map[models.Role]map[Action]bool, len(table))
	for role, actions := range table {
		set := make(map[Action]bool, len(actions))
		for _, a := range actions {
			set[a] = true
		}
		out[role] = set
	}
	return out
}()

// Can reports whether role may perform action. Unknown roles can do nothing.
func Can(role models.Role, action Action) bool {
	return capabilities[role][action]
}

// Capabilities returns the permitted action set of role
func Capabilities(role models.Role) []Action {
	actions := table[role]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}
