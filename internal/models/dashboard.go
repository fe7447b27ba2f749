package models

type AdminDashboard struct {
	ManagerCount   int         `json:"manager_count"`
	DriverCount    int         `json:"driver_count"`
	VehicleCount   int         `json:"vehicle_count"`
	TotalPartyDue  float64     `json:"total_party_due"`
	RecentTrips    []*TripView `json:"recent_trips"`
	RecentPayments []*Payment  `json:"recent_payments"`
}

type ManagerDashboard struct {
	UjalaPartyDue      float64        `json:"ujala_party_due"`
	OutsidePartyDue    float64        `json:"outside_party_due"`
	TotalDriverPending float64        `json:"total_driver_pending"`
	RunningTrips       []*TripView    `json:"running_trips"`
	RecentTrips        []*TripView    `json:"recent_trips"`
	RecentPayments     []*Payment     `json:"recent_payments"`
	ExpiryAlerts       []VehicleAlert `json:"expiry_alerts"`
}

// FleetStatus is where a vehicle stands after its latest trip
type FleetStatus struct {
	VehicleID      string         `json:"vehicle_id"`
	VehicleNumber  string         `json:"vehicle_number"`
	DriverID       string         `json:"driver_id,omitempty"`
	DriverName     string         `json:"driver_name,omitempty"`
	DriverPhone    string         `json:"driver_phone,omitempty"`
	LastTripStatus TripStatus     `json:"last_trip_status"`
	LastMovement   MovementStatus `json:"last_movement"`
	Location       string         `json:"location"`
}

type SubManagerDashboard struct {
	Fleet           []FleetStatus `json:"fleet"`
	UnloadedCount   int           `json:"unloaded_count"`
	PendingRequests int           `json:"pending_requests"`
}

// DueEntry is a trip with an outstanding party due. New marks entries dated within two days.
type DueEntry struct {
	*TripView
	New bool `json:"new"`
}

type DueGroup struct {
	Export      []DueEntry `json:"export"`
	Import      []DueEntry `json:"import"`
	ExportTotal float64    `json:"export_total"`
	ImportTotal float64    `json:"import_total"`
	Total       float64    `json:"total"`
}

type UjalaDashboard struct {
	Ujala      DueGroup `json:"ujala"`
	Outside    DueGroup `json:"outside"`
	GrandTotal float64  `json:"grand_total"`
}

type DriverDashboard struct {
	ActiveTrip   *TripView   `json:"active_trip"`
	Trips        []*TripView `json:"trips"`
	TotalPending float64     `json:"total_pending"`
	Vehicle      *Vehicle    `json:"vehicle"`
	Payments     []*Payment  `json:"payments"`
	Salary       *SalaryView `json:"salary"`
}

type ManagerSummary struct {
	*User
	DriverCount  int `json:"driver_count"`
	VehicleCount int `json:"vehicle_count"`
}

type DriverSummary struct {
	*User
	TripCount    int     `json:"trip_count"`
	TotalPending float64 `json:"total_pending"`
}

type VehicleSummary struct {
	*Vehicle
	DriverName string         `json:"driver_name,omitempty"`
	Documents  DocumentStatus `json:"documents"`
}

// FleetExplorer carries only the tab that was asked for; an empty tab fills all three
type FleetExplorer struct {
	Managers []ManagerSummary `json:"managers,omitempty"`
	Drivers  []DriverSummary  `json:"drivers,omitempty"`
	Vehicles []VehicleSummary `json:"vehicles,omitempty"`
}

// ProfileStats is the small summary on the profile page. Which fields are set depends on role.
type ProfileStats struct {
	Role          Role    `json:"role"`
	TripCount     int     `json:"trip_count"`
	VehicleNumber string  `json:"vehicle_number,omitempty"`
	TotalPending  float64 `json:"total_pending,omitempty"`
	DriverCount   int     `json:"driver_count,omitempty"`
	FleetSize     int     `json:"fleet_size,omitempty"`
	ActiveTrips   int     `json:"active_trips,omitempty"`
}
