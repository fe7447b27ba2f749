package models

import "time"

type TripStatus string

const (
	TripLoading   TripStatus = "Loading"
	TripRunning   TripStatus = "Running"
	TripDelayed   TripStatus = "Delayed"
	TripUnloaded  TripStatus = "Unloaded"
	TripCompleted TripStatus = "Completed"
)

// driverTransitions lists the moves a driver may make on their active trip.
// A delayed trip may be reported delayed again. Completed is only reached
// through settlement.
var driverTransitions = map[TripStatus][]TripStatus{
	TripLoading: {TripRunning},
	TripRunning: {TripDelayed, TripUnloaded},
	TripDelayed: {TripDelayed, TripUnloaded},
}

func (s TripStatus) Valid() bool {
	switch s {
	case TripLoading, TripRunning, TripDelayed, TripUnloaded, TripCompleted:
		return true
	}
	return false
}

// CanAdvanceTo reports whether a driver may move a trip from s to next
func (s TripStatus) CanAdvanceTo(next TripStatus) bool {
	for _, allowed := range driverTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InTransit is true for Running and Delayed
func (s TripStatus) InTransit() bool {
	return s == TripRunning || s == TripDelayed
}

type MovementStatus string

const (
	MovementInput  MovementStatus = "INPUT"
	MovementExport MovementStatus = "EXPORT"
)

func (m MovementStatus) Valid() bool {
	return m == MovementInput || m == MovementExport
}

type TripType string

const (
	TripTypeInput TripType = "Input"
	TripTypeLocal TripType = "Local"
)

type Trip struct {
	ID                   string         `json:"id"`
	TripNumber           string         `json:"trip_number"`
	VehicleID            string         `json:"vehicle_id"`
	DriverID             string         `json:"driver_id"`
	ManagerID            string         `json:"manager_id"`
	MovementStatus       MovementStatus `json:"movement_status"`
	TripType             TripType       `json:"trip_type"`
	LoadingPoint         string         `json:"loading_point"`
	UnloadingPoint       string         `json:"unloading_point"`
	Date                 string         `json:"date"` // YYYY-MM-DD
	UnloadingDate        string         `json:"unloading_date,omitempty"`
	Status               TripStatus     `json:"status"`
	PartyFare            float64        `json:"party_fare"`
	PackageAmount        float64        `json:"package_amount"`
	PartyAdvanceAmount   float64        `json:"party_advance_amount"`
	CompanyAdvanceAmount float64        `json:"company_advance_amount"`
	TotalAdvancePaid     float64        `json:"total_advance_paid"`
	RentCompany          string         `json:"rent_company"`
	RelatedTripID        string         `json:"related_trip_id,omitempty"`
	Notes                string         `json:"notes,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TripView is a trip with its derived amounts, as returned by the API
type TripView struct {
	*Trip
	PartyDue      float64 `json:"party_due"`
	DriverPending float64 `json:"driver_pending"`
	VehicleNumber string  `json:"vehicle_number,omitempty"`
	DriverName    string  `json:"driver_name,omitempty"`
}

type TripRequestBody struct {
	VehicleID            string         `json:"vehicle_id"`
	MovementStatus       MovementStatus `json:"movement_status"`
	TripType             TripType       `json:"trip_type"`
	LoadingPoint         string         `json:"loading_point"`
	UnloadingPoint       string         `json:"unloading_point"`
	Date                 string         `json:"date"`
	Status               TripStatus     `json:"status,omitempty"`
	PartyFare            float64        `json:"party_fare"`
	PackageAmount        *float64       `json:"package_amount,omitempty"`
	PartyAdvanceAmount   float64        `json:"party_advance_amount"`
	CompanyAdvanceAmount float64        `json:"company_advance_amount"`
	RentCompany          string         `json:"rent_company"`
	CustomCompanyName    string         `json:"custom_company_name,omitempty"`
	RelatedTripID        string         `json:"related_trip_id,omitempty"`
	Notes                string         `json:"notes,omitempty"`
}

type DriverStatusRequest struct {
	Status TripStatus `json:"status"`
}

// TripFilter narrows trip listings; zero values match everything
type TripFilter struct {
	Movement MovementStatus
	Status   TripStatus
	Search   string // vehicle number or driver name
	Month    string // YYYY-MM
}
