package models

import "time"

type Vehicle struct {
	ID               string    `json:"id"`
	VehicleNumber    string    `json:"vehicle_number"`
	OwnerName        string    `json:"owner_name"`
	DriverID         string    `json:"driver_id,omitempty"`
	ManagerID        string    `json:"manager_id"`
	IsActive         bool      `json:"is_active"`
	TaxTokenExpiry   string    `json:"tax_token_expiry,omitempty"`   // YYYY-MM-DD
	FitnessExpiry    string    `json:"fitness_expiry,omitempty"`     // YYYY-MM-DD
	RoadPermitExpiry string    `json:"road_permit_expiry,omitempty"` // YYYY-MM-DD
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type VehicleRequest struct {
	VehicleNumber    string `json:"vehicle_number"`
	OwnerName        string `json:"owner_name"`
	DriverID         string `json:"driver_id"`
	IsActive         *bool  `json:"is_active,omitempty"`
	TaxTokenExpiry   string `json:"tax_token_expiry"`
	FitnessExpiry    string `json:"fitness_expiry"`
	RoadPermitExpiry string `json:"road_permit_expiry"`
}

// DocumentStatus flags which vehicle papers are past their expiry date
type DocumentStatus struct {
	TaxTokenExpired   bool `json:"tax_token_expired"`
	FitnessExpired    bool `json:"fitness_expired"`
	RoadPermitExpired bool `json:"road_permit_expired"`
}

// Any is true when at least one document has expired
func (d DocumentStatus) Any() bool {
	return d.TaxTokenExpired || d.FitnessExpired || d.RoadPermitExpired
}

// Documents compares each expiry date with today; empty dates never expire.
// Dates are YYYY-MM-DD so string comparison orders them.
func (v *Vehicle) Documents(today string) DocumentStatus {
	expired := func(d string) bool { return d != "" && d < today }
	return DocumentStatus{
		TaxTokenExpired:   expired(v.TaxTokenExpiry),
		FitnessExpired:    expired(v.FitnessExpiry),
		RoadPermitExpired: expired(v.RoadPermitExpiry),
	}
}

// VehicleAlert is one vehicle with at least one expired paper
type VehicleAlert struct {
	VehicleID     string         `json:"vehicle_id"`
	VehicleNumber string         `json:"vehicle_number"`
	Documents     DocumentStatus `json:"documents"`
}
