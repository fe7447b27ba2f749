package models

import "time"

const (
	PaymentDriverSettlement = "Driver Settlement"
	PaymentSalary           = "Salary"
	PaymentUjalaRequest     = "Ujala Request"
	PaymentSingleTrip       = "Single Trip"
)

type Payment struct {
	ID           string    `json:"id"`
	PaymentType  string    `json:"payment_type"`
	Payer        string    `json:"payer,omitempty"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	TripIDs      []string  `json:"trip_ids"`
	Amount       float64   `json:"amount"`
	RemainingDue float64   `json:"remaining_due"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Notes        string    `json:"notes,omitempty"`
	RecordedBy   string    `json:"recorded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreatePaymentRequest is the manual payment form
type CreatePaymentRequest struct {
	PaymentType       string   `json:"payment_type"`
	Payer             string   `json:"payer"`
	CustomCompanyName string   `json:"custom_company_name,omitempty"`
	VehicleID         string   `json:"vehicle_id"`
	TripIDs           []string `json:"trip_ids"`
	Amount            float64  `json:"amount"`
	Date              string   `json:"date"`
	Notes             string   `json:"notes"`
}
