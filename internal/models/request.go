package models

import (
	"errors"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

var ErrRequestResolved = errors.New("request is no longer pending")

// Resolution is the approval state shared by trip and payment requests.
// pending is the only state with outgoing transitions.
type Resolution struct {
	Status       RequestStatus `json:"status"`
	ResolvedBy   string        `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty"`
	RejectReason string        `json:"reject_reason,omitempty"`
}

func (r *Resolution) Pending() bool {
	return r.Status == RequestPending
}

// Approve moves pending -> approved and stamps the approver
func (r *Resolution) Approve(by string, at time.Time) error {
	return r.resolve(RequestApproved, by, at, "")
}

// Reject moves pending -> rejected and stamps the rejecter
func (r *Resolution) Reject(by string, at time.Time, reason string) error {
	return r.resolve(RequestRejected, by, at, reason)
}

func (r *Resolution) resolve(to RequestStatus, by string, at time.Time, reason string) error {
	if !r.Pending() {
		return ErrRequestResolved
	}
	r.Status = to
	r.ResolvedBy = by
	r.ResolvedAt = &at
	r.RejectReason = reason
	return nil
}

type TripRequest struct {
	ID             string         `json:"id"`
	SubManagerID   string         `json:"sub_manager_id"`
	VehicleID      string         `json:"vehicle_id"`
	LoadingPoint   string         `json:"loading_point"`
	UnloadingPoint string         `json:"unloading_point"`
	RentCompany    string         `json:"rent_company"`
	EstimatedFare  float64        `json:"estimated_fare"`
	RequestType    MovementStatus `json:"request_type"`
	Timestamp      time.Time      `json:"timestamp"`
	TripID         string         `json:"trip_id,omitempty"`
	Resolution
}

type CreateTripRequestBody struct {
	VehicleID         string  `json:"vehicle_id"`
	LoadingPoint      string  `json:"loading_point"`
	UnloadingPoint    string  `json:"unloading_point"`
	RentCompany       string  `json:"rent_company"`
	CustomCompanyName string  `json:"custom_company_name,omitempty"`
	EstimatedFare     float64 `json:"estimated_fare"`
}

// ApproveTripRequestBody carries the amounts only a main manager fills in
type ApproveTripRequestBody struct {
	TripType             TripType `json:"trip_type"`
	Date                 string   `json:"date"`
	PackageAmount        *float64 `json:"package_amount,omitempty"`
	PartyAdvanceAmount   float64  `json:"party_advance_amount"`
	CompanyAdvanceAmount float64  `json:"company_advance_amount"`
	RelatedTripID        string   `json:"related_trip_id,omitempty"`
}

type PaymentRequest struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	Payer       string    `json:"payer"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	TripIDs     []string  `json:"trip_ids"`
	Amount      float64   `json:"amount"`
	Notes       string    `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	PaymentID   string    `json:"payment_id,omitempty"`
	Resolution
}

type CreatePaymentRequestBody struct {
	Payer     string   `json:"payer"`
	VehicleID string   `json:"vehicle_id"`
	TripIDs   []string `json:"trip_ids"`
	Amount    float64  `json:"amount"`
	Notes     string   `json:"notes"`
}

type RejectRequestBody struct {
	Reason string `json:"reason"`
}
