package store

import (
	"context"
	"fmt"
	"time"

	"fleet-backend/internal/models"
)

// Snapshot is a full copy of every collection
type Snapshot struct {
	TakenAt         time.Time                `json:"taken_at"`
	Users           []*models.User           `json:"users"`
	Vehicles        []*models.Vehicle        `json:"vehicles"`
	Trips           []*models.Trip           `json:"trips"`
	Payments        []*models.Payment        `json:"payments"`
	Salaries        []*models.SalaryRecord   `json:"salaries"`
	Messages        []*models.ChatMessage    `json:"messages"`
	TripRequests    []*models.TripRequest    `json:"trip_requests"`
	PaymentRequests []*models.PaymentRequest `json:"payment_requests"`
	Settings        []*models.SystemSetting  `json:"settings"`

	// Credentials carries the secrets users hide from JSON, keyed by user id
	Credentials map[string]Credential `json:"credentials,omitempty"`
}

type Credential struct {
	PasswordHash string `json:"password_hash"`
	TOTPSecret   string `json:"totp_secret,omitempty"`
}

// Restore copies the credentials back onto the users
func (snap *Snapshot) Restore() {
	for _, u := range snap.Users {
		if c, ok := snap.Credentials[u.ID]; ok {
			u.PasswordHash = c.PasswordHash
			u.TOTPSecret = c.TOTPSecret
		}
	}
}

// Take lists every collection of s. It works over any backend.
func Take(ctx context.Context, s *Store, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{TakenAt: now}
	var err error
	if snap.Users, err = s.Users.List(ctx); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	snap.Credentials = make(map[string]Credential, len(snap.Users))
	for _, u := range snap.Users {
		snap.Credentials[u.ID] = Credential{PasswordHash: u.PasswordHash, TOTPSecret: u.TOTPSecret}
	}
	if snap.Vehicles, err = s.Vehicles.List(ctx); err != nil {
		return nil, fmt.Errorf("vehicles: %w", err)
	}
	if snap.Trips, err = s.Trips.List(ctx); err != nil {
		return nil, fmt.Errorf("trips: %w", err)
	}
	if snap.Payments, err = s.Payments.List(ctx); err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	if snap.Salaries, err = s.Salaries.List(ctx); err != nil {
		return nil, fmt.Errorf("salaries: %w", err)
	}
	if snap.Messages, err = s.Messages.List(ctx); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}
	if snap.TripRequests, err = s.TripRequests.List(ctx); err != nil {
		return nil, fmt.Errorf("trip requests: %w", err)
	}
	if snap.PaymentRequests, err = s.PaymentRequests.List(ctx); err != nil {
		return nil, fmt.Errorf("payment requests: %w", err)
	}
	if snap.Settings, err = s.Settings.List(ctx); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return snap, nil
}
