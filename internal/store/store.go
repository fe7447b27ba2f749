// Package store defines the read/write contract each entity collection offers.
// Lists always come back in insertion order.
package store

//go:generate mockgen -source=store.go -destination=../mocks/store_mock.go -package=mocks -exclude_interfaces=SalaryStore,MessageStore,TripRequestStore,PaymentRequestStore

import (
	"context"
	"errors"
	"time"

	"fleet-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrConflict is returned by guarded writes when the stored record no
	// longer is in the state the caller read
	ErrConflict = errors.New("record changed concurrently")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	// GetByIdentifier matches email (case-insensitive) or phone
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type VehicleStore interface {
	Create(ctx context.Context, v *models.Vehicle) error
	Get(ctx context.Context, id string) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	Update(ctx context.Context, v *models.Vehicle) error
	Delete(ctx context.Context, id string) error
}

type TripStore interface {
	Create(ctx context.Context, t *models.Trip) error
	Get(ctx context.Context, id string) (*models.Trip, error)
	List(ctx context.Context) ([]*models.Trip, error)
	Update(ctx context.Context, t *models.Trip) error
	Delete(ctx context.Context, id string) error
	// Settle marks trip id (and related, when set) Completed and records p,
	// all or nothing. ErrConflict when id is already Completed.
	Settle(ctx context.Context, id, related string, p *models.Payment, at time.Time) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	Delete(ctx context.Context, id string) error
}

type SalaryStore interface {
	// Get returns ErrNotFound when the driver has no record for month
	Get(ctx context.Context, driverID, month string) (*models.SalaryRecord, error)
	// Create inserts a new record; ErrDuplicate when (driver, month) has one
	Create(ctx context.Context, s *models.SalaryRecord) error
	// AddAdvance appends a to the record of (driver, month). ErrConflict once it is settled.
	AddAdvance(ctx context.Context, driverID, month string, a models.SalaryAdvance) error
	// Settle stores s as settled and records p when non-nil. ErrConflict when the
	// stored record is settled or holds a different number of advances than s.
	Settle(ctx context.Context, s *models.SalaryRecord, p *models.Payment) error
	List(ctx context.Context) ([]*models.SalaryRecord, error)
}

type MessageStore interface {
	Append(ctx context.Context, m *models.ChatMessage) error
	List(ctx context.Context) ([]*models.ChatMessage, error)
}

type TripRequestStore interface {
	Create(ctx context.Context, r *models.TripRequest) error
	Get(ctx context.Context, id string) (*models.TripRequest, error)
	List(ctx context.Context) ([]*models.TripRequest, error)
	// Resolve writes the resolution of r while the stored request is pending,
	// inserting trip in the same step when non-nil. ErrConflict otherwise.
	Resolve(ctx context.Context, r *models.TripRequest, trip *models.Trip) error
}

type PaymentRequestStore interface {
	Create(ctx context.Context, r *models.PaymentRequest) error
	Get(ctx context.Context, id string) (*models.PaymentRequest, error)
	List(ctx context.Context) ([]*models.PaymentRequest, error)
	// Resolve is the payment request counterpart of TripRequestStore.Resolve
	Resolve(ctx context.Context, r *models.PaymentRequest, p *models.Payment) error
}

type SettingStore interface {
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	List(ctx context.Context) ([]*models.SystemSetting, error)
	Upsert(ctx context.Context, s *models.SystemSetting) error
}

// Store bundles the collections; services take the ones they need.
type Store struct {
	Users           UserStore
	Vehicles        VehicleStore
	Trips           TripStore
	Payments        PaymentStore
	Salaries        SalaryStore
	Messages        MessageStore
	TripRequests    TripRequestStore
	PaymentRequests PaymentRequestStore
	Settings        SettingStore
}
