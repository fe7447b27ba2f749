// Package memory is the in-process record store. One lock guards every
// collection and all reads and writes go through copies, so callers never
// alias stored records.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
)

type DB struct {
	mu              sync.RWMutex
	users           table[models.User]
	vehicles        table[models.Vehicle]
	trips           table[models.Trip]
	payments        table[models.Payment]
	salaries        table[models.SalaryRecord]
	messages        table[models.ChatMessage]
	tripRequests    table[models.TripRequest]
	paymentRequests table[models.PaymentRequest]
	settings        table[models.SystemSetting]
}

func New() *DB {
	return &DB{
		users:    table[models.User]{id: func(u *models.User) string { return u.ID }, clone: shallow[models.User]},
		vehicles: table[models.Vehicle]{id: func(v *models.Vehicle) string { return v.ID }, clone: shallow[models.Vehicle]},
		trips:    table[models.Trip]{id: func(t *models.Trip) string { return t.ID }, clone: shallow[models.Trip]},
		payments: table[models.Payment]{id: func(p *models.Payment) string { return p.ID }, clone: clonePayment},
		salaries: table[models.SalaryRecord]{
			id:    func(s *models.SalaryRecord) string { return salaryKey(s.DriverID, s.Month) },
			clone: cloneSalary,
		},
		messages:        table[models.ChatMessage]{id: func(m *models.ChatMessage) string { return m.ID }, clone: shallow[models.ChatMessage]},
		tripRequests:    table[models.TripRequest]{id: func(r *models.TripRequest) string { return r.ID }, clone: cloneTripRequest},
		paymentRequests: table[models.PaymentRequest]{id: func(r *models.PaymentRequest) string { return r.ID }, clone: clonePaymentRequest},
		settings:        table[models.SystemSetting]{id: func(s *models.SystemSetting) string { return s.SettingKey }, clone: shallow[models.SystemSetting]},
	}
}

// Store exposes the DB through the per-entity contracts
func (db *DB) Store() *store.Store {
	return &store.Store{
		Users:           &users{db},
		Vehicles:        &vehicles{db},
		Trips:           &trips{db},
		Payments:        &payments{db},
		Salaries:        &salaries{db},
		Messages:        &messages{db},
		TripRequests:    &tripRequests{db},
		PaymentRequests: &paymentRequests{db},
		Settings:        &settings{db},
	}
}

// Load replaces every collection with the snapshot contents
func (db *DB) Load(snap *store.Snapshot) {
	snap.Restore()
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users.load(snap.Users)
	db.vehicles.load(snap.Vehicles)
	db.trips.load(snap.Trips)
	db.payments.load(snap.Payments)
	db.salaries.load(snap.Salaries)
	db.messages.load(snap.Messages)
	db.tripRequests.load(snap.TripRequests)
	db.paymentRequests.load(snap.PaymentRequests)
	db.settings.load(snap.Settings)
}

func salaryKey(driverID, month string) string {
	return driverID + "|" + month
}

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	c.TripIDs = cloneStrings(p.TripIDs)
	return &c
}

func cloneSalary(s *models.SalaryRecord) *models.SalaryRecord {
	c := *s
	c.Advances = append(make([]models.SalaryAdvance, 0, len(s.Advances)), s.Advances...)
	c.SettledAt = cloneTime(s.SettledAt)
	return &c
}

func cloneTripRequest(r *models.TripRequest) *models.TripRequest {
	c := *r
	c.ResolvedAt = cloneTime(r.ResolvedAt)
	return &c
}

func clonePaymentRequest(r *models.PaymentRequest) *models.PaymentRequest {
	c := *r
	c.TripIDs = cloneStrings(r.TripIDs)
	c.ResolvedAt = cloneTime(r.ResolvedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

type users struct{ db *DB }

func (r *users) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users.rows {
		if (u.Email != "" && strings.EqualFold(existing.Email, u.Email)) || (u.Phone != "" && existing.Phone == u.Phone) {
			return store.ErrDuplicate
		}
	}
	return r.db.users.insert(u)
}

func (r *users) Get(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.users.get(id)
}

func (r *users) GetByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users.rows {
		if (u.Email != "" && strings.EqualFold(u.Email, identifier)) || (u.Phone != "" && u.Phone == identifier) {
			return r.db.users.clone(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *users) List(_ context.Context) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.users.list(), nil
}

func (r *users) Update(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users.rows {
		if existing.ID == u.ID {
			continue
		}
		if (u.Email != "" && strings.EqualFold(existing.Email, u.Email)) || (u.Phone != "" && existing.Phone == u.Phone) {
			return store.ErrDuplicate
		}
	}
	return r.db.users.replace(u)
}

type vehicles struct{ db *DB }

func (r *vehicles) Create(_ context.Context, v *models.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.vehicles.insert(v)
}

func (r *vehicles) Get(_ context.Context, id string) (*models.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.vehicles.get(id)
}

func (r *vehicles) List(_ context.Context) ([]*models.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.vehicles.list(), nil
}

func (r *vehicles) Update(_ context.Context, v *models.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.vehicles.replace(v)
}

func (r *vehicles) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.vehicles.remove(id)
}

type trips struct{ db *DB }

func (r *trips) Create(_ context.Context, t *models.Trip) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.trips.insert(t)
}

func (r *trips) Get(_ context.Context, id string) (*models.Trip, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.trips.get(id)
}

func (r *trips) List(_ context.Context) ([]*models.Trip, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.trips.list(), nil
}

func (r *trips) Update(_ context.Context, t *models.Trip) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.trips.replace(t)
}

func (r *trips) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.trips.remove(id)
}

func (r *trips) Settle(_ context.Context, id, related string, p *models.Payment, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.trips.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	if r.db.trips.rows[i].Status == models.TripCompleted {
		return store.ErrConflict
	}
	if err := r.db.payments.insert(p); err != nil {
		return err
	}
	for _, legID := range []string{id, related} {
		if j := r.db.trips.index(legID); legID != "" && j >= 0 {
			r.db.trips.rows[j].Status = models.TripCompleted
			r.db.trips.rows[j].UpdatedAt = at
		}
	}
	return nil
}

type payments struct{ db *DB }

func (r *payments) Create(_ context.Context, p *models.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.payments.insert(p)
}

func (r *payments) Get(_ context.Context, id string) (*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.payments.get(id)
}

func (r *payments) List(_ context.Context) ([]*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.payments.list(), nil
}

func (r *payments) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.payments.remove(id)
}

type salaries struct{ db *DB }

func (r *salaries) Get(_ context.Context, driverID, month string) (*models.SalaryRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.salaries.get(salaryKey(driverID, month))
}

func (r *salaries) Create(_ context.Context, s *models.SalaryRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.salaries.insert(s)
}

func (r *salaries) AddAdvance(_ context.Context, driverID, month string, a models.SalaryAdvance) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.salaries.index(salaryKey(driverID, month))
	if i < 0 {
		return store.ErrNotFound
	}
	rec := r.db.salaries.rows[i]
	if rec.IsSettled {
		return store.ErrConflict
	}
	rec.Advances = append(rec.Advances, a)
	return nil
}

func (r *salaries) Settle(_ context.Context, s *models.SalaryRecord, p *models.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.salaries.index(salaryKey(s.DriverID, s.Month))
	if i < 0 {
		return store.ErrNotFound
	}
	stored := r.db.salaries.rows[i]
	if stored.IsSettled || len(stored.Advances) != len(s.Advances) {
		return store.ErrConflict
	}
	if p != nil {
		if err := r.db.payments.insert(p); err != nil {
			return err
		}
	}
	stored.IsSettled = true
	stored.SettledAt = cloneTime(s.SettledAt)
	return nil
}

func (r *salaries) List(_ context.Context) ([]*models.SalaryRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.salaries.list(), nil
}

type messages struct{ db *DB }

func (r *messages) Append(_ context.Context, m *models.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.messages.insert(m)
}

func (r *messages) List(_ context.Context) ([]*models.ChatMessage, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.messages.list(), nil
}

type tripRequests struct{ db *DB }

func (r *tripRequests) Create(_ context.Context, req *models.TripRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.tripRequests.insert(req)
}

func (r *tripRequests) Get(_ context.Context, id string) (*models.TripRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.tripRequests.get(id)
}

func (r *tripRequests) List(_ context.Context) ([]*models.TripRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.tripRequests.list(), nil
}

func (r *tripRequests) Resolve(_ context.Context, req *models.TripRequest, trip *models.Trip) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.tripRequests.index(req.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	if !r.db.tripRequests.rows[i].Pending() {
		return store.ErrConflict
	}
	if trip != nil {
		if err := r.db.trips.insert(trip); err != nil {
			return err
		}
	}
	r.db.tripRequests.rows[i] = r.db.tripRequests.clone(req)
	return nil
}

type paymentRequests struct{ db *DB }

func (r *paymentRequests) Create(_ context.Context, req *models.PaymentRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.paymentRequests.insert(req)
}

func (r *paymentRequests) Get(_ context.Context, id string) (*models.PaymentRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.paymentRequests.get(id)
}

func (r *paymentRequests) List(_ context.Context) ([]*models.PaymentRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.paymentRequests.list(), nil
}

func (r *paymentRequests) Resolve(_ context.Context, req *models.PaymentRequest, p *models.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.paymentRequests.index(req.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	if !r.db.paymentRequests.rows[i].Pending() {
		return store.ErrConflict
	}
	if p != nil {
		if err := r.db.payments.insert(p); err != nil {
			return err
		}
	}
	r.db.paymentRequests.rows[i] = r.db.paymentRequests.clone(req)
	return nil
}

type settings struct{ db *DB }

func (r *settings) Get(_ context.Context, key string) (*models.SystemSetting, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.settings.get(key)
}

func (r *settings) List(_ context.Context) ([]*models.SystemSetting, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.settings.list(), nil
}

func (r *settings) Upsert(_ context.Context, s *models.SystemSetting) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	err := r.db.settings.replace(s)
	if err == store.ErrNotFound {
		return r.db.settings.insert(s)
	}
	return err
}
