package repositories

import (
	"context"
	"errors"

	"fleet-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is satisfied by both DB and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapErr turns driver errors into the store sentinels services understand
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

// affected returns ErrNotFound when an UPDATE or DELETE matched nothing
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// guarded checks a conditional UPDATE: no match on an existing row means
// the row left the expected state, ErrConflict
func guarded(ctx context.Context, q querier, table, id string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id=$1)`, id).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

// NewStore wires every PostgreSQL repository into a store.Store
func NewStore(db DB) *store.Store {
	return &store.Store{
		Users:           NewUserRepository(db),
		Vehicles:        NewVehicleRepository(db),
		Trips:           NewTripRepository(db),
		Payments:        NewPaymentRepository(db),
		Salaries:        NewSalaryRepository(db),
		Messages:        NewChatRepository(db),
		TripRequests:    NewTripRequestRepository(db),
		PaymentRequests: NewPaymentRequestRepository(db),
		Settings:        NewSystemSettingRepository(db),
	}
}
