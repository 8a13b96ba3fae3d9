package shared

import (
	"context"
	"time"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra/query"
)

type UnitOfWork interface {
	// Within: read-committed write transaction with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinSerializable: for check-then-insert flows whose check must stay true until commit
	WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: consistent snapshot across several reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db query.DBTX) error) error
	// WithDB: single statements on the pool
	WithDB(ctx context.Context, fn func(ctx context.Context, db query.DBTX) error) error
}

type Tx interface {
	Bookings() BookingRepository
	DB() query.DBTX
}

// ConflictFilter selects bookings that share a party with the candidate and overlap its window.
type ConflictFilter struct {
	PartyIDs []int64
	Statuses []booking.Status
	Start    time.Time
	End      time.Time
}

// StatusUpdate is a conditional move: it applies only while the row is still in From and,
// for party roles, still belongs to ActorID in that role.
type StatusUpdate struct {
	BookingID int64
	From      booking.Status
	To        booking.Status
	Actor     booking.Role
	ActorID   int64
	At        time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, tx query.DBTX, b *booking.Booking) (int64, error)
	FindByID(ctx context.Context, tx query.DBTX, id int64) (*booking.Booking, error)
	FindConflicting(ctx context.Context, tx query.DBTX, filter ConflictFilter) ([]*booking.Booking, error)
	UpdateStatus(ctx context.Context, tx query.DBTX, update StatusUpdate) (*booking.Booking, error)
}
