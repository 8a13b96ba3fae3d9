package query

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingColumns = `id, creator_id, participant_id, start_time, end_time, status, created_at, updated_at`

const createBooking = `
INSERT INTO bookings (creator_id, participant_id, start_time, end_time, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + bookingColumns

type CreateBookingParams struct {
	CreatorID     int64
	ParticipantID int64
	StartTime     pgtype.Timestamptz
	EndTime       pgtype.Timestamptz
	Status        string
	CreatedAt     pgtype.Timestamptz
}

func (q *Queries) CreateBooking(ctx context.Context, db DBTX, arg CreateBookingParams) (Booking, error) {
	rows, err := db.Query(ctx, createBooking,
		arg.CreatorID,
		arg.ParticipantID,
		arg.StartTime,
		arg.EndTime,
		arg.Status,
		arg.CreatedAt,
	)
	if err != nil {
		return Booking{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Booking])
}

const getBookingByID = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

func (q *Queries) GetBookingByID(ctx context.Context, db DBTX, id int64) (Booking, error) {
	rows, err := db.Query(ctx, getBookingByID, id)
	if err != nil {
		return Booking{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Booking])
}

// Open-interval overlap: a booking ending exactly when the candidate starts does not conflict.
const findConflictingBookings = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE (creator_id = ANY($1::bigint[]) OR participant_id = ANY($1::bigint[]))
  AND status = ANY($2::text[])
  AND start_time < $4
  AND end_time > $3
ORDER BY start_time, id`

type FindConflictingBookingsParams struct {
	PartyIDs  []int64
	Statuses  []string
	StartTime pgtype.Timestamptz
	EndTime   pgtype.Timestamptz
}

func (q *Queries) FindConflictingBookings(ctx context.Context, db DBTX, arg FindConflictingBookingsParams) ([]Booking, error) {
	rows, err := db.Query(ctx, findConflictingBookings, arg.PartyIDs, arg.Statuses, arg.StartTime, arg.EndTime)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Booking])
}

// The party predicates are optional so the same statement serves creator and participant
// moves; the system role passes neither.
const updateBookingStatus = `
UPDATE bookings
SET status = $3, updated_at = $4
WHERE id = $1
  AND status = $2
  AND ($5::bigint IS NULL OR creator_id = $5)
  AND ($6::bigint IS NULL OR participant_id = $6)
RETURNING ` + bookingColumns

type UpdateBookingStatusParams struct {
	ID            int64
	FromStatus    string
	ToStatus      string
	UpdatedAt     pgtype.Timestamptz
	CreatorID     pgtype.Int8
	ParticipantID pgtype.Int8
}

func (q *Queries) UpdateBookingStatus(ctx context.Context, db DBTX, arg UpdateBookingStatusParams) (Booking, error) {
	rows, err := db.Query(ctx, updateBookingStatus,
		arg.ID,
		arg.FromStatus,
		arg.ToStatus,
		arg.UpdatedAt,
		arg.CreatorID,
		arg.ParticipantID,
	)
	if err != nil {
		return Booking{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Booking])
}

const listBookingsForUser = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE (creator_id = $1 OR participant_id = $1)
  AND (coalesce(cardinality($2::text[]), 0) = 0 OR status = ANY($2::text[]))
  AND ($3::timestamptz IS NULL OR start_time >= $3)
  AND ($4::timestamptz IS NULL OR start_time <= $4)
  AND ($5::timestamptz IS NULL OR (start_time, id) > ($5, $6::bigint))
ORDER BY start_time, id
LIMIT $7`

type ListBookingsForUserParams struct {
	UserID     int64
	Statuses   []string
	From       pgtype.Timestamptz
	To         pgtype.Timestamptz
	AfterStart pgtype.Timestamptz
	AfterID    int64
	Limit      int32
}

func (q *Queries) ListBookingsForUser(ctx context.Context, db DBTX, arg ListBookingsForUserParams) ([]Booking, error) {
	rows, err := db.Query(ctx, listBookingsForUser,
		arg.UserID,
		arg.Statuses,
		arg.From,
		arg.To,
		arg.AfterStart,
		arg.AfterID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Booking])
}
