package repository

import (
	"context"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/infra/repository/converter"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/pkg/pgconv"
	"meeting-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgtype"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/repository/booking_mock.go -package=repositorymock

// ErrUnsupportedActor is returned for status moves no party role can make through this repository.
var ErrUnsupportedActor = errs.New("status update actor is not a booking party")

type BookingWriteQueries interface {
	CreateBooking(ctx context.Context, db query.DBTX, arg query.CreateBookingParams) (query.Booking, error)
	GetBookingByID(ctx context.Context, db query.DBTX, id int64) (query.Booking, error)
	FindConflictingBookings(ctx context.Context, db query.DBTX, arg query.FindConflictingBookingsParams) ([]query.Booking, error)
	UpdateBookingStatus(ctx context.Context, db query.DBTX, arg query.UpdateBookingStatusParams) (query.Booking, error)
}

type BookingRepository struct {
	queries BookingWriteQueries
}

func NewBookingRepository(queries BookingWriteQueries) *BookingRepository {
	return &BookingRepository{queries: queries}
}

var _ shared.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, tx query.DBTX, b *booking.Booking) (int64, error) {
	row, err := r.queries.CreateBooking(ctx, tx, converter.BookingToCreateParams(b))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create booking", err)
	}
	return row.ID, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, tx query.DBTX, id int64) (*booking.Booking, error) {
	row, err := r.queries.GetBookingByID(ctx, tx, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	b, err := converter.BookingFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("stored booking is invalid", err, infra.KindDBFailure)
	}
	return b, nil
}

func (r *BookingRepository) FindConflicting(ctx context.Context, tx query.DBTX, filter shared.ConflictFilter) ([]*booking.Booking, error) {
	rows, err := r.queries.FindConflictingBookings(ctx, tx, query.FindConflictingBookingsParams{
		PartyIDs:  filter.PartyIDs,
		Statuses:  converter.StatusesToStrings(filter.Statuses),
		StartTime: pgconv.TimeToPgtype(filter.Start.UTC()),
		EndTime:   pgconv.TimeToPgtype(filter.End.UTC()),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find conflicting bookings", err)
	}
	bookings, err := converter.BookingsFromRows(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("stored booking is invalid", err, infra.KindDBFailure)
	}
	return bookings, nil
}

// UpdateStatus applies the move only while the row still matches update.From and the actor's
// role. Zero affected rows surface as KindNotFound.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx query.DBTX, update shared.StatusUpdate) (*booking.Booking, error) {
	params := query.UpdateBookingStatusParams{
		ID:         update.BookingID,
		FromStatus: update.From.String(),
		ToStatus:   update.To.String(),
		UpdatedAt:  pgconv.TimeToPgtype(update.At.UTC()),
	}
	switch update.Actor {
	case booking.RoleCreator:
		params.CreatorID = pgtype.Int8{Int64: update.ActorID, Valid: true}
	case booking.RoleParticipant:
		params.ParticipantID = pgtype.Int8{Int64: update.ActorID, Valid: true}
	default:
		return nil, errs.Wrapf(ErrUnsupportedActor, "role %q", update.Actor)
	}

	row, err := r.queries.UpdateBookingStatus(ctx, tx, params)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking status precondition failed", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to update booking status", err)
	}
	b, err := converter.BookingFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("stored booking is invalid", err, infra.KindDBFailure)
	}
	return b, nil
}
