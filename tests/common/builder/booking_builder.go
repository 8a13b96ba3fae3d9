//go:build unit || e2e

package builder

import (
	"time"

	"meeting-scheduler/internal/domain/booking"
	reqdto "meeting-scheduler/internal/handler/dto/request"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

type BookingBuilder struct {
	ID            int64
	CreatorID     int64
	ParticipantID int64
	Start         time.Time
	End           time.Time
	Status        booking.Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBookingBuilder defaults to a pending 30 minute booking on Monday 2030-01-07 at 09:00 UTC.
func NewBookingBuilder() *BookingBuilder {
	start := time.Date(2030, time.January, 7, 9, 0, 0, 0, time.UTC)
	created := start.Add(-time.Hour)
	return &BookingBuilder{
		ID:            1,
		CreatorID:     1,
		ParticipantID: 2,
		Start:         start,
		End:           start.Add(30 * time.Minute),
		Status:        booking.StatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) At(start time.Time) *BookingBuilder {
	d := b.End.Sub(b.Start)
	b.Start = start
	b.End = start.Add(d)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() *booking.Booking {
	slot, err := booking.NewTimeSlot(b.Start, b.End)
	if err != nil {
		panic(err)
	}
	return booking.ReconstructBooking(b.ID, b.CreatorID, b.ParticipantID, slot, b.Status, b.CreatedAt, b.UpdatedAt)
}

// BuildNew is the unsaved aggregate a create request produces.
func (b *BookingBuilder) BuildNew() (*booking.Booking, error) {
	slot, err := booking.NewTimeSlot(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	return booking.NewBooking(b.CreatorID, b.ParticipantID, slot, b.CreatedAt)
}

func (b *BookingBuilder) BuildRow() query.Booking {
	return query.Booking{
		ID:            b.ID,
		CreatorID:     b.CreatorID,
		ParticipantID: b.ParticipantID,
		StartTime:     pgtype.Timestamptz{Time: b.Start, Valid: true},
		EndTime:       pgtype.Timestamptz{Time: b.End, Valid: true},
		Status:        b.Status.String(),
		CreatedAt:     pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:     pgtype.Timestamptz{Time: b.UpdatedAt, Valid: true},
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:            b.ID,
		CreatorID:     b.CreatorID,
		ParticipantID: b.ParticipantID,
		StartTime:     b.Start,
		EndTime:       b.End,
		Status:        b.Status.String(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	creatorID := b.CreatorID
	return reqdto.CreateBookingRequest{
		CreatorID:     &creatorID,
		ParticipantID: b.ParticipantID,
		StartTime:     b.Start.Format(time.RFC3339),
		EndTime:       b.End.Format(time.RFC3339),
	}
}
