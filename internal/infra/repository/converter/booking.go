package converter

import (
	"fmt"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/pkg/pgconv"
)

func BookingToCreateParams(b *booking.Booking) query.CreateBookingParams {
	return query.CreateBookingParams{
		CreatorID:     b.CreatorID(),
		ParticipantID: b.ParticipantID(),
		StartTime:     pgconv.TimeToPgtype(b.Slot().Start().UTC()),
		EndTime:       pgconv.TimeToPgtype(b.Slot().End().UTC()),
		Status:        b.Status().String(),
		CreatedAt:     pgconv.TimeToPgtype(b.CreatedAt().UTC()),
	}
}

// BookingFromRow rebuilds the aggregate; a row that breaks the domain rules is reported, not repaired.
func BookingFromRow(row query.Booking) (*booking.Booking, error) {
	slot, err := booking.NewTimeSlot(
		pgconv.TimeFromPgtype(row.StartTime).UTC(),
		pgconv.TimeFromPgtype(row.EndTime).UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", row.ID, err)
	}
	status, err := booking.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", row.ID, err)
	}
	return booking.ReconstructBooking(
		row.ID,
		row.CreatorID,
		row.ParticipantID,
		slot,
		status,
		pgconv.TimeFromPgtype(row.CreatedAt).UTC(),
		pgconv.TimeFromPgtype(row.UpdatedAt).UTC(),
	), nil
}

func BookingsFromRows(rows []query.Booking) ([]*booking.Booking, error) {
	out := make([]*booking.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := BookingFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func StatusesToStrings(statuses []booking.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
