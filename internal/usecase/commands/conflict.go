package commands

import (
	"context"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/shared"
)

// ConflictDetector is the authoritative overlap check against persisted bookings. It runs
// inside the create transaction, beneath the slot lock.
type ConflictDetector struct{}

func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

func (d *ConflictDetector) Check(ctx context.Context, tx shared.Tx, candidate *booking.Booking) error {
	existing, err := tx.Bookings().FindConflicting(ctx, tx.DB(), shared.ConflictFilter{
		PartyIDs: []int64{candidate.CreatorID(), candidate.ParticipantID()},
		Statuses: booking.BlockingStatuses(),
		Start:    candidate.Slot().Start(),
		End:      candidate.Slot().End(),
	})
	if err != nil {
		return errs.Mark(err, ErrDependency)
	}

	for _, b := range existing {
		if !b.Status().Blocks() || !b.Slot().Overlaps(candidate.Slot()) || !sharesParty(b, candidate) {
			continue
		}
		return errs.Wrapf(ErrBookingConflict, "overlaps booking %d (%s)", b.ID(), b.Slot())
	}
	return nil
}

func sharesParty(a, b *booking.Booking) bool {
	for _, x := range []int64{a.CreatorID(), a.ParticipantID()} {
		if x == b.CreatorID() || x == b.ParticipantID() {
			return true
		}
	}
	return false
}
