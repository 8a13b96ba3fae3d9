package booking

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeSlot   = errors.New("start time must be before end time")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidParty      = errors.New("party ids must be positive")
	ErrSameParty         = errors.New("creator and participant must differ")
	ErrTerminalState     = errors.New("booking is in a terminal state")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrRoleNotPermitted  = errors.New("transition is not permitted for this role")
)

type Booking struct {
	id            int64
	creatorID     int64
	participantID int64
	slot          TimeSlot
	status        Status
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBooking creates a pending booking. The slot is expected to have passed SlotValidator.
func NewBooking(creatorID, participantID int64, slot TimeSlot, now time.Time) (*Booking, error) {
	if err := ValidateParties(creatorID, participantID); err != nil {
		return nil, err
	}
	return &Booking{
		creatorID:     creatorID,
		participantID: participantID,
		slot:          slot,
		status:        StatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ValidateParties(creatorID, participantID int64) error {
	if creatorID <= 0 || participantID <= 0 {
		return ErrInvalidParty
	}
	if creatorID == participantID {
		return ErrSameParty
	}
	return nil
}

func ReconstructBooking(
	id, creatorID, participantID int64,
	slot TimeSlot,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		creatorID:     creatorID,
		participantID: participantID,
		slot:          slot,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// RoleOf reports the capacity in which userID takes part in the booking.
func (b *Booking) RoleOf(userID int64) (Role, bool) {
	switch userID {
	case b.creatorID:
		return RoleCreator, true
	case b.participantID:
		return RoleParticipant, true
	default:
		return "", false
	}
}

// Transition moves the booking to the given status on behalf of actor.
func (b *Booking) Transition(actor Role, to Status, now time.Time) error {
	if err := Authorize(actor, b.status, to); err != nil {
		return err
	}
	b.status = to
	b.updatedAt = now
	return nil
}

func (b *Booking) ID() int64            { return b.id }
func (b *Booking) CreatorID() int64     { return b.creatorID }
func (b *Booking) ParticipantID() int64 { return b.participantID }
func (b *Booking) Slot() TimeSlot       { return b.slot }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
