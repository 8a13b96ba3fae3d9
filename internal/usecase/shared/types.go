package shared

import (
	"context"
	"time"
)

type BookingEventType string

const (
	EventBookingCreated       BookingEventType = "booking.created"
	EventBookingStatusChanged BookingEventType = "booking.status_changed"
)

// BookingEvent is published after commit for downstream notifiers.
type BookingEvent struct {
	ID             string           `json:"id"`
	Type           BookingEventType `json:"type"`
	BookingID      int64            `json:"bookingId"`
	CreatorID      int64            `json:"creatorId"`
	ParticipantID  int64            `json:"participantId"`
	StartTime      time.Time        `json:"startTime"`
	EndTime        time.Time        `json:"endTime"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previousStatus,omitempty"`
	ActorID        int64            `json:"actorId"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
