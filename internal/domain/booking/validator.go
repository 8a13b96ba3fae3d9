package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/pkg/clock"
)

var (
	// ErrInvalidSlot groups timing failures: parse, past, look-ahead, grid, order, duration.
	ErrInvalidSlot = errors.New("invalid booking slot")
	// ErrPartyUnavailable groups working-hours failures for either party.
	ErrPartyUnavailable = errors.New("party is unavailable for the requested slot")
)

type Reason string

const (
	ReasonUnparseable            Reason = "unparseable_timestamp"
	ReasonInPast                 Reason = "in_past"
	ReasonBeyondLookahead        Reason = "beyond_lookahead"
	ReasonOffGrid                Reason = "off_grid"
	ReasonCreatorUnavailable     Reason = "creator_unavailable"
	ReasonParticipantUnavailable Reason = "participant_unavailable"
	ReasonStartNotBeforeEnd      Reason = "start_not_before_end"
	ReasonDurationMismatch       Reason = "duration_mismatch"
)

var reasonMessages = map[Reason]string{
	ReasonUnparseable:            "start and end time must be valid RFC 3339 timestamps",
	ReasonInPast:                 "bookings must be in the future",
	ReasonBeyondLookahead:        "booking is too far in the future",
	ReasonOffGrid:                "booking must start and end on the meeting grid",
	ReasonCreatorUnavailable:     "requested time is outside your working hours",
	ReasonParticipantUnavailable: "requested time is outside the participant's working hours",
	ReasonStartNotBeforeEnd:      "start time must be before end time",
	ReasonDurationMismatch:       "booking must last exactly one meeting duration",
}

func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// ValidationError carries the first rule a candidate slot broke.
type ValidationError struct {
	Reason Reason
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Reason, e.Reason.Message(), e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Reason.Message())
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrPartyUnavailable:
		return e.IsAvailability()
	case ErrInvalidSlot:
		return !e.IsAvailability()
	default:
		return false
	}
}

func (e *ValidationError) IsAvailability() bool {
	return e.Reason == ReasonCreatorUnavailable || e.Reason == ReasonParticipantUnavailable
}

type Policy struct {
	MeetingDuration time.Duration
	MaxLookahead    time.Duration
	Location        *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		MeetingDuration: 30 * time.Minute,
		MaxLookahead:    72 * time.Hour,
		Location:        time.UTC,
	}
}

func (p Policy) gridMinutes() int {
	return int(p.MeetingDuration / time.Minute)
}

// Parties holds the resolved schedules of both sides of a booking.
type Parties struct {
	Creator     availability.Schedule
	Participant availability.Schedule
}

type SlotValidator struct {
	policy Policy
	clock  clock.Clock
}

func NewSlotValidator(policy Policy, clk clock.Clock) *SlotValidator {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &SlotValidator{policy: policy, clock: clk}
}

func (v *SlotValidator) Policy() Policy {
	return v.policy
}

type stamp struct {
	field string
	at    time.Time
}

// Validate applies the timing rules in order and returns the minute-truncated slot on success.
func (v *SlotValidator) Validate(startRaw, endRaw string, parties Parties) (TimeSlot, error) {
	now := v.clock.Now()

	stamps := make([]stamp, 0, 2)
	for _, in := range []struct{ field, raw string }{{"startTime", startRaw}, {"endTime", endRaw}} {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(in.raw))
		if err != nil {
			return TimeSlot{}, &ValidationError{Reason: ReasonUnparseable, Field: in.field}
		}
		stamps = append(stamps, stamp{field: in.field, at: TruncateToMinute(t).In(v.policy.Location)})
	}

	for _, s := range stamps {
		if !s.at.After(now) {
			return TimeSlot{}, &ValidationError{Reason: ReasonInPast, Field: s.field}
		}
	}

	horizon := now.Add(v.policy.MaxLookahead)
	for _, s := range stamps {
		if s.at.After(horizon) {
			return TimeSlot{}, &ValidationError{Reason: ReasonBeyondLookahead, Field: s.field}
		}
	}

	grid := v.policy.gridMinutes()
	for _, s := range stamps {
		if grid > 0 && s.at.Minute()%grid != 0 {
			return TimeSlot{}, &ValidationError{Reason: ReasonOffGrid, Field: s.field}
		}
	}

	start, end := stamps[0].at, stamps[1].at
	if !covers(parties.Creator, start, end) {
		return TimeSlot{}, &ValidationError{Reason: ReasonCreatorUnavailable}
	}
	if !covers(parties.Participant, start, end) {
		return TimeSlot{}, &ValidationError{Reason: ReasonParticipantUnavailable}
	}

	if !start.Before(end) {
		return TimeSlot{}, &ValidationError{Reason: ReasonStartNotBeforeEnd}
	}

	if end.Sub(start) != v.policy.MeetingDuration {
		return TimeSlot{}, &ValidationError{Reason: ReasonDurationMismatch}
	}

	return TimeSlot{start: start.UTC(), end: end.UTC()}, nil
}

// covers checks each timestamp on its own and, for a well-ordered pair, that no gap
// between windows falls inside the interval. An end at the following midnight is read
// as 24:00 on the start day, so it is not looked up on the next weekday.
func covers(s availability.Schedule, start, end time.Time) bool {
	if !s.Covers(start) {
		return false
	}
	if !endsAtNextMidnight(start, end) && !s.Covers(end) {
		return false
	}
	if start.Before(end) {
		return s.ContainsInterval(start, end)
	}
	return true
}

func endsAtNextMidnight(start, end time.Time) bool {
	y, m, d := start.Date()
	return end.Equal(time.Date(y, m, d+1, 0, 0, 0, 0, start.Location()))
}
