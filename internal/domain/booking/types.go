package booking

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	default:
		return false
	}
}

// Blocks reports whether a booking in this status occupies its parties' calendars.
func (s Status) Blocks() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusOngoing, StatusCompleted:
		return true
	default:
		return false
	}
}

func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusScheduled, StatusOngoing, StatusCompleted}
}

// Role is the capacity in which an actor touches a booking.
type Role string

const (
	RoleCreator     Role = "creator"
	RoleParticipant Role = "participant"
	// RoleSystem is the external scheduler driving wall-clock transitions.
	RoleSystem Role = "system"
)

func (r Role) String() string {
	return string(r)
}
