package booking

import "slices"

var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusDeclined, StatusCancelled},
	StatusScheduled: {StatusCancelled, StatusOngoing},
	StatusOngoing:   {StatusCompleted},
}

type move struct {
	from, to Status
}

var permissions = map[Role][]move{
	RoleParticipant: {
		{StatusPending, StatusScheduled},
		{StatusPending, StatusDeclined},
	},
	RoleCreator: {
		{StatusPending, StatusCancelled},
		{StatusScheduled, StatusCancelled},
	},
	RoleSystem: {
		{StatusScheduled, StatusOngoing},
		{StatusOngoing, StatusCompleted},
	},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Authorize checks the state machine first and the role second, so a move out of a
// terminal state is always reported as such regardless of who asks.
func Authorize(actor Role, from, to Status) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if from.IsTerminal() {
		return ErrTerminalState
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	if !slices.Contains(permissions[actor], move{from: from, to: to}) {
		return ErrRoleNotPermitted
	}
	return nil
}
