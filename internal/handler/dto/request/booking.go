package request

import (
	"time"

	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/queries"
)

var (
	ErrCreatorMismatch  = errs.New("creatorId must match the authenticated user")
	ErrInvalidTimeRange = errs.New("from and to must be RFC 3339 timestamps")
)

// Timestamps stay strings so the slot validator can report unparseable input with its own reason.
type CreateBookingRequest struct {
	CreatorID     *int64 `json:"creatorId,omitempty" binding:"omitempty,gt=0"`
	ParticipantID int64  `json:"participantId" binding:"required,gt=0"`
	StartTime     string `json:"startTime" binding:"required"`
	EndTime       string `json:"endTime" binding:"required"`
}

// ToCommand binds the request to the caller; creatorId may only restate the caller's own id.
// A body naming the same user twice is a party error before it is an ownership error.
func (r *CreateBookingRequest) ToCommand(callerID int64) (commands.CreateBookingRequest, error) {
	creatorID := callerID
	if r.CreatorID != nil {
		if err := booking.ValidateParties(*r.CreatorID, r.ParticipantID); err != nil {
			return commands.CreateBookingRequest{}, errs.Mark(err, commands.ErrInvalidRequest)
		}
		if *r.CreatorID != callerID {
			return commands.CreateBookingRequest{}, ErrCreatorMismatch
		}
		creatorID = *r.CreatorID
	}
	return commands.CreateBookingRequest{
		CreatorID:     creatorID,
		ParticipantID: r.ParticipantID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
	}, nil
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r *UpdateBookingStatusRequest) ToCommand(bookingID, actorID int64) commands.UpdateBookingStatusRequest {
	return commands.UpdateBookingStatusRequest{
		BookingID: bookingID,
		ActorID:   actorID,
		Status:    r.Status,
	}
}

type ListBookingsQuery struct {
	Status []string `form:"status"`
	From   string   `form:"from"`
	To     string   `form:"to"`
	Limit  int      `form:"limit" binding:"omitempty,min=1"`
	Cursor string   `form:"cursor"`
}

func (q *ListBookingsQuery) ToFilter() (queries.BookingListFilter, error) {
	var filter queries.BookingListFilter
	for _, s := range q.Status {
		filter.Statuses = append(filter.Statuses, booking.Status(s))
	}

	from, err := parseOptionalTime(q.From)
	if err != nil {
		return queries.BookingListFilter{}, errs.Wrap(ErrInvalidTimeRange, "from")
	}
	to, err := parseOptionalTime(q.To)
	if err != nil {
		return queries.BookingListFilter{}, errs.Wrap(ErrInvalidTimeRange, "to")
	}
	filter.From, filter.To = from, to
	return filter, nil
}

func (q *ListBookingsQuery) ToCursor() *queries.Cursor {
	if q.Cursor == "" {
		return nil
	}
	return &queries.Cursor{After: q.Cursor}
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
