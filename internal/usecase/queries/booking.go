package queries

import (
	"context"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/pkg/errs"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/queries/booking_mock.go -package=queriesmock

var (
	ErrBookingNotFound = errs.New("booking view not found")
	ErrBookingAccess   = errs.New("booking is not visible to caller")
	ErrUserNotFound    = errs.New("user not found")
	ErrInvalidFilter   = errs.New("invalid booking filter")
	ErrInvalidCursor   = errs.New("invalid cursor")
)

type BookingView struct {
	ID            int64     `json:"id"`
	CreatorID     int64     `json:"creatorId"`
	ParticipantID int64     `json:"participantId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (v *BookingView) HasParty(userID int64) bool {
	return v.CreatorID == userID || v.ParticipantID == userID
}

// BookingListFilter bounds are inclusive on start time. Empty Statuses means any.
type BookingListFilter struct {
	Statuses []booking.Status
	From     *time.Time
	To       *time.Time
}

// Page is a keyset position; a nil AfterStart is the first page.
type Page struct {
	AfterStart *time.Time
	AfterID    int64
	Limit      int32
}

type WorkingHoursView struct {
	UserID   int64                 `json:"userId"`
	Schedule availability.Schedule `json:"schedule"`
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id int64) (*BookingView, error)
	FindForUser(ctx context.Context, userID int64, filter BookingListFilter, page Page) ([]*BookingView, error)
}

type AvailabilityReadStore interface {
	FindAvailability(ctx context.Context, userID int64) ([]byte, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id, viewerID int64) (*BookingView, error)
	ListForUser(ctx context.Context, userID int64, filter BookingListFilter, cursor *Cursor, limit int) ([]*BookingView, *Cursor, error)
	WorkingHours(ctx context.Context, userID int64) (*WorkingHoursView, error)
}

type bookingQueriesImpl struct {
	bookings BookingReadStore
	users    AvailabilityReadStore
	resolver *availability.Resolver
}

func NewBookingQueries(bookings BookingReadStore, users AvailabilityReadStore, resolver *availability.Resolver) BookingQueries {
	return &bookingQueriesImpl{
		bookings: bookings,
		users:    users,
		resolver: resolver,
	}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id, viewerID int64) (*BookingView, error) {
	view, err := q.bookings.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !view.HasParty(viewerID) {
		return nil, ErrBookingAccess
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListForUser(ctx context.Context, userID int64, filter BookingListFilter, cursor *Cursor, limit int) ([]*BookingView, *Cursor, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, errs.Wrap(ErrInvalidFilter, "from is after to")
	}
	for _, s := range filter.Statuses {
		if !s.IsValid() {
			return nil, nil, errs.Wrapf(ErrInvalidFilter, "unknown status %q", s)
		}
	}

	limit = ValidateLimit(limit)
	page := Page{Limit: int32(limit + 1)}
	if cursor != nil && cursor.After != "" {
		start, id, err := DecodeAfterCursor(cursor.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		page.AfterStart = &start
		page.AfterID = id
	}

	rows, err := q.bookings.FindForUser(ctx, userID, filter, page)
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.StartTime, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *bookingQueriesImpl) WorkingHours(ctx context.Context, userID int64) (*WorkingHoursView, error) {
	raw, err := q.users.FindAvailability(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &WorkingHoursView{UserID: userID, Schedule: q.resolver.Resolve(raw)}, nil
}
