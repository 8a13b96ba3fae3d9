package readstore

import (
	"context"

	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/infra/repository/converter"
	"meeting-scheduler/internal/pkg/pgconv"
	"meeting-scheduler/internal/usecase/queries"
)

type BookingViewQueries interface {
	GetBookingByID(ctx context.Context, db query.DBTX, id int64) (query.Booking, error)
	ListBookingsForUser(ctx context.Context, db query.DBTX, arg query.ListBookingsForUserParams) ([]query.Booking, error)
}

type BookingReadStore struct {
	queries BookingViewQueries
	db      query.DBTX
}

func NewBookingReadStore(queries BookingViewQueries, db query.DBTX) *BookingReadStore {
	return &BookingReadStore{
		queries: queries,
		db:      db,
	}
}

var _ queries.BookingReadStore = (*BookingReadStore)(nil)

func (r *BookingReadStore) FindByID(ctx context.Context, id int64) (*queries.BookingView, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return rowToBookingView(row), nil
}

// FindForUser returns bookings where userID is either party, ordered by (start_time, id).
func (r *BookingReadStore) FindForUser(ctx context.Context, userID int64, filter queries.BookingListFilter, page queries.Page) ([]*queries.BookingView, error) {
	params := query.ListBookingsForUserParams{
		UserID:     userID,
		Statuses:   converter.StatusesToStrings(filter.Statuses),
		From:       pgconv.TimePtrToPgtype(filter.From),
		To:         pgconv.TimePtrToPgtype(filter.To),
		AfterStart: pgconv.TimePtrToPgtype(page.AfterStart),
		AfterID:    page.AfterID,
		Limit:      page.Limit,
	}

	rows, err := r.queries.ListBookingsForUser(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings for user", err)
	}

	result := make([]*queries.BookingView, len(rows))
	for i, row := range rows {
		result[i] = rowToBookingView(row)
	}
	return result, nil
}

func rowToBookingView(row query.Booking) *queries.BookingView {
	return &queries.BookingView{
		ID:            row.ID,
		CreatorID:     row.CreatorID,
		ParticipantID: row.ParticipantID,
		StartTime:     pgconv.TimeFromPgtype(row.StartTime).UTC(),
		EndTime:       pgconv.TimeFromPgtype(row.EndTime).UTC(),
		Status:        row.Status,
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt).UTC(),
		UpdatedAt:     pgconv.TimeFromPgtype(row.UpdatedAt).UTC(),
	}
}
