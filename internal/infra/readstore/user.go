package readstore

import (
	"context"

	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/pkg/pgconv"
	"meeting-scheduler/internal/usecase/queries"
)

type UserReadQueries interface {
	GetUserByID(ctx context.Context, db query.DBTX, id int64) (query.User, error)
}

type UserReadStore struct {
	queries UserReadQueries
	db      query.DBTX
}

func NewUserReadStore(queries UserReadQueries, db query.DBTX) *UserReadStore {
	return &UserReadStore{
		queries: queries,
		db:      db,
	}
}

var _ queries.AvailabilityReadStore = (*UserReadStore)(nil)

// FindAvailability returns the stored JSON as is; resolving it is the caller's job.
func (r *UserReadStore) FindAvailability(ctx context.Context, userID int64) ([]byte, error) {
	row, err := r.queries.GetUserByID(ctx, r.db, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return row.Availability, nil
}
