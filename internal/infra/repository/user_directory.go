package repository

import (
	"context"

	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/usecase/commands"
)

//go:generate mockgen -source=user_directory.go -destination=../../../tests/mock/repository/user_directory_mock.go -package=repositorymock

type UserDirectoryQueries interface {
	GetUsersByIDs(ctx context.Context, db query.DBTX, ids []int64) ([]query.User, error)
}

// UserDirectory reads parties outside the booking transaction; working hours are not
// part of the conflict invariant.
type UserDirectory struct {
	queries UserDirectoryQueries
	db      query.DBTX
}

func NewUserDirectory(queries UserDirectoryQueries, db query.DBTX) *UserDirectory {
	return &UserDirectory{
		queries: queries,
		db:      db,
	}
}

var _ commands.UserDirectory = (*UserDirectory)(nil)

func (d *UserDirectory) FetchUsers(ctx context.Context, ids []int64) ([]commands.UserRecord, error) {
	rows, err := d.queries.GetUsersByIDs(ctx, d.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch users", err)
	}
	records := make([]commands.UserRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, commands.UserRecord{
			ID:           row.ID,
			Availability: row.Availability,
		})
	}
	return records, nil
}
