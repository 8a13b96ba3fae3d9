//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/infra/repository"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/tests/common/builder"
	repositorymock "meeting-scheduler/tests/mock/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserDirectory_FetchUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("success: rows become records", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockQueries := repositorymock.NewMockUserDirectoryQueries(ctrl)
		mockDB := &mockDBTX{}

		creator := builder.NewUserBuilder().BuildRow()
		participant := builder.NewUserBuilder().
			With(func(u *builder.UserBuilder) { u.ID = 2; u.Email = "p@example.com" }).
			AvailableOn(availability.NewTimeOfDay(10, 0), availability.NewTimeOfDay(12, 0), time.Tuesday).
			BuildRow()
		mockQueries.EXPECT().GetUsersByIDs(ctx, mockDB, []int64{1, 2}).Return([]query.User{creator, participant}, nil)

		got, err := repository.NewUserDirectory(mockQueries, mockDB).FetchUsers(ctx, []int64{1, 2})

		require.NoError(t, err)
		assert.Equal(t, []commands.UserRecord{
			{ID: 1},
			{ID: 2, Availability: participant.Availability},
		}, got)
	})

	t.Run("missing users are simply absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockQueries := repositorymock.NewMockUserDirectoryQueries(ctrl)
		mockDB := &mockDBTX{}
		mockQueries.EXPECT().GetUsersByIDs(ctx, mockDB, []int64{1, 2}).Return(nil, nil)

		got, err := repository.NewUserDirectory(mockQueries, mockDB).FetchUsers(ctx, []int64{1, 2})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("error: database error occurs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockQueries := repositorymock.NewMockUserDirectoryQueries(ctrl)
		mockDB := &mockDBTX{}
		mockQueries.EXPECT().GetUsersByIDs(ctx, mockDB, gomock.Any()).Return(nil, errors.New("too many connections"))

		_, err := repository.NewUserDirectory(mockQueries, mockDB).FetchUsers(ctx, []int64{1, 2})

		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
