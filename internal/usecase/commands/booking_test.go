//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/pkg/clock"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/shared"
	"meeting-scheduler/internal/usecase/slotlock"
	"meeting-scheduler/tests/common/fakes"
	commandsmock "meeting-scheduler/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3

	lockPrefix = "booking:lock"
)

// Monday 2030-01-07 08:00 UTC; the default schedule opens at 09:00.
var now = time.Date(2030, time.January, 7, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2030, time.January, 7, hour, minute, 0, 0, time.UTC)
}

func stamp(hour, minute int) string {
	return at(hour, minute).Format(time.RFC3339)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedBooking(t *testing.T, store *fakes.MemoryStore, creator, participant int64, start, end time.Time, status booking.Status) int64 {
	t.Helper()
	slot, err := booking.NewTimeSlot(start, end)
	require.NoError(t, err)
	return store.Seed(booking.ReconstructBooking(0, creator, participant, slot, status, now, now))
}

type BookingCommandsSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	users     *commandsmock.MockUserDirectory
	cache     *fakes.MemoryCache
	store     *fakes.MemoryStore
	publisher *fakes.RecordingPublisher
	clock     *clock.MockClock
	logs      *bytes.Buffer
	uc        commands.BookingCommands
	ctx       context.Context
}

func (s *BookingCommandsSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = commandsmock.NewMockUserDirectory(s.ctrl)
	s.cache = fakes.NewMemoryCache()
	s.store = fakes.NewMemoryStore()
	s.publisher = &fakes.RecordingPublisher{}
	s.clock = clock.NewMockClock(now)
	s.ctx = context.Background()
	s.logs = &bytes.Buffer{}

	logger := discardLogger()
	s.uc = commands.NewBookingUseCase(
		s.store,
		s.users,
		availability.NewResolver(logger),
		booking.NewSlotValidator(booking.DefaultPolicy(), s.clock),
		slotlock.NewMutex(s.cache, 90*time.Second, logger),
		commands.NewConflictDetector(),
		s.publisher,
		s.clock,
		commands.Settings{RequestTimeout: 20 * time.Second},
		slog.New(slog.NewTextHandler(s.logs, nil)),
	)
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsSuite))
}

func (s *BookingCommandsSuite) expectUsers(creator, participant int64, records ...commands.UserRecord) {
	if records == nil {
		records = []commands.UserRecord{{ID: creator}, {ID: participant}}
	}
	s.users.EXPECT().
		FetchUsers(gomock.Any(), []int64{creator, participant}).
		Return(records, nil).
		AnyTimes()
}

func (s *BookingCommandsSuite) create(creator, participant int64, start, end string) (*commands.CreateBookingResult, error) {
	return s.uc.Create(s.ctx, commands.CreateBookingRequest{
		CreatorID:     creator,
		ParticipantID: participant,
		StartTime:     start,
		EndTime:       end,
	})
}

func (s *BookingCommandsSuite) assertNoLocksHeld() {
	s.Empty(s.cache.Keys(lockPrefix), "slot locks must be released")
}

func (s *BookingCommandsSuite) TestCreate_Success() {
	s.expectUsers(alice, bob)

	res, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))
	s.Require().NoError(err)
	s.Equal(int64(1), res.BookingID)

	stored, ok := s.store.Get(res.BookingID)
	s.Require().True(ok)
	s.Equal(booking.StatusPending, stored.Status())
	s.Equal(alice, stored.CreatorID())
	s.Equal(bob, stored.ParticipantID())
	s.True(stored.Slot().Start().Equal(at(9, 0)))
	s.True(stored.Slot().End().Equal(at(9, 30)))

	s.assertNoLocksHeld()
	s.Len(s.cache.Sets(), 2)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(shared.EventBookingCreated, events[0].Type)
	s.Equal(res.BookingID, events[0].BookingID)
	s.Equal("pending", events[0].Status)
	s.Equal(alice, events[0].ActorID)
	s.NotEmpty(events[0].ID)
	s.True(events[0].OccurredAt.Equal(now))
}

func (s *BookingCommandsSuite) TestCreate_SamePartyRejectedBeforeAnythingElse() {
	// no FetchUsers expectation: the directory must not be consulted
	_, err := s.create(alice, alice, "garbage", "garbage")

	s.True(errs.Is(err, commands.ErrInvalidRequest))
	s.True(errs.Is(err, booking.ErrSameParty))
	s.Empty(s.cache.Sets())
	s.Empty(s.store.All())
}

func (s *BookingCommandsSuite) TestCreate_NonPositivePartyID() {
	_, err := s.create(0, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrInvalidRequest))
	s.True(errs.Is(err, booking.ErrInvalidParty))
}

func (s *BookingCommandsSuite) TestCreate_UnknownParticipant() {
	s.expectUsers(alice, bob, commands.UserRecord{ID: alice})

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrUnknownParty))
	s.Contains(err.Error(), "participant 2")
	s.Empty(s.cache.Sets())
}

func (s *BookingCommandsSuite) TestCreate_InconsistentDirectory() {
	testCases := []struct {
		name    string
		records []commands.UserRecord
	}{
		{name: "unexpected user", records: []commands.UserRecord{{ID: alice}, {ID: bob}, {ID: carol}}},
		{name: "duplicate user", records: []commands.UserRecord{{ID: alice}, {ID: alice}, {ID: bob}}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.expectUsers(alice, bob, tc.records...)

			_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

			s.True(errs.Is(err, commands.ErrInconsistentDirectory))
		})
	}
}

func (s *BookingCommandsSuite) TestCreate_DirectoryFailure() {
	s.users.EXPECT().FetchUsers(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrDependency))
}

func (s *BookingCommandsSuite) TestCreate_ValidationFailsBeforeLocking() {
	tuesdayOnly := []byte(`[{"day":2,"times":[{"startTime":{"hours":9,"minutes":0},"endTime":{"hours":17,"minutes":0}}]}]`)

	testCases := []struct {
		name       string
		records    []commands.UserRecord
		start, end string
		reason     booking.Reason
		category   error
	}{
		{
			name:     "start in the past",
			start:    stamp(7, 30),
			end:      stamp(8, 0),
			reason:   booking.ReasonInPast,
			category: booking.ErrInvalidSlot,
		},
		{
			name:     "off the half-hour grid",
			start:    stamp(9, 15),
			end:      stamp(9, 45),
			reason:   booking.ReasonOffGrid,
			category: booking.ErrInvalidSlot,
		},
		{
			name:     "participant outside working hours",
			records:  []commands.UserRecord{{ID: alice}, {ID: bob, Availability: tuesdayOnly}},
			start:    stamp(9, 0),
			end:      stamp(9, 30),
			reason:   booking.ReasonParticipantUnavailable,
			category: booking.ErrPartyUnavailable,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.expectUsers(alice, bob, tc.records...)

			_, err := s.create(alice, bob, tc.start, tc.end)

			var verr *booking.ValidationError
			s.Require().True(errs.As(err, &verr))
			s.Equal(tc.reason, verr.Reason)
			s.True(errs.Is(err, tc.category))
			s.Empty(s.cache.Sets(), "no lock may be taken for an invalid slot")
			s.Empty(s.publisher.Events())
		})
	}
}

func (s *BookingCommandsSuite) TestCreate_OverlapWithExistingBooking() {
	s.expectUsers(alice, bob)
	// bob already meets carol at 09:00, as participant
	seedBooking(s.T(), s.store, carol, bob, at(9, 0), at(9, 30), booking.StatusScheduled)

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrBookingConflict))
	s.Len(s.store.All(), 1)
	s.assertNoLocksHeld()
	s.Empty(s.publisher.Events())
}

func (s *BookingCommandsSuite) TestCreate_NonBlockingNeighbours() {
	s.expectUsers(alice, bob)
	seedBooking(s.T(), s.store, alice, carol, at(9, 30), at(10, 0), booking.StatusPending)
	seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusCancelled)
	seedBooking(s.T(), s.store, bob, carol, at(9, 0), at(9, 30), booking.StatusDeclined)

	res, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.Require().NoError(err)
	s.Equal(int64(4), res.BookingID)
}

func (s *BookingCommandsSuite) TestCreate_SlotLockHeld() {
	s.expectUsers(alice, bob)
	r := slotlock.Request{CreatorID: carol, ParticipantID: bob, Start: at(9, 0)}
	s.cache.Put(r.ParticipantKey(), time.Minute)

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrSlotContended))
	s.True(errs.Is(err, slotlock.ErrSlotLocked))
	s.Empty(s.store.All())
	s.Equal([]string{r.ParticipantKey()}, s.cache.Keys(lockPrefix), "only the foreign key remains")
}

func (s *BookingCommandsSuite) TestCreate_CacheUnavailable() {
	s.expectUsers(alice, bob)
	s.cache.Fail = func(op, _ string) error {
		if op == fakes.OpSet {
			return fakes.ErrCacheDown
		}
		return nil
	}

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrSlotContended))
	s.True(errs.Is(err, slotlock.ErrLockUnavailable))
	s.Empty(s.store.All())
}

func (s *BookingCommandsSuite) TestCreate_StorageFailureReleasesLocks() {
	s.expectUsers(alice, bob)
	s.store.Fail = func(method string) error {
		if method == "Create" {
			return errors.New("disk full")
		}
		return nil
	}

	_, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.True(errs.Is(err, commands.ErrDependency))
	s.False(errs.Is(err, commands.ErrBookingConflict))
	s.assertNoLocksHeld()
	s.Empty(s.store.All())
}

func (s *BookingCommandsSuite) TestCreate_PublishFailureIgnored() {
	s.expectUsers(alice, bob)
	s.publisher.Err = errors.New("broker down")

	res, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))

	s.Require().NoError(err)
	s.Equal(int64(1), res.BookingID)
	s.Len(s.publisher.Events(), 1)
	s.Contains(s.logs.String(), "failed to publish booking event")
	s.Contains(s.logs.String(), "broker down")
}

func (s *BookingCommandsSuite) TestCreate_DoubleSubmit() {
	s.expectUsers(alice, bob)

	first, err := s.create(alice, bob, stamp(9, 0), stamp(9, 30))
	s.Require().NoError(err)

	_, err = s.create(alice, bob, stamp(9, 0), stamp(9, 30))
	s.True(errs.Is(err, commands.ErrBookingConflict))

	all := s.store.All()
	s.Require().Len(all, 1)
	s.Equal(first.BookingID, all[0].ID())
}

func (s *BookingCommandsSuite) TestCreate_ConcurrentAttemptsAdmitOne() {
	const attempts = 16
	s.users.EXPECT().FetchUsers(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ids []int64) ([]commands.UserRecord, error) {
			out := make([]commands.UserRecord, 0, len(ids))
			for _, id := range ids {
				out = append(out, commands.UserRecord{ID: id})
			}
			return out, nil
		}).
		AnyTimes()

	creators := []int64{alice, carol}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	start := make(chan struct{})
	for i := range attempts {
		wg.Add(1)
		go func(creator int64) {
			defer wg.Done()
			<-start
			_, err := s.create(creator, bob, stamp(10, 0), stamp(10, 30))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}(creators[i%len(creators)])
	}
	close(start)
	wg.Wait()

	s.Equal(1, successes)
	for _, err := range failures {
		s.True(errs.IsAny(err, commands.ErrSlotContended, commands.ErrBookingConflict), "unexpected error: %v", err)
	}
	s.Len(s.store.All(), 1)
	s.assertNoLocksHeld()
}

func (s *BookingCommandsSuite) TestCreate_PassesSlotToLocker() {
	locker := commandsmock.NewMockSlotLocker(s.ctrl)
	uc := commands.NewBookingUseCase(
		s.store,
		s.users,
		availability.NewResolver(discardLogger()),
		booking.NewSlotValidator(booking.DefaultPolicy(), s.clock),
		locker,
		commands.NewConflictDetector(),
		s.publisher,
		s.clock,
		commands.Settings{RequestTimeout: 20 * time.Second},
		discardLogger(),
	)
	s.expectUsers(alice, bob)

	locker.EXPECT().
		WithLease(gomock.Any(), slotlock.Request{CreatorID: alice, ParticipantID: bob, Start: at(11, 0)}, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ slotlock.Request, fn func(context.Context) error) error {
			deadline, ok := ctx.Deadline()
			s.True(ok)
			s.WithinDuration(time.Now().Add(20*time.Second), deadline, 5*time.Second)
			return fn(ctx)
		})

	res, err := uc.Create(s.ctx, commands.CreateBookingRequest{
		CreatorID:     alice,
		ParticipantID: bob,
		StartTime:     "2030-01-07T11:00:30Z",
		EndTime:       "2030-01-07T11:30:00Z",
	})
	s.Require().NoError(err)
	s.Equal(int64(1), res.BookingID)
}

func (s *BookingCommandsSuite) TestCreate_LockerRejection() {
	locker := commandsmock.NewMockSlotLocker(s.ctrl)
	uc := commands.NewBookingUseCase(
		s.store,
		s.users,
		availability.NewResolver(discardLogger()),
		booking.NewSlotValidator(booking.DefaultPolicy(), s.clock),
		locker,
		commands.NewConflictDetector(),
		s.publisher,
		s.clock,
		commands.Settings{},
		discardLogger(),
	)
	s.expectUsers(alice, bob)
	locker.EXPECT().WithLease(gomock.Any(), gomock.Any(), gomock.Any()).Return(slotlock.ErrParticipantBusy)

	_, err := uc.Create(s.ctx, commands.CreateBookingRequest{
		CreatorID:     alice,
		ParticipantID: bob,
		StartTime:     stamp(9, 0),
		EndTime:       stamp(9, 30),
	})

	s.True(errs.Is(err, commands.ErrSlotContended))
	s.True(errs.Is(err, slotlock.ErrParticipantBusy))
}

func (s *BookingCommandsSuite) updateStatus(id, actor int64, status string) (*booking.Booking, error) {
	return s.uc.UpdateStatus(s.ctx, commands.UpdateBookingStatusRequest{
		BookingID: id,
		ActorID:   actor,
		Status:    status,
	})
}

func (s *BookingCommandsSuite) TestUpdateStatus_ParticipantAccepts() {
	id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusPending)
	s.clock.Add(5 * time.Minute)

	updated, err := s.updateStatus(id, bob, "scheduled")
	s.Require().NoError(err)
	s.Equal(booking.StatusScheduled, updated.Status())
	s.True(updated.UpdatedAt().Equal(now.Add(5 * time.Minute)))

	stored, _ := s.store.Get(id)
	s.Equal(booking.StatusScheduled, stored.Status())

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(shared.EventBookingStatusChanged, events[0].Type)
	s.Equal("pending", events[0].PreviousStatus)
	s.Equal("scheduled", events[0].Status)
	s.Equal(bob, events[0].ActorID)
}

func (s *BookingCommandsSuite) TestUpdateStatus_CreatorCancelsScheduled() {
	id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusScheduled)

	updated, err := s.updateStatus(id, alice, "cancelled")

	s.Require().NoError(err)
	s.Equal(booking.StatusCancelled, updated.Status())
}

func (s *BookingCommandsSuite) TestUpdateStatus_Rejections() {
	testCases := []struct {
		name   string
		status booking.Status
		actor  int64
		target string
		cause  error
	}{
		{name: "declined is terminal", status: booking.StatusDeclined, actor: bob, target: "scheduled", cause: booking.ErrTerminalState},
		{name: "creator cannot accept", status: booking.StatusPending, actor: alice, target: "scheduled", cause: booking.ErrRoleNotPermitted},
		{name: "participant cannot cancel", status: booking.StatusScheduled, actor: bob, target: "cancelled", cause: booking.ErrRoleNotPermitted},
		{name: "parties cannot start a meeting", status: booking.StatusScheduled, actor: alice, target: "ongoing", cause: booking.ErrRoleNotPermitted},
		{name: "no skipping ahead", status: booking.StatusPending, actor: alice, target: "completed", cause: booking.ErrInvalidTransition},
		{name: "unknown status", status: booking.StatusPending, actor: bob, target: "archived", cause: booking.ErrInvalidStatus},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), tc.status)

			_, err := s.updateStatus(id, tc.actor, tc.target)

			s.True(errs.Is(err, commands.ErrInvalidRequest))
			s.True(errs.Is(err, tc.cause), "got %v", err)
			stored, _ := s.store.Get(id)
			s.Equal(tc.status, stored.Status())
			s.Empty(s.publisher.Events())
		})
	}
}

func (s *BookingCommandsSuite) TestUpdateStatus_NotFound() {
	_, err := s.updateStatus(404, alice, "cancelled")

	s.True(errs.Is(err, commands.ErrBookingNotFound))
}

func (s *BookingCommandsSuite) TestUpdateStatus_NotAParty() {
	id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusPending)

	_, err := s.updateStatus(id, carol, "cancelled")

	s.True(errs.Is(err, commands.ErrNotBookingParty))
}

func (s *BookingCommandsSuite) TestUpdateStatus_ConcurrentChange() {
	id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusPending)
	s.store.AfterFind = func(id int64) {
		s.store.SetStatus(id, booking.StatusCancelled)
	}

	_, err := s.updateStatus(id, bob, "scheduled")

	s.True(errs.Is(err, commands.ErrConcurrentUpdate))
	s.Empty(s.publisher.Events())
}

func (s *BookingCommandsSuite) TestUpdateStatus_StorageFailure() {
	id := seedBooking(s.T(), s.store, alice, bob, at(9, 0), at(9, 30), booking.StatusPending)
	s.store.Fail = func(method string) error {
		if method == "FindByID" {
			return errors.New("connection reset")
		}
		return nil
	}

	_, err := s.updateStatus(id, bob, "scheduled")

	s.True(errs.Is(err, commands.ErrDependency))
	s.False(errs.Is(err, commands.ErrBookingNotFound))
}

func TestCreate_RespectsCancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := commandsmock.NewMockUserDirectory(ctrl)
	users.EXPECT().FetchUsers(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []int64) ([]commands.UserRecord, error) {
			return nil, ctx.Err()
		})

	clk := clock.NewMockClock(now)
	uc := commands.NewBookingUseCase(
		fakes.NewMemoryStore(),
		users,
		availability.NewResolver(discardLogger()),
		booking.NewSlotValidator(booking.DefaultPolicy(), clk),
		slotlock.NewMutex(fakes.NewMemoryCache(), 90*time.Second, discardLogger()),
		commands.NewConflictDetector(),
		&fakes.RecordingPublisher{},
		clk,
		commands.Settings{RequestTimeout: time.Second},
		discardLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Create(ctx, commands.CreateBookingRequest{
		CreatorID:     alice,
		ParticipantID: bob,
		StartTime:     stamp(9, 0),
		EndTime:       stamp(9, 30),
	})

	require.Error(t, err)
	assert.True(t, errs.Is(err, commands.ErrDependency))
	assert.True(t, errs.Is(err, context.Canceled))
}
