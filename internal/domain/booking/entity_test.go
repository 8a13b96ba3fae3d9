//go:build unit

package booking_test

import (
	"testing"
	"time"

	"meeting-scheduler/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, start time.Time, d time.Duration) booking.TimeSlot {
	t.Helper()
	slot, err := booking.NewTimeSlot(start, start.Add(d))
	require.NoError(t, err)
	return slot
}

func TestNewBooking(t *testing.T) {
	slot := mustSlot(t, monday8am.Add(time.Hour), 30*time.Minute)

	t.Run("starts pending", func(t *testing.T) {
		b, err := booking.NewBooking(1, 2, slot, monday8am)
		require.NoError(t, err)

		assert.Zero(t, b.ID())
		assert.Equal(t, int64(1), b.CreatorID())
		assert.Equal(t, int64(2), b.ParticipantID())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, slot, b.Slot())
		assert.Equal(t, monday8am, b.CreatedAt())
		assert.Equal(t, b.CreatedAt(), b.UpdatedAt())
	})

	testCases := []struct {
		name          string
		creator, part int64
		errIs         error
	}{
		{name: "zero creator", creator: 0, part: 2, errIs: booking.ErrInvalidParty},
		{name: "negative participant", creator: 1, part: -2, errIs: booking.ErrInvalidParty},
		{name: "self booking", creator: 3, part: 3, errIs: booking.ErrSameParty},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := booking.NewBooking(tc.creator, tc.part, slot, monday8am)
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestBooking_RoleOf(t *testing.T) {
	b := booking.ReconstructBooking(10, 1, 2, mustSlot(t, monday8am, 30*time.Minute), booking.StatusPending, monday8am, monday8am)

	role, ok := b.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, booking.RoleCreator, role)

	role, ok = b.RoleOf(2)
	assert.True(t, ok)
	assert.Equal(t, booking.RoleParticipant, role)

	_, ok = b.RoleOf(3)
	assert.False(t, ok)
}

func TestBooking_Transition(t *testing.T) {
	slot := mustSlot(t, monday8am, 30*time.Minute)
	later := monday8am.Add(time.Minute)

	t.Run("participant accepts", func(t *testing.T) {
		b := booking.ReconstructBooking(10, 1, 2, slot, booking.StatusPending, monday8am, monday8am)
		require.NoError(t, b.Transition(booking.RoleParticipant, booking.StatusScheduled, later))
		assert.Equal(t, booking.StatusScheduled, b.Status())
		assert.Equal(t, later, b.UpdatedAt())
		assert.Equal(t, monday8am, b.CreatedAt())
	})

	t.Run("rejected move leaves booking untouched", func(t *testing.T) {
		b := booking.ReconstructBooking(10, 1, 2, slot, booking.StatusPending, monday8am, monday8am)
		err := b.Transition(booking.RoleCreator, booking.StatusScheduled, later)
		assert.ErrorIs(t, err, booking.ErrRoleNotPermitted)
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, monday8am, b.UpdatedAt())
	})
}

func TestTimeSlot(t *testing.T) {
	t.Run("truncates to the minute", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(monday8am.Add(59*time.Second), monday8am.Add(30*time.Minute+time.Second))
		require.NoError(t, err)
		assert.Equal(t, monday8am, slot.Start())
		assert.Equal(t, monday8am.Add(30*time.Minute), slot.End())
	})

	t.Run("empty after truncation", func(t *testing.T) {
		_, err := booking.NewTimeSlot(monday8am, monday8am.Add(30*time.Second))
		assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
	})

	t.Run("overlap is strict", func(t *testing.T) {
		a := mustSlot(t, monday8am, 30*time.Minute)
		testCases := []struct {
			name  string
			other booking.TimeSlot
			want  bool
		}{
			{name: "same slot", other: a, want: true},
			{name: "touching after", other: mustSlot(t, monday8am.Add(30*time.Minute), 30*time.Minute), want: false},
			{name: "touching before", other: mustSlot(t, monday8am.Add(-30*time.Minute), 30*time.Minute), want: false},
			{name: "partial", other: mustSlot(t, monday8am.Add(15*time.Minute), 30*time.Minute), want: true},
			{name: "contained", other: mustSlot(t, monday8am.Add(10*time.Minute), 10*time.Minute), want: true},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, a.Overlaps(tc.other))
				assert.Equal(t, tc.want, tc.other.Overlaps(a))
			})
		}
	})
}

func TestParseStatus(t *testing.T) {
	st, err := booking.ParseStatus("scheduled")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusScheduled, st)

	_, err = booking.ParseStatus("SCHEDULED")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)

	assert.ElementsMatch(t,
		[]booking.Status{booking.StatusPending, booking.StatusScheduled, booking.StatusOngoing, booking.StatusCompleted},
		booking.BlockingStatuses())
	assert.False(t, booking.StatusCancelled.Blocks())
	assert.False(t, booking.StatusDeclined.Blocks())
}
