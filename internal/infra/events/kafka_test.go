//go:build unit

package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"meeting-scheduler/internal/infra/events"
	"meeting-scheduler/internal/pkg/config"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	deadline time.Time
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.deadline, _ = ctx.Deadline()
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() shared.BookingEvent {
	start := time.Date(2030, time.January, 7, 9, 0, 0, 0, time.UTC)
	return shared.BookingEvent{
		ID:             "b7f0c6de-8f3c-4f57-9d4a-1f0b6b0f8a11",
		Type:           shared.EventBookingStatusChanged,
		BookingID:      42,
		CreatorID:      1,
		ParticipantID:  2,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
		Status:         "scheduled",
		PreviousStatus: "pending",
		ActorID:        2,
		OccurredAt:     start.Add(-time.Hour),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := events.NewKafkaPublisher(w, time.Second)
	event := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.True(t, msg.Time.Equal(event.OccurredAt))
	assert.Equal(t, []kafka.Header{{Key: "event-type", Value: []byte("booking.status_changed")}}, msg.Headers)
	assert.False(t, w.deadline.IsZero(), "writes must be bounded")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "booking.status_changed", decoded["type"])
	assert.Equal(t, float64(42), decoded["bookingId"])
	assert.Equal(t, "pending", decoded["previousStatus"])
	assert.Equal(t, "2030-01-07T09:00:00Z", decoded["startTime"])
}

func TestKafkaPublisher_OmitsEmptyPreviousStatus(t *testing.T) {
	w := &recordingWriter{}
	event := sampleEvent()
	event.Type = shared.EventBookingCreated
	event.PreviousStatus = ""

	require.NoError(t, events.NewKafkaPublisher(w, time.Second).Publish(context.Background(), event))

	assert.NotContains(t, string(w.messages[0].Value), "previousStatus")
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}

	err := events.NewKafkaPublisher(w, time.Second).Publish(context.Background(), sampleEvent())

	assert.True(t, errs.Is(err, events.ErrPublish))
	assert.Contains(t, err.Error(), "leader not available")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, events.NewKafkaPublisher(w, time.Second).Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter(t *testing.T) {
	w := events.NewKafkaWriter(config.KafkaConfig{
		Brokers:      []string{"broker-1:9092", "broker-2:9092"},
		Topic:        "booking-events",
		RequireAcks:  1,
		BatchTimeout: 50 * time.Millisecond,
		MaxAttempts:  3,
	})

	assert.Equal(t, "booking-events", w.Topic)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, "broker-1:9092,broker-2:9092", w.Addr.String())
	assert.False(t, w.Async)
}

func TestNewKafkaWriter_Async(t *testing.T) {
	w := events.NewKafkaWriter(config.KafkaConfig{
		Brokers: []string{"broker-1:9092"},
		Topic:   "booking-events",
		Async:   true,
	})

	assert.True(t, w.Async)
	require.NotNil(t, w.Completion, "async delivery failures must be observable")
	assert.NotPanics(t, func() {
		w.Completion([]kafka.Message{{Key: []byte("42")}}, errors.New("leader not available"))
		w.Completion(nil, nil)
	})
}

func TestKafkaPublisher_UsesConfiguredTimeout(t *testing.T) {
	testCases := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "configured", timeout: 250 * time.Millisecond, want: 250 * time.Millisecond},
		{name: "unset falls back to one second", timeout: 0, want: time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := &recordingWriter{}
			before := time.Now()

			require.NoError(t, events.NewKafkaPublisher(w, tc.timeout).Publish(context.Background(), sampleEvent()))

			remaining := w.deadline.Sub(before)
			assert.LessOrEqual(t, remaining, tc.want+50*time.Millisecond)
			assert.Greater(t, remaining, tc.want-50*time.Millisecond)
		})
	}
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, events.NopPublisher{}.Publish(context.Background(), sampleEvent()))
}
