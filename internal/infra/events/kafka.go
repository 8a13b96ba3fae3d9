package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"meeting-scheduler/internal/pkg/config"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

const headerEventType = "event-type"

var ErrPublish = errs.New("failed to publish booking event")

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	var acks kafka.RequiredAcks
	switch cfg.RequireAcks {
	case 0:
		acks = kafka.RequireNone
	case 1:
		acks = kafka.RequireOne
	default:
		acks = kafka.RequireAll
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           acks,
		MaxAttempts:            cfg.MaxAttempts,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		Async:                  cfg.Async,
		Completion:             logFailedDelivery,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			slog.Warn("kafka writer error", "detail", fmt.Sprintf(msg, args...))
		}),
	}
}

// logFailedDelivery reports async write failures, which never reach the caller of Publish.
func logFailedDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	slog.Warn("booking events not delivered",
		"count", len(messages),
		"error", err.Error())
}

// KafkaPublisher keys every message by booking id so one booking's events stay ordered.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher bounds each write by timeout; a non-positive timeout falls back to one second.
func NewKafkaPublisher(writer MessageWriter, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaPublisher{writer: writer, timeout: timeout}
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) Publish(ctx context.Context, event shared.BookingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "encode booking event"), ErrPublish)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Mark(errs.Wrapf(err, "write %s for booking %d", event.Type, event.BookingID), ErrPublish)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event shared.BookingEvent) error {
	slog.DebugContext(ctx, "event publication disabled", "type", string(event.Type), "booking_id", event.BookingID)
	return nil
}
