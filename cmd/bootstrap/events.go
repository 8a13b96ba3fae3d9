package bootstrap

import (
	"context"
	"log/slog"

	"meeting-scheduler/internal/infra/events"
	"meeting-scheduler/internal/pkg/config"
	"meeting-scheduler/internal/usecase/shared"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

// NewEventPublisher falls back to a no-op publisher when KAFKA_BROKERS is empty.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) shared.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		slog.Info("booking events disabled: no kafka brokers configured")
		return events.NopPublisher{}
	}

	publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka), cfg.Kafka.PublishTimeout)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			// flushes buffered messages
			return publisher.Close()
		},
	})

	slog.Info("booking events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "async", cfg.Kafka.Async)
	return publisher
}
