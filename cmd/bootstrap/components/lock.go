package components

import (
	"log/slog"

	"meeting-scheduler/internal/infra/cache"
	"meeting-scheduler/internal/pkg/config"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/slotlock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var LockModule = fx.Module("lock",
	fx.Provide(
		fx.Annotate(
			NewLockCache,
			fx.As(new(slotlock.Cache)),
		),
		fx.Annotate(
			NewSlotMutex,
			fx.As(new(commands.SlotLocker)),
		),
	),
)

func NewLockCache(client *redis.Client) *cache.RedisCache {
	return cache.NewRedisCache(client)
}

func NewSlotMutex(c slotlock.Cache, cfg config.Config, logger *slog.Logger) *slotlock.Mutex {
	return slotlock.NewMutex(c, cfg.Booking.LockTTL, logger)
}
