package bootstrap

import (
	"context"
	"log/slog"

	"meeting-scheduler/internal/infra/cache"
	"meeting-scheduler/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
	),
)

func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err.Error())
			}
			return nil
		},
	})

	return client, nil
}
