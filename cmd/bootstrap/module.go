package bootstrap

import (
	"meeting-scheduler/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	EventsModule,
	JWTModule,
	components.PersistenceModule,
	components.LockModule,
	components.UseCaseModule,
	components.HandlerModule,
)
