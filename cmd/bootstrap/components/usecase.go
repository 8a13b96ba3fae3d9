package components

import (
	"fmt"

	"meeting-scheduler/internal/domain/availability"
	"meeting-scheduler/internal/domain/booking"
	"meeting-scheduler/internal/pkg/clock"
	"meeting-scheduler/internal/pkg/config"
	"meeting-scheduler/internal/usecase"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	availability.NewResolver,
	NewBookingPolicy,
	booking.NewSlotValidator,
	commands.NewConflictDetector,
	func(cfg config.Config) commands.Settings {
		return commands.Settings{RequestTimeout: cfg.Booking.RequestTimeout}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewBookingPolicy(cfg config.Config) (booking.Policy, error) {
	loc, err := cfg.Booking.Location()
	if err != nil {
		return booking.Policy{}, fmt.Errorf("booking timezone: %w", err)
	}
	return booking.Policy{
		MeetingDuration: cfg.Booking.MeetingDuration,
		MaxLookahead:    cfg.Booking.MaxLookahead,
		Location:        loc,
	}, nil
}
