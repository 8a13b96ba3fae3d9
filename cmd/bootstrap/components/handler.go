package components

import (
	"meeting-scheduler/internal/handler"
	"meeting-scheduler/internal/handler/api"
	"meeting-scheduler/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	bookings *api.BookingHandler,
	availability *api.AvailabilityHandler,
	auth *middleware.AuthMiddleware,
	logger *middleware.Logger,
) handler.Handlers {
	return handler.Handlers{
		Booking:      bookings,
		Availability: availability,
		Auth:         auth,
		Logger:       logger,
	}
}
