package api

import (
	"log/slog"
	"net/http"

	"meeting-scheduler/internal/domain/booking"
	reqdto "meeting-scheduler/internal/handler/dto/request"
	"meeting-scheduler/internal/handler/httperr"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/queries"
	"meeting-scheduler/internal/usecase/slotlock"

	"github.com/gin-gonic/gin"
)

var (
	errUnauthenticated = errs.New("no authenticated user on request")
	errInvalidID       = errs.New("path id must be a positive integer")
)

const msgInternal = "Internal server error"

func abortUnauthenticated(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Unauthorized", nil)
}

func abortInvalidRequest(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", httperr.Reason("invalid_payload"))
}

func abortInternal(c *gin.Context, err error, op string) {
	slog.ErrorContext(c.Request.Context(), op+" failed",
		"error", err.Error(),
		"stack", errs.ExtractStackLines(err, 8))
	httperr.AbortWithError(c, http.StatusInternalServerError, err, msgInternal, nil)
}

// abortCreateError maps the create flow's failures, checked from most to least specific.
func abortCreateError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	switch {
	case errs.Is(err, reqdto.ErrCreatorMismatch):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Cannot book on behalf of another user", httperr.Reason("creator_mismatch"))
	case errs.As(err, &verr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, verr.Reason.Message(),
			httperr.ReasonDetail{Reason: string(verr.Reason), Field: verr.Field})
	case errs.Is(err, commands.ErrInvalidRequest):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking parties", httperr.Reason(partyReason(err)))
	case errs.Is(err, commands.ErrUnknownParty):
		httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", httperr.Reason("unknown_party"))
	case errs.Is(err, commands.ErrSlotContended):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot is being booked by another request", httperr.Reason(lockReason(err)))
	case errs.Is(err, commands.ErrBookingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot overlaps an existing booking", httperr.Reason("booking_conflict"))
	default:
		abortInternal(c, err, "create booking")
	}
}

func abortUpdateStatusError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.Is(err, commands.ErrNotBookingParty):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Only the creator or participant can change this booking", httperr.Reason("not_a_party"))
	case errs.Is(err, commands.ErrInvalidRequest):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Status change not allowed", httperr.Reason(transitionReason(err)))
	case errs.Is(err, commands.ErrConcurrentUpdate):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking was changed by another request", httperr.Reason("concurrent_update"))
	default:
		abortInternal(c, err, "update booking status")
	}
}

func abortQueryError(c *gin.Context, err error, op string) {
	switch {
	case errs.Is(err, queries.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.Is(err, queries.ErrUserNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", nil)
	case errs.Is(err, queries.ErrBookingAccess):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Booking is not visible to you", httperr.Reason("not_a_party"))
	case errs.IsAny(err, queries.ErrInvalidFilter, reqdto.ErrInvalidTimeRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid filter", httperr.Reason("invalid_filter"))
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", httperr.Reason("invalid_cursor"))
	default:
		abortInternal(c, err, op)
	}
}

func partyReason(err error) string {
	switch {
	case errs.Is(err, booking.ErrSameParty):
		return "same_party"
	case errs.Is(err, booking.ErrInvalidParty):
		return "invalid_party"
	default:
		return "invalid_request"
	}
}

func lockReason(err error) string {
	switch {
	case errs.Is(err, slotlock.ErrParticipantBusy):
		return "participant_busy"
	case errs.Is(err, slotlock.ErrLockUnavailable):
		return "lock_unavailable"
	default:
		return "slot_locked"
	}
}

func transitionReason(err error) string {
	switch {
	case errs.Is(err, booking.ErrInvalidStatus):
		return "invalid_status"
	case errs.Is(err, booking.ErrTerminalState):
		return "terminal_state"
	case errs.Is(err, booking.ErrRoleNotPermitted):
		return "role_not_permitted"
	default:
		return "invalid_transition"
	}
}
