package api

import (
	"net/http"
	"strconv"

	reqdto "meeting-scheduler/internal/handler/dto/request"
	resdto "meeting-scheduler/internal/handler/dto/response"
	"meeting-scheduler/internal/handler/middleware"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/commands"
	"meeting-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Book a meeting between the caller and a participant. creatorId defaults to the caller.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Create booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	cmd, err := req.ToCommand(callerID)
	if err != nil {
		abortCreateError(c, err)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), cmd)
	if err != nil {
		abortCreateError(c, err)
		return
	}

	c.Header("Location", "/api/bookings/"+strconv.FormatInt(result.BookingID, 10))
	c.JSON(http.StatusCreated, resdto.CreateBookingResponse{BookingID: result.BookingID})
}

// @Summary Update booking status
// @Description Accept, decline or cancel a booking. Allowed moves depend on the caller's role in it.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param request body reqdto.UpdateBookingStatusRequest true "Target status"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	var req reqdto.UpdateBookingStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		abortInvalidRequest(c, bindErr)
		return
	}

	updated, err := h.cmds.UpdateStatus(c.Request.Context(), req.ToCommand(id, actorID))
	if err != nil {
		abortUpdateStatusError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(updated))
}

// @Summary Get booking
// @Description Get a booking the caller takes part in
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	viewerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		abortQueryError(c, err, "get booking")
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List my bookings
// @Description Bookings where the caller is creator or participant, ordered by start time, with keyset pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query []string false "Status filter (repeatable)" collectionFormat(multi)
// @Param from query string false "Earliest start time, RFC 3339"
// @Param to query string false "Latest start time, RFC 3339"
// @Param limit query int false "Max items (default 50, max 200)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	var q reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		abortQueryError(c, err, "list bookings")
		return
	}

	views, next, err := h.q.ListForUser(c.Request.Context(), userID, filter, q.ToCursor(), q.Limit)
	if err != nil {
		abortQueryError(c, err, "list bookings")
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingList(views, next))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Wrapf(errInvalidID, "%q", raw)
	}
	return id, nil
}
