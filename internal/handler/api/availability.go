package api

import (
	"net/http"

	resdto "meeting-scheduler/internal/handler/dto/response"
	"meeting-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	q queries.BookingQueries
}

func NewAvailabilityHandler(q queries.BookingQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Working hours
// @Description Resolved weekly working hours of a user. Users without stored hours get Monday to Friday 09:00-17:00.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} resdto.WorkingHoursResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /users/{id}/working-hours [get]
func (h *AvailabilityHandler) WorkingHours(c *gin.Context) {
	userID, err := parseID(c.Param("id"))
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	view, err := h.q.WorkingHours(c.Request.Context(), userID)
	if err != nil {
		abortQueryError(c, err, "get working hours")
		return
	}
	c.JSON(http.StatusOK, resdto.FromWorkingHours(view))
}
