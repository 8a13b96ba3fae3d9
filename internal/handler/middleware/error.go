package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"meeting-scheduler/internal/handler/httperr"
	"meeting-scheduler/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

var (
	errMissingToken = errs.New("missing bearer token")
	errPanic        = errs.New("handler panicked")
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		// the most recent public error wins
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]

			if err.IsType(gin.ErrorTypePublic) {
				if resp, ok := err.Meta.(httperr.Response); ok {
					c.JSON(resp.Status, resp)
					return
				}
			}
		}
		if len(c.Errors) == 0 {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("recovered from panic",
					"error", fmt.Sprint(rec),
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c))

				httperr.AbortWithError(c, http.StatusInternalServerError,
					errs.Wrapf(errPanic, "%v", rec), "Internal server error", nil)
			}
		}()
		c.Next()
	}
}
