package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler recovers panics into a 500 JSON response and logs every
// request that ends in a server error with its method, path and user.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				event := requestEvent(c, logging.Error()).
					Interface("panic", rec).
					Bytes("stack", debug.Stack())
				event.Msg("panic while handling request")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			event := requestEvent(c, logging.Error()).Int("status", status)
			if len(c.Errors) > 0 {
				event = event.Str("errors", c.Errors.String())
			}
			event.Msg("request failed")
		}
	}
}

func requestEvent(c *gin.Context, event *zerolog.Event) *zerolog.Event {
	event = event.Str("method", c.Request.Method).Str("path", c.Request.URL.Path)
	if id, ok := UserID(c); ok {
		event = event.Str("user_id", id.String())
	}
	return event
}
