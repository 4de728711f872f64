package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/domain"
	"github.com/simp-lee/catalog/internal/pkg"
)

// Recovery returns a gin middleware that turns a panic in a later handler
// into a logged 500 response using the standard JSON envelope:
//
//	{"code": 500, "message": "internal error", "data": null}
//
// If the handler had already started writing, the response is left as is.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("route", c.FullPath()),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			c.Abort()
			if c.Writer.Written() {
				return
			}
			pkg.Error(c, domain.ErrInternal)
		}()
		c.Next()
	}
}
