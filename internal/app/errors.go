package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/pkg"
)

// abortWithStatus ends the request with an error envelope whose message is
// the lower-cased standard status text.
func abortWithStatus(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: statusMessage(code)})
}

func statusMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "not found"
	case http.StatusMethodNotAllowed:
		return "method not allowed"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		if text := http.StatusText(code); text != "" {
			return text
		}
		return "error"
	}
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithStatus(c, http.StatusNotFound)
	}
}

func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithStatus(c, http.StatusMethodNotAllowed)
	}
}
