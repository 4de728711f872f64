package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/simp-lee/catalog/internal/pkg"
)

// RateLimitConfig allows at most Limit requests per Period from one client IP.
type RateLimitConfig struct {
	Limit  int64
	Period time.Duration
}

// RateLimit returns a gin middleware backed by an in-memory limiter store.
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; requests over the limit get 429 in the standard
// envelope. A store failure is logged and the request is let through.
func RateLimit(cfg RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: cfg.Period,
		Limit:  cfg.Limit,
	})

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lc, err := instance.Get(ctx, c.ClientIP())
		if err != nil {
			logger.WarnContext(ctx, "rate limiter unavailable", slog.Any("error", err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

		if lc.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.Response{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests",
			})
			return
		}

		c.Next()
	}
}
