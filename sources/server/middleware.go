package server

import (
	"context"
	"time"

	"fitcoach/sources/metrics"
	"fitcoach/sources/tracing"

	"github.com/gin-gonic/gin"
)

type Throttler interface {
	IsAllowed(ctx context.Context, scope string, userID string) bool
}

// requestLogger writes one structured line per request through the service logger.
func requestLogger(log *tracing.Logger, metrics *metrics.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, status, duration)

		fields := []any{
			tracing.RequestMethod, c.Request.Method,
			tracing.RequestPath, route,
			tracing.RequestStatus, status,
			tracing.ExecutionTime, duration.String(),
		}
		if id := userID(c); id != "" {
			fields = append(fields, tracing.UserId, id)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, tracing.InnerError, c.Errors.Last().Err)
		}

		switch {
		case status >= 500:
			log.E("Request failed", fields...)
		case status >= 400:
			log.W("Request rejected", fields...)
		default:
			log.I("Request served", fields...)
		}
	}
}

func throttle(throttler Throttler, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !throttler.IsAllowed(c.Request.Context(), scope, userID(c)) {
			respondError(c, errThrottled)
			return
		}
		c.Next()
	}
}
