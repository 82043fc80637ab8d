package throttler

import (
	"context"
	"fmt"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const throttleTimeout = 2 * time.Second

// Throttler admits one request per user and scope within the configured window.
type Throttler struct {
	client  *redis.Client
	limit   time.Duration
	metrics *metrics.MetricsService
	log     *tracing.Logger
}

func NewThrottler(client *redis.Client, config *configuration.Config, metrics *metrics.MetricsService, log *tracing.Logger) *Throttler {
	return &Throttler{client: client, limit: config.Throttler.Limit, metrics: metrics, log: log}
}

// IsAllowed fails open: when Redis is unavailable every request is admitted.
func (x *Throttler) IsAllowed(ctx context.Context, scope string, userID string) bool {
	ctx, cancel := platform.ContextTimeoutVal(ctx, throttleTimeout)
	defer cancel()

	key := fmt.Sprintf("throttle:%s:%s", scope, userID)

	success, err := x.client.SetNX(ctx, key, time.Now().Unix(), x.limit).Result()
	if err != nil {
		x.log.E("Error setting throttle key", tracing.InnerError, err, tracing.UserId, userID)
		return true
	}

	if !success {
		x.metrics.RecordThrottled(scope)
	}

	return success
}
