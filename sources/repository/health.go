package repository

import (
	"context"
	"time"

	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthRepository(db *gorm.DB, redis *redis.Client) *HealthRepository {
	return &HealthRepository{db: db, redis: redis}
}

func (x *HealthRepository) CheckDatabaseHealth(ctx context.Context, logger *tracing.Logger) error {
	defer tracing.ProfilePoint(logger, "Health check database completed", "repository.health.check.database")()
	ctx, cancel := platform.ContextTimeoutVal(ctx, 1*time.Second)
	defer cancel()

	sqldb, err := x.db.DB()
	if err == nil {
		err = sqldb.PingContext(ctx)
	}
	if err != nil {
		logger.E("Database health check failed", tracing.InnerError, err)
		return err
	}

	logger.D("Database health check passed")
	return nil
}

func (x *HealthRepository) CheckRedisHealth(ctx context.Context, logger *tracing.Logger) error {
	defer tracing.ProfilePoint(logger, "Health check redis completed", "repository.health.check.redis")()
	ctx, cancel := platform.ContextTimeoutVal(ctx, 1*time.Second)
	defer cancel()

	if err := x.redis.Ping(ctx).Err(); err != nil {
		logger.E("Redis health check failed", tracing.InnerError, err)
		return err
	}

	logger.D("Redis health check passed")
	return nil
}
