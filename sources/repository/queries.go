package repository

import (
	"context"
	"time"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"gorm.io/gorm"
)

type QueriesRepository struct {
	db *gorm.DB
}

func NewQueriesRepository(db *gorm.DB) *QueriesRepository {
	return &QueriesRepository{db: db}
}

func (x *QueriesRepository) LogQuery(ctx context.Context, logger *tracing.Logger, entry *entities.QueryLog) error {
	defer tracing.ProfilePoint(logger, "Queries log query completed", "repository.queries.log.query", tracing.UserId, entry.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := x.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.E("Failed to log query", tracing.UserId, entry.UserID, tracing.InnerError, err)
		return err
	}
	return nil
}

func (x *QueriesRepository) CountQueriesSince(ctx context.Context, logger *tracing.Logger, queryType string, since time.Time) (int64, error) {
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var count int64
	err := x.db.WithContext(ctx).
		Model(&entities.QueryLog{}).
		Where("type = ? AND created_at >= ?", queryType, since.UTC()).
		Count(&count).Error
	if err != nil {
		logger.E("Failed to count queries", tracing.InnerError, err)
		return 0, err
	}
	return count, nil
}
