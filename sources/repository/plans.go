package repository

import (
	"context"
	"time"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"gorm.io/gorm"
)

type PlansRepository struct {
	db *gorm.DB
}

func NewPlansRepository(db *gorm.DB) *PlansRepository {
	return &PlansRepository{db: db}
}

func (x *PlansRepository) SavePlan(ctx context.Context, logger *tracing.Logger, plan *entities.Plan) error {
	defer tracing.ProfilePoint(logger, "Plans save plan completed", "repository.plans.save.plan", tracing.UserId, plan.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	if err := x.db.WithContext(ctx).Create(plan).Error; err != nil {
		logger.E("Failed to save plan", tracing.UserId, plan.UserID, tracing.InnerError, err)
		return err
	}

	logger.I("Plan saved", tracing.UserId, plan.UserID, tracing.PlanId, plan.ID, tracing.WeekNumber, plan.WeekNumber)
	return nil
}

// ListPlans returns the user's latest plans, newest first.
func (x *PlansRepository) ListPlans(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.Plan, error) {
	defer tracing.ProfilePoint(logger, "Plans list plans completed", "repository.plans.list.plans", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var plans []entities.Plan
	err := x.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		logger.E("Failed to list plans", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}
	return plans, nil
}
