package repository

import (
	"context"
	"time"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"gorm.io/gorm"
)

type EventsRepository struct {
	db *gorm.DB
}

func NewEventsRepository(db *gorm.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

// ListInteractionsSince returns the user's valid interaction events at or after since, newest first.
func (x *EventsRepository) ListInteractionsSince(ctx context.Context, logger *tracing.Logger, userID string, since time.Time) ([]entities.InteractionEvent, error) {
	defer tracing.ProfilePoint(logger, "Events list interactions since completed", "repository.events.list.interactions.since", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var events []entities.InteractionEvent
	err := x.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ?", userID, since.UTC()).
		Order("occurred_at DESC").
		Find(&events).Error
	if err != nil {
		logger.E("Failed to list interactions", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}

	return validEvents(logger, events), nil
}

// ListRecentInteractions returns up to limit of the user's valid interaction events, newest first.
func (x *EventsRepository) ListRecentInteractions(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.InteractionEvent, error) {
	defer tracing.ProfilePoint(logger, "Events list recent interactions completed", "repository.events.list.recent.interactions", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var events []entities.InteractionEvent
	err := x.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		logger.E("Failed to list recent interactions", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}

	return validEvents(logger, events), nil
}

// ListRecentProgress returns up to limit of the user's progress records, newest first.
func (x *EventsRepository) ListRecentProgress(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.ProgressRecord, error) {
	defer tracing.ProfilePoint(logger, "Events list recent progress completed", "repository.events.list.recent.progress", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var records []entities.ProgressRecord
	err := x.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_on DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		logger.E("Failed to list recent progress", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}

	valid := records[:0]
	for _, record := range records {
		if err := record.Validate(); err != nil {
			logger.W("Skipping malformed progress record", tracing.UserId, userID, "record_id", record.ID, tracing.InnerError, err)
			continue
		}
		valid = append(valid, record)
	}

	return valid, nil
}

func (x *EventsRepository) AppendInteraction(ctx context.Context, logger *tracing.Logger, event *entities.InteractionEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	if err := x.db.WithContext(ctx).Create(event).Error; err != nil {
		logger.E("Failed to append interaction", tracing.UserId, event.UserID, tracing.InnerError, err)
		return err
	}
	return nil
}

func (x *EventsRepository) AppendProgress(ctx context.Context, logger *tracing.Logger, record *entities.ProgressRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	if err := x.db.WithContext(ctx).Create(record).Error; err != nil {
		logger.E("Failed to append progress", tracing.UserId, record.UserID, tracing.InnerError, err)
		return err
	}
	return nil
}

func validEvents(logger *tracing.Logger, events []entities.InteractionEvent) []entities.InteractionEvent {
	valid := events[:0]
	for _, event := range events {
		if err := event.Validate(); err != nil {
			logger.W("Skipping malformed interaction event", "event_id", event.ID, tracing.InnerError, err)
			continue
		}
		valid = append(valid, event)
	}
	return valid
}
