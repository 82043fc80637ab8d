package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPersonalizationNotFound = fmt.Errorf("personalization %w", platform.ErrNotFound)

type PersonalizationsRepository struct {
	db *gorm.DB
}

func NewPersonalizationsRepository(db *gorm.DB) *PersonalizationsRepository {
	return &PersonalizationsRepository{db: db}
}

func (x *PersonalizationsRepository) GetPersonalization(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error) {
	defer tracing.ProfilePoint(logger, "Personalizations get personalization completed", "repository.personalizations.get.personalization", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var personalization entities.Personalization
	if err := x.db.WithContext(ctx).Where("user_id = ?", userID).First(&personalization).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonalizationNotFound
		}
		logger.E("Failed to get personalization", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}

	personalization.Normalize()
	return &personalization, nil
}

// GetOrDefault never reports absence: a missing row resolves to the default template.
func (x *PersonalizationsRepository) GetOrDefault(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error) {
	personalization, err := x.GetPersonalization(ctx, logger, userID)
	if errors.Is(err, ErrPersonalizationNotFound) {
		logger.D("Personalization not found, using default template", tracing.UserId, userID)
		return entities.DefaultPersonalization(userID), nil
	}
	return personalization, err
}

// SavePersonalization overwrites the user's whole document.
func (x *PersonalizationsRepository) SavePersonalization(ctx context.Context, logger *tracing.Logger, personalization *entities.Personalization) error {
	defer tracing.ProfilePoint(logger, "Personalizations save personalization completed", "repository.personalizations.save.personalization", tracing.UserId, personalization.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	personalization.Normalize()
	if personalization.LastUpdated.IsZero() {
		personalization.LastUpdated = time.Now().UTC()
	}

	err := x.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(personalization).Error
	if err != nil {
		logger.E("Failed to save personalization", tracing.UserId, personalization.UserID, tracing.InnerError, err)
		return err
	}

	logger.D("Personalization saved", tracing.UserId, personalization.UserID, tracing.Confidence, personalization.ConfidenceScore)
	return nil
}
