package repository

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"gorm.io/gorm"
)

var ErrProfileNotFound = fmt.Errorf("user profile %w", platform.ErrNotFound)

type ProfilesRepository struct {
	db *gorm.DB
}

func NewProfilesRepository(db *gorm.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

func (x *ProfilesRepository) GetProfile(ctx context.Context, logger *tracing.Logger, userID string) (*entities.UserProfile, error) {
	defer tracing.ProfilePoint(logger, "Profiles get profile completed", "repository.profiles.get.profile", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var profile entities.UserProfile
	if err := x.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.W("Profile not found", tracing.UserId, userID)
			return nil, ErrProfileNotFound
		}
		logger.E("Failed to get profile", tracing.UserId, userID, tracing.InnerError, err)
		return nil, err
	}

	return &profile, nil
}

// ListUserIDs returns every known user id in a stable order.
func (x *ProfilesRepository) ListUserIDs(ctx context.Context, logger *tracing.Logger) ([]string, error) {
	defer tracing.ProfilePoint(logger, "Profiles list user ids completed", "repository.profiles.list.user.ids")()
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var ids []string
	if err := x.db.WithContext(ctx).Model(&entities.UserProfile{}).Order("id").Pluck("id", &ids).Error; err != nil {
		logger.E("Failed to list user ids", tracing.InnerError, err)
		return nil, err
	}

	return ids, nil
}

func (x *ProfilesRepository) CountProfiles(ctx context.Context, logger *tracing.Logger) (int64, error) {
	ctx, cancel := platform.ContextTimeoutVal(ctx, repositoryTimeout)
	defer cancel()

	var count int64
	if err := x.db.WithContext(ctx).Model(&entities.UserProfile{}).Count(&count).Error; err != nil {
		logger.E("Failed to count profiles", tracing.InnerError, err)
		return 0, err
	}
	return count, nil
}
