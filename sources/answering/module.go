package answering

import (
	"fitcoach/sources/artificial"
	"fitcoach/sources/caching"
	"fitcoach/sources/configuration"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/repository"
	"fitcoach/sources/tracing"

	"go.uber.org/fx"
)

var Module = fx.Module("answering",
	fx.Provide(
		provideService,
	),
)

func provideService(
	profiles *repository.ProfilesRepository,
	personalizations *repository.PersonalizationsRepository,
	queries *repository.QueriesRepository,
	cache *caching.ResponseCache,
	completer artificial.Completer,
	toggles features.Toggles,
	metrics *metrics.MetricsService,
	config *configuration.Config,
	log *tracing.Logger,
) *Service {
	return NewService(profiles, personalizations, queries, cache, completer, toggles, metrics, config, log)
}
