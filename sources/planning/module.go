package planning

import (
	"fitcoach/sources/artificial"
	"fitcoach/sources/configuration"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/repository"
	"fitcoach/sources/tracing"

	"go.uber.org/fx"
)

var Module = fx.Module("planning",
	fx.Provide(
		provideService,
	),
)

func provideService(
	profiles *repository.ProfilesRepository,
	personalizations *repository.PersonalizationsRepository,
	events *repository.EventsRepository,
	plans *repository.PlansRepository,
	queries *repository.QueriesRepository,
	completer artificial.Completer,
	toggles features.Toggles,
	metrics *metrics.MetricsService,
	config *configuration.Config,
	log *tracing.Logger,
) (*Service, error) {
	return NewService(profiles, personalizations, events, plans, queries, completer, toggles, metrics, config, log)
}
