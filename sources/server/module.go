package server

import (
	"fitcoach/sources/answering"
	"fitcoach/sources/metrics"
	"fitcoach/sources/planning"
	"fitcoach/sources/repository"
	"fitcoach/sources/throttler"

	"go.uber.org/fx"
)

var Module = fx.Module("server",
	fx.Provide(
		func(
			answers *answering.Service,
			plans *planning.Service,
			health *repository.HealthRepository,
			throttler *throttler.Throttler,
			metrics *metrics.MetricsService,
		) Dependencies {
			return Dependencies{Answers: answers, Plans: plans, Health: health, Throttler: throttler, Metrics: metrics}
		},
		NewServer,
	),
	fx.Invoke(func(*Server) {}),
)
