package collector

import (
	"context"
	"sync"
	"time"

	"fitcoach/sources/metrics"
	"fitcoach/sources/platform"
	"fitcoach/sources/repository"
	"fitcoach/sources/tracing"

	"go.uber.org/fx"
)

type StatsCollector struct {
	log      *tracing.Logger
	metrics  *metrics.MetricsService
	profiles *repository.ProfilesRepository
	queries  *repository.QueriesRepository
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewStatsCollector(
	lc fx.Lifecycle,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
	profiles *repository.ProfilesRepository,
	queries *repository.QueriesRepository,
) *StatsCollector {
	s := &StatsCollector{
		log:      log.With(tracing.Scope, "stats_collector"),
		metrics:  metrics,
		profiles: profiles,
		queries:  queries,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			s.wg.Add(1)
			go s.start(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.cancel()
			s.wg.Wait()
			return nil
		},
	})

	return s
}

func (s *StatsCollector) start(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.collectStats(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.collectStats(ctx)
		}
	}
}

func (s *StatsCollector) collectStats(ctx context.Context) {
	if count, err := s.profiles.CountProfiles(ctx, s.log); err == nil {
		s.metrics.SetTotalUsers(float64(count))
	} else {
		s.log.E("Failed to collect total users stats", tracing.InnerError, err)
	}

	since := time.Now().Add(-24 * time.Hour)

	if count, err := s.queries.CountQueriesSince(ctx, s.log, platform.QueryHealthQuestion, since); err == nil {
		s.metrics.SetDailyQuestions(float64(count))
	} else {
		s.log.E("Failed to collect daily questions stats", tracing.InnerError, err)
	}

	var plans int64
	for _, kind := range []platform.QueryType{platform.QueryNutritionPlan, platform.QueryWorkoutPlan} {
		count, err := s.queries.CountQueriesSince(ctx, s.log, kind, since)
		if err != nil {
			s.log.E("Failed to collect daily plans stats", tracing.InnerError, err, "query_type", kind)
			return
		}
		plans += count
	}
	s.metrics.SetDailyPlans(float64(plans))
}
