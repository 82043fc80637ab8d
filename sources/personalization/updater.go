package personalization

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type (
	UserLister interface {
		ListUserIDs(ctx context.Context, logger *tracing.Logger) ([]string, error)
	}

	HistoryReader interface {
		ListInteractionsSince(ctx context.Context, logger *tracing.Logger, userID string, since time.Time) ([]entities.InteractionEvent, error)
		ListRecentProgress(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.ProgressRecord, error)
	}

	Store interface {
		GetOrDefault(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error)
		SavePersonalization(ctx context.Context, logger *tracing.Logger, personalization *entities.Personalization) error
	}
)

type UpdaterConfig struct {
	Workers       int
	RunDeadline   time.Duration
	UserTimeout   time.Duration
	Lookback      time.Duration
	ProgressLimit int
}

func NewUpdaterConfig(config *configuration.Config) UpdaterConfig {
	return UpdaterConfig{
		Workers:       config.Personalization.Workers,
		RunDeadline:   config.Personalization.RunDeadline,
		UserTimeout:   config.Personalization.UserTimeout,
		Lookback:      config.Personalization.LookbackWindow,
		ProgressLimit: config.Personalization.ProgressLimit,
	}
}

// BatchResult summarizes one pass over every known user. Err is set only
// when the batch could not run at all; per-user errors land in Failures.
type BatchResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Updated    int
	Failed     int
	Skipped    int
	Failures   map[string]error
	Err        error
}

type Updater struct {
	users      UserLister
	history    HistoryReader
	store      Store
	aggregator *Aggregator
	metrics    *metrics.MetricsService
	config     UpdaterConfig
	log        *tracing.Logger
}

func NewUpdater(
	users UserLister,
	history HistoryReader,
	store Store,
	aggregator *Aggregator,
	metrics *metrics.MetricsService,
	config UpdaterConfig,
	log *tracing.Logger,
) *Updater {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Updater{
		users:      users,
		history:    history,
		store:      store,
		aggregator: aggregator,
		metrics:    metrics,
		config:     config,
		log:        log,
	}
}

// RunBatch runs a single batch and returns an error only when the batch could
// not start. Users that failed or were skipped are logged and left for the
// next run.
func RunBatch(ctx context.Context, runner Runner, now time.Time, log *tracing.Logger) error {
	result := runner.RunOnce(ctx, now)
	if result.Err != nil {
		log.E("Personalization batch did not run", tracing.InnerError, result.Err)
		return result.Err
	}
	if result.Failed > 0 || result.Skipped > 0 {
		log.W("Personalization batch incomplete",
			tracing.BatchTotal, result.Total,
			tracing.BatchUpdated, result.Updated,
			tracing.BatchFailed, result.Failed,
			tracing.BatchSkipped, result.Skipped,
		)
	}
	return nil
}

// RunOnce recomputes every user's personalization with bounded concurrency.
// Once the run deadline passes no new users are started; work already in
// flight finishes under its own per-user timeout.
func (x *Updater) RunOnce(ctx context.Context, now time.Time) BatchResult {
	log := x.log.With(tracing.BatchId, uuid.NewString())
	result := BatchResult{StartedAt: time.Now(), Failures: map[string]error{}}

	defer func() {
		result.FinishedAt = time.Now()
		x.metrics.RecordPersonalizationBatch(result.FinishedAt.Sub(result.StartedAt), result.FinishedAt)
	}()

	users, err := x.users.ListUserIDs(ctx, log)
	if err != nil {
		log.E("Failed to list users for personalization", tracing.InnerError, err)
		result.Err = fmt.Errorf("list users: %w", err)
		return result
	}
	result.Total = len(users)
	log.I("Personalization batch started", tracing.BatchTotal, result.Total)

	scheduling, cancel := context.WithTimeout(ctx, x.config.RunDeadline)
	defer cancel()

	var mu sync.Mutex
	var group errgroup.Group
	group.SetLimit(x.config.Workers)

	for _, userID := range users {
		if scheduling.Err() != nil {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		group.Go(func() error {
			// Go blocks while the pool is full, so the deadline may pass while waiting for a slot.
			if scheduling.Err() != nil {
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			}

			err := x.updateUser(ctx, log, userID, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Failures[userID] = err
			} else {
				result.Updated++
			}
			return nil
		})
	}

	_ = group.Wait()

	log.I("Personalization batch finished",
		tracing.BatchTotal, result.Total,
		tracing.BatchUpdated, result.Updated,
		tracing.BatchFailed, result.Failed,
		tracing.BatchSkipped, result.Skipped,
	)
	return result
}

func (x *Updater) updateUser(ctx context.Context, log *tracing.Logger, userID string, now time.Time) (err error) {
	log = log.With(tracing.UserId, userID)

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: user %s: panic: %v", platform.ErrPartialAggregation, userID, recovered)
		}
		if err != nil {
			log.E("Personalization update failed", tracing.InnerError, err)
			x.metrics.RecordPersonalizationUpdate("failed")
			return
		}
		x.metrics.RecordPersonalizationUpdate("updated")
	}()

	ctx, cancel := platform.ContextTimeoutVal(ctx, x.config.UserTimeout)
	defer cancel()

	current, err := x.store.GetOrDefault(ctx, log, userID)
	if err != nil {
		return fmt.Errorf("%w: user %s: load personalization: %w", platform.ErrPartialAggregation, userID, err)
	}

	events, err := x.history.ListInteractionsSince(ctx, log, userID, now.Add(-x.config.Lookback))
	if err != nil {
		return fmt.Errorf("%w: user %s: load events: %w", platform.ErrPartialAggregation, userID, err)
	}

	progress, err := x.history.ListRecentProgress(ctx, log, userID, x.config.ProgressLimit)
	if err != nil {
		return fmt.Errorf("%w: user %s: load progress: %w", platform.ErrPartialAggregation, userID, err)
	}

	updated := x.aggregator.Aggregate(current, userID, events, progress, now)

	if err := x.store.SavePersonalization(ctx, log, updated); err != nil {
		return fmt.Errorf("%w: user %s: save personalization: %w", platform.ErrPartialAggregation, userID, err)
	}

	log.D("Personalization updated",
		tracing.EventsCount, len(events),
		tracing.ProgressCount, len(progress),
		tracing.Confidence, updated.ConfidenceScore,
	)
	return nil
}
