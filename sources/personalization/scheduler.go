package personalization

import (
	"context"
	"sync"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/tracing"

	"go.uber.org/fx"
)

type Runner interface {
	RunOnce(ctx context.Context, now time.Time) BatchResult
}

// Scheduler triggers personalization batches. The next batch starts one
// interval after the previous one finishes, so batches never overlap.
type Scheduler struct {
	log        *tracing.Logger
	runner     Runner
	interval   time.Duration
	runOnStart bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewScheduler(lc fx.Lifecycle, updater *Updater, config *configuration.Config, log *tracing.Logger) *Scheduler {
	s := newScheduler(updater, config.Personalization.Interval, config.Personalization.RunOnStart, log)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})

	return s
}

func newScheduler(runner Runner, interval time.Duration, runOnStart bool, log *tracing.Logger) *Scheduler {
	return &Scheduler{
		log:        log.With(tracing.Scope, "personalization_scheduler"),
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
	}
}

func (s *Scheduler) Start() {
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.start(runCtx)
}

// Stop cancels the in-flight batch and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) start(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	s.log.I("Personalization scheduler started", "interval", s.interval.String(), "run_on_start", s.runOnStart)

	if s.runOnStart {
		s.run(ctx)
		timer.Reset(s.interval)
	}

	for {
		select {
		case <-ctx.Done():
			s.log.I("Personalization scheduler stopped")
			return
		case <-timer.C:
			s.run(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	_ = RunBatch(ctx, s.runner, time.Now(), s.log)
}
