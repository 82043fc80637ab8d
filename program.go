package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fitcoach/sources/answering"
	"fitcoach/sources/artificial"
	"fitcoach/sources/caching"
	"fitcoach/sources/configuration"
	"fitcoach/sources/external"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/metrics/collector"
	"fitcoach/sources/network"
	"fitcoach/sources/persistence"
	"fitcoach/sources/personalization"
	"fitcoach/sources/planning"
	"fitcoach/sources/platform"
	"fitcoach/sources/repository"
	"fitcoach/sources/server"
	"fitcoach/sources/throttler"
	"fitcoach/sources/tracing"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"
)

var (
	version   = "0.0.0"
	buildTime = "1970-01-01"
)

type cli struct {
	Config  string           `help:"Path to the YAML configuration file." env:"CONFIG_PATH" default:"config.yaml" type:"path"`
	Version kong.VersionFlag `help:"Print the version and exit."`

	Serve       struct{} `cmd:"" default:"1" help:"Run the HTTP API together with the nightly personalization scheduler."`
	Personalize struct{} `cmd:"" help:"Run a single personalization batch over every user and exit."`
}

func main() {
	platform.SetAppManifest(version, buildTime, time.Now())

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("fitcoach"),
		kong.Description("Personalized fitness answers and nutrition plans."),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version, buildTime)},
	)

	switch ctx.Command() {
	case "personalize":
		if err := personalize(configuration.Path(args.Config)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		serve(configuration.Path(args.Config))
	}
}

func core(path configuration.Path) fx.Option {
	return fx.Options(
		fx.Supply(path),
		tracing.Module,
		configuration.Module,
		persistence.Module,
		repository.Module,
		metrics.Module,
		personalization.Module,
	)
}

func serve(path configuration.Path) {
	fx.New(
		core(path),
		external.Module,
		network.Module,
		collector.Module,
		caching.Module,
		features.Module,
		throttler.Module,
		artificial.Module,
		answering.Module,
		planning.Module,
		server.Module,
		personalization.SchedulerModule,

		fx.Invoke(func(lc fx.Lifecycle, log *tracing.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.I("Fitcoach started successfully", "version", version, "build_time", buildTime)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.I("Fitcoach stopped", "version", version, "build_time", buildTime)
					return nil
				},
			})
		}),
	).Run()
}

func personalize(path configuration.Path) error {
	var (
		updater *personalization.Updater
		log     *tracing.Logger
	)

	app := fx.New(
		core(path),
		fx.NopLogger,
		fx.Populate(&updater, &log),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			log.E("Failed to stop cleanly", tracing.InnerError, err)
		}
	}()

	return personalization.RunBatch(context.Background(), updater, time.Now(), log)
}
