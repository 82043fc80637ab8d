package features

import (
	"context"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/tracing"

	"github.com/Unleash/unleash-client-go/v4"
)

const (
	FeatureAnswerCache     = "answers/cache"
	FeaturePlanPreferences = "plans/recent-preferences"
)

// defaults apply when Unleash is not configured or does not know the toggle.
var defaults = map[string]bool{
	FeatureAnswerCache:     true,
	FeaturePlanPreferences: true,
}

type Toggles interface {
	IsEnabled(featureName string) bool
}

type FeatureManager struct {
	client *unleash.Client
	log    *tracing.Logger
}

func NewFeatureManager(config *configuration.Config, log *tracing.Logger) (*FeatureManager, error) {
	settings := config.Features
	if settings.UnleashAPIURL == "" {
		log.I("Unleash is not configured, using static feature defaults")
		return &FeatureManager{log: log}, nil
	}

	client, err := unleash.NewClient(
		unleash.WithUrl(settings.UnleashAPIURL),
		unleash.WithAppName(settings.UnleashAppName),
		unleash.WithInstanceId(settings.UnleashInstanceID),
		unleash.WithRefreshInterval(time.Duration(settings.RefreshInterval)*time.Second),
		unleash.WithListener(&unleashListener{log: log}),
	)

	if err != nil {
		log.E("Failed to initialize Unleash client", tracing.InnerError, err)
		return nil, err
	}

	log.I("Unleash client initialized successfully",
		"api_url", settings.UnleashAPIURL,
		"app_name", settings.UnleashAppName,
		"instance_id", settings.UnleashInstanceID,
		"refresh_interval", settings.RefreshInterval,
	)

	return &FeatureManager{
		client: client,
		log:    log,
	}, nil
}

func (f *FeatureManager) IsEnabled(featureName string) bool {
	return f.IsEnabledDefault(featureName, defaults[featureName])
}

func (f *FeatureManager) IsEnabledDefault(featureName string, defaultValue bool) bool {
	if f.client == nil {
		return defaultValue
	}
	enabled := f.client.IsEnabled(featureName, unleash.WithFallback(defaultValue))
	if enabled != defaultValue {
		f.log.D("Feature toggle overrides default", tracing.FeatureName, featureName, tracing.FeatureFallback, defaultValue)
	}
	return enabled
}

func (f *FeatureManager) Close() error {
	if f.client == nil {
		return nil
	}
	f.log.I("Closing Unleash client")
	f.client.Close()
	return nil
}

// Static is a fixed toggle set, used where no feature service is available.
type Static map[string]bool

func (s Static) IsEnabled(featureName string) bool {
	if enabled, ok := s[featureName]; ok {
		return enabled
	}
	return defaults[featureName]
}

type unleashListener struct {
	log *tracing.Logger
}

func (l *unleashListener) OnReady() {
	l.log.I("Unleash client ready")
}

func (l *unleashListener) OnError(err error) {
	l.log.E("Unleash client error", tracing.InnerError, err)
}

func (l *unleashListener) OnWarning(warning error) {
	l.log.W("Unleash client warning", tracing.InnerError, warning)
}

func (l *unleashListener) OnCount(name string, enabled bool) {
}

func (l *unleashListener) OnSent(payload unleash.MetricsData) {
}

func (l *unleashListener) OnRegistered(payload unleash.ClientData) {
	l.log.I("Unleash client registered", "instance_id", payload.InstanceID)
}

func (f *FeatureManager) OnStop(ctx context.Context) error {
	return f.Close()
}
