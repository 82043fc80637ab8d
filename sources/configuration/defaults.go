package configuration

import (
	"errors"
	"fmt"
	"time"

	"fitcoach/sources/platform"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// ApplyDefaults fills every unset knob with its documented default.
func (c *Config) ApplyDefaults() {
	if c.Service.SystemMetricsPort == 0 {
		c.Service.SystemMetricsPort = 10001
	}
	if c.Service.ApplicationMetricsPort == 0 {
		c.Service.ApplicationMetricsPort = 10002
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}

	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.TimeZone == "" {
		c.Database.TimeZone = "UTC"
	}

	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}

	if c.AI.Provider == "" {
		c.AI.Provider = ProviderOpenRouter
	}
	if c.AI.Model == "" {
		c.AI.Model = "openai/gpt-4o-mini"
	}
	if c.AI.ContextWindow == 0 {
		c.AI.ContextWindow = 128000
	}

	if c.Network.TimeoutSeconds == 0 {
		c.Network.TimeoutSeconds = 120
	}
	if c.Throttler.Limit == 0 {
		c.Throttler.Limit = 3 * time.Second
	}

	if c.Features.UnleashAppName == "" {
		c.Features.UnleashAppName = "fitcoach"
	}
	if c.Features.RefreshInterval == 0 {
		c.Features.RefreshInterval = 15
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 7 * 24 * time.Hour
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "answers:"
	}

	if c.Answers.Timeout == 0 {
		c.Answers.Timeout = 60 * time.Second
	}
	if c.Answers.GenerationTimeout == 0 {
		c.Answers.GenerationTimeout = 90 * time.Second
	}
	if c.Answers.Temperature == nil {
		c.Answers.Temperature = temperature(0.7)
	}
	if c.Answers.MaxTokens == 0 {
		c.Answers.MaxTokens = 1000
	}

	if c.Plans.Timeout == 0 {
		c.Plans.Timeout = 120 * time.Second
	}
	if c.Plans.Temperature == nil {
		c.Plans.Temperature = temperature(0.7)
	}
	if c.Plans.MaxTokens == 0 {
		c.Plans.MaxTokens = 2000
	}
	if c.Plans.RecentEvents == 0 {
		c.Plans.RecentEvents = 50
	}
	if c.Plans.WorkoutTemperature == nil {
		c.Plans.WorkoutTemperature = temperature(0.3)
	}
	if c.Plans.WorkoutMaxTokens == 0 {
		c.Plans.WorkoutMaxTokens = 2000
	}

	if c.Personalization.Interval == 0 {
		c.Personalization.Interval = 24 * time.Hour
	}
	if c.Personalization.Workers == 0 {
		c.Personalization.Workers = 8
	}
	if c.Personalization.RunDeadline == 0 {
		c.Personalization.RunDeadline = time.Hour
	}
	if c.Personalization.UserTimeout == 0 {
		c.Personalization.UserTimeout = 30 * time.Second
	}
	if c.Personalization.LookbackWindow == 0 {
		c.Personalization.LookbackWindow = 30 * 24 * time.Hour
	}
	if c.Personalization.ProgressLimit == 0 {
		c.Personalization.ProgressLimit = 30
	}
	if c.Personalization.TimeZone == "" {
		c.Personalization.TimeZone = "UTC"
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.AI.Provider {
	case ProviderOpenRouter:
		errs = append(errs, platform.ValidateOpenRouterToken(c.AI.OpenRouterToken))
	case ProviderOpenAI:
		errs = append(errs, platform.ValidateOpenAIToken(c.AI.OpenAIToken))
	default:
		errs = append(errs, fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderOpenRouter, ProviderOpenAI, c.AI.Provider))
	}

	errs = append(errs,
		platform.ValidateNotEmpty(c.Auth.JWTSecret, "auth.jwt_secret"),
		platform.ValidateNotEmpty(c.Database.Host, "database.host"),
		platform.ValidateNotEmpty(c.Redis.Host, "redis.host"),
		platform.ValidateRange(c.Personalization.Workers, 1, 256, "personalization.workers"),
	)

	if _, err := time.LoadLocation(c.Personalization.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("personalization.time_zone: %w", err))
	}

	for name, value := range map[string]*float32{
		"answers.temperature":       c.Answers.Temperature,
		"plans.temperature":         c.Plans.Temperature,
		"plans.workout_temperature": c.Plans.WorkoutTemperature,
	} {
		if value != nil && (*value < 0 || *value > 2) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 2, got %v", name, *value))
		}
	}

	return errors.Join(errs...)
}

func temperature(value float32) *float32 {
	return &value
}
