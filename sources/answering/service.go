package answering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fitcoach/sources/artificial"
	"fitcoach/sources/configuration"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/personalization"
	"fitcoach/sources/platform"
	"fitcoach/sources/texting"
	"fitcoach/sources/texting/transform"
	"fitcoach/sources/tracing"

	"golang.org/x/sync/singleflight"
)

const SystemPrompt = "You are a personalized health and fitness assistant. " +
	"Provide helpful, accurate, and personalized answers based on the user's profile and history. " +
	"Always prioritize health and safety in your responses.\n\nUser context:\n"

const questionPreviewLength = 80

type (
	ProfileReader interface {
		GetProfile(ctx context.Context, logger *tracing.Logger, userID string) (*entities.UserProfile, error)
	}

	PersonalizationReader interface {
		GetOrDefault(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error)
	}

	QueryLogger interface {
		LogQuery(ctx context.Context, logger *tracing.Logger, entry *entities.QueryLog) error
	}

	Cache interface {
		Key(query string) string
		Lookup(ctx context.Context, log *tracing.Logger, query string) (entities.StructuredAnswer, bool)
		Store(ctx context.Context, log *tracing.Logger, query string, answer entities.StructuredAnswer)
	}
)

type Result struct {
	Answer    entities.StructuredAnswer `json:"answer"`
	FromCache bool                      `json:"fromCache"`
}

// Service answers health questions with cache-aside lookups. Concurrent misses
// for the same fingerprint share one generation.
type Service struct {
	profiles         ProfileReader
	personalizations PersonalizationReader
	queries          QueryLogger
	cache            Cache
	completer        artificial.Completer
	toggles          features.Toggles
	metrics          *metrics.MetricsService
	config           configuration.AnswersConfig
	log              *tracing.Logger
	flight           singleflight.Group
}

func NewService(
	profiles ProfileReader,
	personalizations PersonalizationReader,
	queries QueryLogger,
	cache Cache,
	completer artificial.Completer,
	toggles features.Toggles,
	metrics *metrics.MetricsService,
	config *configuration.Config,
	log *tracing.Logger,
) *Service {
	return &Service{
		profiles:         profiles,
		personalizations: personalizations,
		queries:          queries,
		cache:            cache,
		completer:        completer,
		toggles:          toggles,
		metrics:          metrics,
		config:           config.Answers,
		log:              log,
	}
}

func (x *Service) Answer(ctx context.Context, userID string, question string) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, platform.ErrUnauthenticated
	}
	if strings.TrimSpace(question) == "" {
		x.metrics.RecordAnswer("invalid")
		return Result{}, fmt.Errorf("%w: question is empty", platform.ErrInvalidRequest)
	}

	log := x.log.With(tracing.UserId, userID)
	defer tracing.ProfilePoint(log, "Answer completed", "answering.answer", "question", transform.SmartTruncate(question, questionPreviewLength))()

	ctx, cancel := platform.ContextTimeoutVal(ctx, x.config.Timeout)
	defer cancel()

	useCache := x.toggles.IsEnabled(features.FeatureAnswerCache)
	if useCache {
		if answer, hit := x.cache.Lookup(ctx, log, question); hit {
			x.logQuery(ctx, log, userID, question, answer, true)
			x.metrics.RecordAnswer("cache")
			log.I("Answer served from cache", tracing.FromCache, true)
			return Result{Answer: answer, FromCache: true}, nil
		}
	}

	prompt, err := x.systemPrompt(ctx, log, userID)
	if err != nil {
		x.metrics.RecordAnswer(platform.ErrorCode(err))
		return Result{}, err
	}

	// Generation is detached from the caller's deadline and bounded by GenerationTimeout instead.
	detached := context.WithoutCancel(ctx)
	results := x.flight.DoChan(x.cache.Key(question), func() (any, error) {
		return x.generate(detached, log, question, prompt, useCache)
	})

	select {
	case <-ctx.Done():
		x.metrics.RecordAnswer("timeout")
		log.W("Answer timed out while waiting for generation", tracing.InnerError, ctx.Err())
		return Result{}, fmt.Errorf("%w: %w", platform.ErrTimeout, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			x.metrics.RecordAnswer(platform.ErrorCode(result.Err))
			return Result{}, result.Err
		}
		if result.Shared {
			x.metrics.RecordSharedAnswer()
		}

		answer := result.Val.(entities.StructuredAnswer)
		x.logQuery(ctx, log, userID, question, answer, false)
		x.metrics.RecordAnswer("generated")
		log.I("Answer generated", tracing.FromCache, false)
		return Result{Answer: answer, FromCache: false}, nil
	}
}

func (x *Service) systemPrompt(ctx context.Context, log *tracing.Logger, userID string) (string, error) {
	profile, err := x.profiles.GetProfile(ctx, log, userID)
	if err != nil {
		if platform.IsDeadline(ctx, err) {
			return "", fmt.Errorf("%w: load profile: %w", platform.ErrTimeout, err)
		}
		return "", err
	}

	current, err := x.personalizations.GetOrDefault(ctx, log, userID)
	if err != nil {
		log.W("Failed to load personalization, using defaults", tracing.InnerError, err)
		current = entities.DefaultPersonalization(userID)
	}

	return SystemPrompt + personalization.Assemble(profile, current), nil
}

func (x *Service) generate(ctx context.Context, log *tracing.Logger, question string, systemPrompt string, useCache bool) (entities.StructuredAnswer, error) {
	ctx, cancel := platform.ContextTimeoutVal(ctx, x.config.GenerationTimeout)
	defer cancel()

	raw, err := x.completer.Complete(ctx, log, artificial.CompletionRequest{
		Kind:         platform.QueryHealthQuestion,
		SystemPrompt: systemPrompt,
		UserPrompt:   question,
		Temperature:  *x.config.Temperature,
		MaxTokens:    x.config.MaxTokens,
	})
	if err != nil {
		if platform.IsDeadline(ctx, err) {
			return entities.StructuredAnswer{}, fmt.Errorf("%w: completion: %w", platform.ErrTimeout, err)
		}
		return entities.StructuredAnswer{}, fmt.Errorf("%w: %w", platform.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(raw) == "" {
		return entities.StructuredAnswer{}, fmt.Errorf("%w: %w", platform.ErrGenerationFailed, artificial.ErrEmptyCompletion)
	}

	answer := texting.Structure(raw)
	if useCache {
		x.cache.Store(ctx, log, question, answer)
	}
	return answer, nil
}

func (x *Service) logQuery(ctx context.Context, log *tracing.Logger, userID string, question string, answer entities.StructuredAnswer, fromCache bool) {
	response, err := json.Marshal(answer)
	if err != nil {
		log.W("Failed to encode answer for query log", tracing.InnerError, err)
		return
	}

	entry := &entities.QueryLog{
		UserID:    userID,
		Type:      platform.QueryHealthQuestion,
		Query:     question,
		Response:  string(response),
		FromCache: fromCache,
	}

	if err := x.queries.LogQuery(ctx, log, entry); err != nil {
		log.W("Failed to write query log", tracing.InnerError, err)
	}
}
