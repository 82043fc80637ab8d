package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fitcoach/sources/artificial"
	"fitcoach/sources/configuration"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"
)

const (
	maxMealsPerDay     = 8
	maxSessionsPerWeek = 7
	maxSessionMinutes  = 240
	defaultListLimit   = 10
	maxListLimit       = 50
)

type (
	ProfileReader interface {
		GetProfile(ctx context.Context, logger *tracing.Logger, userID string) (*entities.UserProfile, error)
	}

	PersonalizationReader interface {
		GetOrDefault(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error)
	}

	EventReader interface {
		ListRecentInteractions(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.InteractionEvent, error)
	}

	PlanStore interface {
		SavePlan(ctx context.Context, logger *tracing.Logger, plan *entities.Plan) error
		ListPlans(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.Plan, error)
	}

	QueryLogger interface {
		LogQuery(ctx context.Context, logger *tracing.Logger, entry *entities.QueryLog) error
	}
)

type Service struct {
	profiles         ProfileReader
	personalizations PersonalizationReader
	events           EventReader
	plans            PlanStore
	queries          QueryLogger
	completer        artificial.Completer
	toggles          features.Toggles
	metrics          *metrics.MetricsService
	config           configuration.PlansConfig
	location         *time.Location
	log              *tracing.Logger
	now              func() time.Time
}

func NewService(
	profiles ProfileReader,
	personalizations PersonalizationReader,
	events EventReader,
	plans PlanStore,
	queries QueryLogger,
	completer artificial.Completer,
	toggles features.Toggles,
	metrics *metrics.MetricsService,
	config *configuration.Config,
	log *tracing.Logger,
) (*Service, error) {
	location, err := time.LoadLocation(config.Personalization.TimeZone)
	if err != nil {
		return nil, err
	}

	return &Service{
		profiles:         profiles,
		personalizations: personalizations,
		events:           events,
		plans:            plans,
		queries:          queries,
		completer:        completer,
		toggles:          toggles,
		metrics:          metrics,
		config:           config.Plans,
		location:         location,
		log:              log,
		now:              time.Now,
	}, nil
}

func ValidateParameters(parameters entities.PlanParameters) error {
	switch {
	case parameters.WeekNumber < 0:
		return fmt.Errorf("%w: weekNumber must not be negative", platform.ErrInvalidRequest)
	case parameters.MealsPerDay < 0 || parameters.MealsPerDay > maxMealsPerDay:
		return fmt.Errorf("%w: mealsPerDay must be between 0 and %d", platform.ErrInvalidRequest, maxMealsPerDay)
	case parameters.CalorieTarget < 0:
		return fmt.Errorf("%w: calorieTarget must not be negative", platform.ErrInvalidRequest)
	}
	return nil
}

func ValidateWorkoutParameters(parameters entities.PlanParameters) error {
	switch {
	case parameters.WeekNumber < 0:
		return fmt.Errorf("%w: weekNumber must not be negative", platform.ErrInvalidRequest)
	case parameters.SessionsPerWeek < 0 || parameters.SessionsPerWeek > maxSessionsPerWeek:
		return fmt.Errorf("%w: sessionsPerWeek must be between 0 and %d", platform.ErrInvalidRequest, maxSessionsPerWeek)
	case parameters.SessionMinutes < 0 || parameters.SessionMinutes > maxSessionMinutes:
		return fmt.Errorf("%w: sessionMinutes must be between 0 and %d", platform.ErrInvalidRequest, maxSessionMinutes)
	}
	return nil
}

// recipe holds what differs between plan types. Everything else, from
// loading the profile to persisting the result, is shared.
type recipe struct {
	planType     platform.PlanType
	queryType    platform.QueryType
	systemPrompt string
	temperature  float32
	maxTokens    int
	validate     func(parameters entities.PlanParameters) error
	prompt       func(ctx context.Context, log *tracing.Logger, profile *entities.UserProfile, current *entities.Personalization, parameters entities.PlanParameters) string
	// parse attaches the parsed body to the plan and returns it together
	// with the number of populated days or sessions.
	parse func(plan *entities.Plan, profile *entities.UserProfile, raw string) (any, int)
}

func (x *Service) nutrition() recipe {
	return recipe{
		planType:     platform.PlanNutrition,
		queryType:    platform.QueryNutritionPlan,
		systemPrompt: SystemPrompt,
		temperature:  *x.config.Temperature,
		maxTokens:    x.config.MaxTokens,
		validate:     ValidateParameters,
		prompt: func(ctx context.Context, log *tracing.Logger, profile *entities.UserProfile, current *entities.Personalization, parameters entities.PlanParameters) string {
			return BuildPrompt(profile, current, x.recentPreferences(ctx, log, profile.ID), parameters)
		},
		parse: func(plan *entities.Plan, profile *entities.UserProfile, raw string) (any, int) {
			plan.Body = ParsePlan(raw)
			days := populatedDays(plan.Body)
			x.metrics.RecordPlanDaysParsed(days)
			return plan.Body, days
		},
	}
}

func (x *Service) workout() recipe {
	return recipe{
		planType:     platform.PlanWorkout,
		queryType:    platform.QueryWorkoutPlan,
		systemPrompt: WorkoutSystemPrompt,
		temperature:  *x.config.WorkoutTemperature,
		maxTokens:    x.config.WorkoutMaxTokens,
		validate:     ValidateWorkoutParameters,
		prompt: func(ctx context.Context, log *tracing.Logger, profile *entities.UserProfile, current *entities.Personalization, parameters entities.PlanParameters) string {
			return BuildWorkoutPrompt(profile, current, parameters)
		},
		parse: func(plan *entities.Plan, profile *entities.UserProfile, raw string) (any, int) {
			body := ParseWorkoutPlan(raw, WorkoutWeeks)
			body.Duration = WorkoutDuration
			body.Difficulty = WorkoutDifficulty(profile.ActivityLevel)
			body.FocusAreas = WorkoutFocusAreas(profile.Goals)
			plan.Workout = body
			sessions := populatedSessions(body)
			x.metrics.RecordWorkoutSessionsParsed(sessions)
			return body, sessions
		},
	}
}

// GeneratePlan builds a weekly nutrition plan. Persisting the plan and its
// query log is best effort and never fails the request.
func (x *Service) GeneratePlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error) {
	return x.produce(ctx, userID, parameters, x.nutrition())
}

// GenerateWorkoutPlan builds a four week progressive workout plan and stores
// it the same way as nutrition plans.
func (x *Service) GenerateWorkoutPlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error) {
	return x.produce(ctx, userID, parameters, x.workout())
}

func (x *Service) produce(ctx context.Context, userID string, parameters entities.PlanParameters, r recipe) (*entities.Plan, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, platform.ErrUnauthenticated
	}
	if err := r.validate(parameters); err != nil {
		x.metrics.RecordPlanGenerated(r.planType, "invalid")
		return nil, err
	}

	log := x.log.With(tracing.UserId, userID, tracing.PlanType, r.planType)
	defer tracing.ProfilePoint(log, "Plan generation completed", "planning.generate")()

	ctx, cancel := platform.ContextTimeoutVal(ctx, x.config.Timeout)
	defer cancel()

	plan, err := x.generate(ctx, log, userID, parameters, r)
	if err != nil {
		x.metrics.RecordPlanGenerated(r.planType, platform.ErrorCode(err))
		return nil, err
	}

	x.metrics.RecordPlanGenerated(r.planType, "generated")
	return plan, nil
}

func (x *Service) generate(ctx context.Context, log *tracing.Logger, userID string, parameters entities.PlanParameters, r recipe) (*entities.Plan, error) {
	profile, err := x.profiles.GetProfile(ctx, log, userID)
	if err != nil {
		return nil, x.classify(ctx, "load profile", err)
	}

	current, err := x.personalizations.GetOrDefault(ctx, log, userID)
	if err != nil {
		log.W("Failed to load personalization, using defaults", tracing.InnerError, err)
		current = entities.DefaultPersonalization(userID)
	}

	prompt := r.prompt(ctx, log, profile, current, parameters)

	raw, err := x.completer.Complete(ctx, log, artificial.CompletionRequest{
		Kind:         r.queryType,
		SystemPrompt: r.systemPrompt,
		UserPrompt:   prompt,
		Temperature:  r.temperature,
		MaxTokens:    r.maxTokens,
	})
	if err != nil {
		if platform.IsDeadline(ctx, err) {
			return nil, fmt.Errorf("%w: completion: %w", platform.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", platform.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: %w", platform.ErrGenerationFailed, artificial.ErrEmptyCompletion)
	}

	plan := &entities.Plan{
		UserID:      userID,
		Type:        r.planType,
		WeekNumber:  orInt(parameters.WeekNumber, defaultWeek),
		Parameters:  parameters,
		Prompt:      prompt,
		RawResponse: raw,
		CreatedAt:   x.now().UTC(),
	}
	body, populated := r.parse(plan, profile, raw)

	if err := x.plans.SavePlan(ctx, log, plan); err != nil {
		log.W("Failed to persist plan", tracing.InnerError, err)
	} else {
		log = log.With(tracing.PlanId, plan.ID.String())
	}

	x.logQuery(ctx, log, r.queryType, userID, prompt, body)

	log.I("Plan generated", tracing.WeekNumber, plan.WeekNumber, "units_populated", populated)
	return plan, nil
}

func (x *Service) recentPreferences(ctx context.Context, log *tracing.Logger, userID string) string {
	if !x.toggles.IsEnabled(features.FeaturePlanPreferences) {
		return DefaultPreferences
	}

	events, err := x.events.ListRecentInteractions(ctx, log, userID, x.config.RecentEvents)
	if err != nil {
		log.W("Failed to load recent interactions, using default preferences", tracing.InnerError, err)
		return DefaultPreferences
	}

	return ExtractPreferences(events, x.location).Describe()
}

func (x *Service) logQuery(ctx context.Context, log *tracing.Logger, kind platform.QueryType, userID string, prompt string, body any) {
	response, err := json.Marshal(body)
	if err != nil {
		log.W("Failed to encode plan for query log", tracing.InnerError, err)
		return
	}

	entry := &entities.QueryLog{
		UserID:   userID,
		Type:     kind,
		Query:    prompt,
		Response: string(response),
	}

	if err := x.queries.LogQuery(ctx, log, entry); err != nil {
		log.W("Failed to write query log", tracing.InnerError, err)
	}
}

func (x *Service) ListPlans(ctx context.Context, userID string, limit int) ([]entities.Plan, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, platform.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	log := x.log.With(tracing.UserId, userID)
	plans, err := x.plans.ListPlans(ctx, log, userID, limit)
	if err != nil {
		return nil, x.classify(ctx, "list plans", err)
	}
	return plans, nil
}

func (x *Service) classify(ctx context.Context, action string, err error) error {
	if platform.IsDeadline(ctx, err) {
		return fmt.Errorf("%w: %s: %w", platform.ErrTimeout, action, err)
	}
	return err
}

func populatedDays(body *entities.PlanBody) int {
	count := 0
	for _, day := range body.Days {
		if len(day.Meals) > 0 {
			count++
		}
	}
	return count
}
