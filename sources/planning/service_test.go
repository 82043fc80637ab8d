package planning

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitcoach/sources/artificial"
	"fitcoach/sources/configuration"
	"fitcoach/sources/features"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/repository"
	"fitcoach/sources/tracing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(ctx context.Context, logger *tracing.Logger, userID string) (*entities.UserProfile, error) {
	if userID == "ghost" {
		return nil, repository.ErrProfileNotFound
	}
	return &entities.UserProfile{ID: userID, Age: 28, Goals: []string{"endurance"}}, nil
}

type fakePersonalizations struct{}

func (fakePersonalizations) GetOrDefault(ctx context.Context, logger *tracing.Logger, userID string) (*entities.Personalization, error) {
	return entities.DefaultPersonalization(userID), nil
}

type fakeEvents struct {
	limit  int
	events []entities.InteractionEvent
	err    error
}

func (f *fakeEvents) ListRecentInteractions(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.InteractionEvent, error) {
	f.limit = limit
	return f.events, f.err
}

type fakePlans struct {
	mu    sync.Mutex
	saved []entities.Plan
	err   error
}

func (f *fakePlans) SavePlan(ctx context.Context, logger *tracing.Logger, plan *entities.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	plan.ID = uuid.New()
	f.saved = append(f.saved, *plan)
	return nil
}

func (f *fakePlans) ListPlans(ctx context.Context, logger *tracing.Logger, userID string, limit int) ([]entities.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var plans []entities.Plan
	for _, plan := range f.saved {
		if plan.UserID == userID && len(plans) < limit {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

type fakeQueries struct {
	entries []entities.QueryLog
	err     error
}

func (f *fakeQueries) LogQuery(ctx context.Context, logger *tracing.Logger, entry *entities.QueryLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeCompleter struct {
	requests []artificial.CompletionRequest
	response string
	err      error
	block    bool
}

func (f *fakeCompleter) Complete(ctx context.Context, log *tracing.Logger, request artificial.CompletionRequest) (string, error) {
	f.requests = append(f.requests, request)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

type planHarness struct {
	service   *Service
	events    *fakeEvents
	plans     *fakePlans
	queries   *fakeQueries
	completer *fakeCompleter
}

func newPlanHarness(t *testing.T, toggles features.Toggles) *planHarness {
	t.Helper()

	config := &configuration.Config{}
	config.ApplyDefaults()
	log := tracing.NewSilentLogger()

	h := &planHarness{
		events: &fakeEvents{events: []entities.InteractionEvent{
			recipe(platform.EventRecipeView, "Korean"),
			mealAt(13),
		}},
		plans:     &fakePlans{},
		queries:   &fakeQueries{},
		completer: &fakeCompleter{response: samplePlan},
	}

	service, err := NewService(fakeProfiles{}, fakePersonalizations{}, h.events, h.plans, h.queries, h.completer, toggles, metrics.NewMetricsService(log), config, log)
	require.NoError(t, err)
	h.service = service
	return h
}

func TestGeneratePlan(t *testing.T) {
	h := newPlanHarness(t, features.Static{})

	plan, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{WeekNumber: 2})
	require.NoError(t, err)

	assert.Equal(t, "u1", plan.UserID)
	assert.Equal(t, platform.PlanNutrition, plan.Type)
	assert.Equal(t, 2, plan.WeekNumber)
	assert.Len(t, plan.Body.Days, 7)
	assert.Equal(t, samplePlan, plan.RawResponse)
	assert.Contains(t, plan.Prompt, "they tend to prefer Korean cuisine, and typically eats their main meal between 13:00 and 13:00.")

	require.Len(t, h.completer.requests, 1)
	request := h.completer.requests[0]
	assert.Equal(t, SystemPrompt, request.SystemPrompt)
	assert.Equal(t, plan.Prompt, request.UserPrompt)
	assert.InDelta(t, 0.7, request.Temperature, 1e-6)
	assert.Equal(t, 2000, request.MaxTokens)
	assert.Equal(t, 50, h.events.limit)

	require.Len(t, h.plans.saved, 1)
	assert.Equal(t, plan.Prompt, h.plans.saved[0].Prompt)
	require.Len(t, h.queries.entries, 1)
	assert.Equal(t, platform.QueryNutritionPlan, h.queries.entries[0].Type)

	plans, err := h.service.ListPlans(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestGeneratePlanDefaultsWeek(t *testing.T) {
	h := newPlanHarness(t, features.Static{})

	plan, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{})

	require.NoError(t, err)
	assert.Equal(t, 1, plan.WeekNumber)
}

func TestGeneratePlanPreferencesToggle(t *testing.T) {
	h := newPlanHarness(t, features.Static{features.FeaturePlanPreferences: false})

	plan, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{})

	require.NoError(t, err)
	assert.Contains(t, plan.Prompt, "they tend to prefer "+DefaultPreferences+".")
	assert.Zero(t, h.events.limit)
}

func TestGeneratePlanRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		parameters entities.PlanParameters
		expected   error
	}{
		{name: "Missing caller", userID: "", expected: platform.ErrUnauthenticated},
		{name: "Negative week", userID: "u1", parameters: entities.PlanParameters{WeekNumber: -1}, expected: platform.ErrInvalidRequest},
		{name: "Too many meals", userID: "u1", parameters: entities.PlanParameters{MealsPerDay: 9}, expected: platform.ErrInvalidRequest},
		{name: "Negative calories", userID: "u1", parameters: entities.PlanParameters{CalorieTarget: -100}, expected: platform.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPlanHarness(t, features.Static{})

			_, err := h.service.GeneratePlan(context.Background(), tt.userID, tt.parameters)

			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, h.completer.requests)
		})
	}
}

func TestGeneratePlanFailures(t *testing.T) {
	t.Run("Missing profile", func(t *testing.T) {
		h := newPlanHarness(t, features.Static{})

		_, err := h.service.GeneratePlan(context.Background(), "ghost", entities.PlanParameters{})

		assert.ErrorIs(t, err, platform.ErrNotFound)
		assert.Empty(t, h.completer.requests)
	})

	t.Run("Completion error", func(t *testing.T) {
		h := newPlanHarness(t, features.Static{})
		h.completer.err = errors.New("rate limited")

		_, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{})

		assert.ErrorIs(t, err, platform.ErrGenerationFailed)
		assert.Empty(t, h.plans.saved)
	})

	t.Run("Caller deadline", func(t *testing.T) {
		h := newPlanHarness(t, features.Static{})
		h.completer.block = true
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := h.service.GeneratePlan(ctx, "u1", entities.PlanParameters{})

		assert.ErrorIs(t, err, platform.ErrTimeout)
	})

	t.Run("Persistence failures are swallowed", func(t *testing.T) {
		h := newPlanHarness(t, features.Static{})
		h.plans.err = errors.New("disk full")
		h.queries.err = errors.New("disk full")

		plan, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{})

		require.NoError(t, err)
		assert.Len(t, plan.Body.Days, 7)
	})

	t.Run("Event read failure uses default preferences", func(t *testing.T) {
		h := newPlanHarness(t, features.Static{})
		h.events.err = errors.New("timeout")

		plan, err := h.service.GeneratePlan(context.Background(), "u1", entities.PlanParameters{})

		require.NoError(t, err)
		assert.Contains(t, plan.Prompt, DefaultPreferences)
	})
}

func TestGenerateWorkoutPlan(t *testing.T) {
	h := newPlanHarness(t, features.Static{})
	h.completer.response = sampleWorkout

	plan, err := h.service.GenerateWorkoutPlan(context.Background(), "u1", entities.PlanParameters{SessionsPerWeek: 4})
	require.NoError(t, err)

	assert.Equal(t, platform.PlanWorkout, plan.Type)
	assert.Equal(t, 1, plan.WeekNumber)
	assert.Nil(t, plan.Body)
	require.NotNil(t, plan.Workout)
	assert.Len(t, plan.Workout.Weeks, WorkoutWeeks)
	assert.Equal(t, WorkoutDuration, plan.Workout.Duration)
	assert.Equal(t, DifficultyIntermediate, plan.Workout.Difficulty)
	assert.Equal(t, []string{"cardio endurance"}, plan.Workout.FocusAreas)
	assert.Contains(t, plan.Prompt, "- Sessions per week: 4\n")

	require.Len(t, h.completer.requests, 1)
	request := h.completer.requests[0]
	assert.Equal(t, platform.QueryWorkoutPlan, request.Kind)
	assert.Equal(t, WorkoutSystemPrompt, request.SystemPrompt)
	assert.InDelta(t, 0.3, request.Temperature, 1e-6)
	assert.Equal(t, 2000, request.MaxTokens)
	assert.Zero(t, h.events.limit)

	require.Len(t, h.plans.saved, 1)
	assert.Equal(t, platform.PlanWorkout, h.plans.saved[0].Type)
	require.Len(t, h.queries.entries, 1)
	assert.Equal(t, platform.QueryWorkoutPlan, h.queries.entries[0].Type)
	assert.Contains(t, h.queries.entries[0].Response, `"duration":"4 weeks"`)
}

func TestGenerateWorkoutPlanFailures(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		parameters entities.PlanParameters
		prepare    func(h *planHarness)
		expected   error
		completed  bool
	}{
		{name: "Missing caller", userID: " ", expected: platform.ErrUnauthenticated},
		{name: "Too many sessions", userID: "u1", parameters: entities.PlanParameters{SessionsPerWeek: 8}, expected: platform.ErrInvalidRequest},
		{name: "Session too long", userID: "u1", parameters: entities.PlanParameters{SessionMinutes: 300}, expected: platform.ErrInvalidRequest},
		{name: "Negative week", userID: "u1", parameters: entities.PlanParameters{WeekNumber: -2}, expected: platform.ErrInvalidRequest},
		{name: "Missing profile", userID: "ghost", expected: platform.ErrNotFound},
		{
			name:      "Completion error",
			userID:    "u1",
			prepare:   func(h *planHarness) { h.completer.err = errors.New("rate limited") },
			expected:  platform.ErrGenerationFailed,
			completed: true,
		},
		{
			name:      "Empty completion",
			userID:    "u1",
			prepare:   func(h *planHarness) { h.completer.response = "  " },
			expected:  platform.ErrGenerationFailed,
			completed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPlanHarness(t, features.Static{})
			if tt.prepare != nil {
				tt.prepare(h)
			}

			_, err := h.service.GenerateWorkoutPlan(context.Background(), tt.userID, tt.parameters)

			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.completed, len(h.completer.requests) == 1)
			assert.Empty(t, h.plans.saved)
		})
	}
}

func TestGenerateWorkoutPlanSwallowsPersistenceFailures(t *testing.T) {
	h := newPlanHarness(t, features.Static{})
	h.completer.response = sampleWorkout
	h.plans.err = errors.New("disk full")
	h.queries.err = errors.New("disk full")

	plan, err := h.service.GenerateWorkoutPlan(context.Background(), "u1", entities.PlanParameters{})

	require.NoError(t, err)
	assert.Len(t, plan.Workout.Weeks[0].Sessions, 2)
}
