package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fitcoach/sources/answering"
	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeAnswerer struct {
	userID   string
	question string
	err      error
}

func (f *fakeAnswerer) Answer(ctx context.Context, userID string, question string) (answering.Result, error) {
	f.userID, f.question = userID, question
	if f.err != nil {
		return answering.Result{}, f.err
	}
	if strings.TrimSpace(question) == "" {
		return answering.Result{}, fmt.Errorf("%w: question is empty", platform.ErrInvalidRequest)
	}
	return answering.Result{Answer: entities.StructuredAnswer{MainAnswer: "Drink water."}, FromCache: true}, nil
}

type fakePlanner struct {
	parameters entities.PlanParameters
	kind       string
	limit      int
}

func (f *fakePlanner) GeneratePlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error) {
	f.parameters = parameters
	f.kind = platform.PlanNutrition
	return &entities.Plan{UserID: userID, Type: platform.PlanNutrition, WeekNumber: 1, Body: entities.NewPlanBody()}, nil
}

func (f *fakePlanner) GenerateWorkoutPlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error) {
	f.parameters = parameters
	f.kind = platform.PlanWorkout
	if parameters.SessionsPerWeek > 7 {
		return nil, fmt.Errorf("%w: sessionsPerWeek must be between 0 and 7", platform.ErrInvalidRequest)
	}
	return &entities.Plan{UserID: userID, Type: platform.PlanWorkout, WeekNumber: 1, Workout: entities.NewWorkoutBody(4)}, nil
}

func (f *fakePlanner) ListPlans(ctx context.Context, userID string, limit int) ([]entities.Plan, error) {
	f.limit = limit
	return nil, nil
}

type fakeHealth struct {
	redisErr error
}

func (fakeHealth) CheckDatabaseHealth(ctx context.Context, logger *tracing.Logger) error {
	return nil
}

func (f fakeHealth) CheckRedisHealth(ctx context.Context, logger *tracing.Logger) error {
	return f.redisErr
}

type fakeThrottler struct {
	deny bool
}

func (f fakeThrottler) IsAllowed(ctx context.Context, scope string, userID string) bool {
	return !f.deny
}

type fixture struct {
	router  http.Handler
	answers *fakeAnswerer
	plans   *fakePlanner
}

func newFixture(t *testing.T, throttler Throttler, health HealthChecker) *fixture {
	t.Helper()

	config := &configuration.Config{}
	config.ApplyDefaults()
	config.Server.Mode = "test"
	config.Auth.JWTSecret = testSecret
	config.Auth.Issuer = "fitcoach-auth"

	log := tracing.NewSilentLogger()
	f := &fixture{answers: &fakeAnswerer{}, plans: &fakePlanner{}}
	f.router = NewRouter(config, Dependencies{
		Answers:   f.answers,
		Plans:     f.plans,
		Health:    health,
		Throttler: throttler,
		Metrics:   metrics.NewMetricsService(log),
	}, log)
	return f
}

func token(t *testing.T, subject, issuer string, expires time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *fixture) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) apiError {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Error
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t, fakeThrottler{}, fakeHealth{})
	valid := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		bearer string
		status int
	}{
		{name: "Missing token", bearer: "", status: http.StatusUnauthorized},
		{name: "Garbage token", bearer: "not-a-jwt", status: http.StatusUnauthorized},
		{name: "Expired token", bearer: token(t, "u1", "fitcoach-auth", time.Now().Add(-time.Minute)), status: http.StatusUnauthorized},
		{name: "Wrong issuer", bearer: token(t, "u1", "someone-else", valid), status: http.StatusUnauthorized},
		{name: "Missing subject", bearer: token(t, "", "fitcoach-auth", valid), status: http.StatusUnauthorized},
		{name: "Valid token", bearer: token(t, "u1", "fitcoach-auth", valid), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":"How much water?"}`, tt.bearer)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "unauthenticated", decodeError(t, recorder).Code)
			}
		})
	}
}

func TestAnswerEndpoint(t *testing.T) {
	f := newFixture(t, fakeThrottler{}, fakeHealth{})
	bearer := token(t, "user-42", "fitcoach-auth", time.Now().Add(time.Hour))

	recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":"How much water?"}`, bearer)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-42", f.answers.userID)
	assert.JSONEq(t, `{"answer":{"mainAnswer":"Drink water.","additionalInfo":"","personalizedTips":""},"fromCache":true}`, recorder.Body.String())

	t.Run("Blank question", func(t *testing.T) {
		recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":"  "}`, bearer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "invalid_request", decodeError(t, recorder).Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":`, bearer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{err: fmt.Errorf("user profile %w", platform.ErrNotFound), status: http.StatusNotFound, code: "not_found"},
		{err: fmt.Errorf("%w: upstream", platform.ErrGenerationFailed), status: http.StatusBadGateway, code: "generation_failed"},
		{err: fmt.Errorf("%w: deadline", platform.ErrTimeout), status: http.StatusGatewayTimeout, code: "timeout"},
		{err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal"},
	}

	bearer := token(t, "u1", "fitcoach-auth", time.Now().Add(time.Hour))
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			f := newFixture(t, fakeThrottler{}, fakeHealth{})
			f.answers.err = tt.err

			recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":"q"}`, bearer)

			assert.Equal(t, tt.status, recorder.Code)
			apiErr := decodeError(t, recorder)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.NotContains(t, apiErr.Message, "boom")
		})
	}
}

func TestThrottling(t *testing.T) {
	f := newFixture(t, fakeThrottler{deny: true}, fakeHealth{})
	bearer := token(t, "u1", "fitcoach-auth", time.Now().Add(time.Hour))

	recorder := f.do(http.MethodPost, "/api/v1/answers", `{"question":"q"}`, bearer)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "throttled", decodeError(t, recorder).Code)
	assert.Empty(t, f.answers.question)
}

func TestPlanEndpoints(t *testing.T) {
	f := newFixture(t, fakeThrottler{}, fakeHealth{})
	bearer := token(t, "u1", "fitcoach-auth", time.Now().Add(time.Hour))

	recorder := f.do(http.MethodPost, "/api/v1/plans/nutrition", `{"requestParameters":{"weekNumber":2,"mealsPerDay":4,"includeSnacks":true,"focusAreas":["fiber"]}}`, bearer)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 2, f.plans.parameters.WeekNumber)
	assert.Equal(t, 4, f.plans.parameters.MealsPerDay)
	require.NotNil(t, f.plans.parameters.IncludeSnacks)
	assert.True(t, *f.plans.parameters.IncludeSnacks)

	var response struct {
		Success bool `json:"success"`
		Plan    struct {
			Plan entities.PlanBody `json:"plan"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Len(t, response.Plan.Plan.Days, 7)

	t.Run("Listing", func(t *testing.T) {
		recorder := f.do(http.MethodGet, "/api/v1/plans?limit=5", "", bearer)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 5, f.plans.limit)
		assert.JSONEq(t, `{"plans":[]}`, recorder.Body.String())
	})

	t.Run("Invalid limit", func(t *testing.T) {
		recorder := f.do(http.MethodGet, "/api/v1/plans?limit=abc", "", bearer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestWorkoutPlanEndpoint(t *testing.T) {
	bearer := token(t, "u1", "fitcoach-auth", time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		body       string
		bearer     string
		throttler  fakeThrottler
		statusCode int
		sessions   int
		generated  bool
	}{
		{
			name:       "Generated with parameters",
			body:       `{"requestParameters":{"sessionsPerWeek":4,"sessionMinutes":45,"equipment":["dumbbells"]}}`,
			bearer:     bearer,
			statusCode: http.StatusOK,
			sessions:   4,
			generated:  true,
		},
		{
			name:       "Empty body uses defaults",
			bearer:     bearer,
			statusCode: http.StatusOK,
			generated:  true,
		},
		{
			name:       "Invalid parameters",
			body:       `{"requestParameters":{"sessionsPerWeek":9}}`,
			bearer:     bearer,
			statusCode: http.StatusBadRequest,
			sessions:   9,
		},
		{
			name:       "Malformed body",
			body:       `{"requestParameters":`,
			bearer:     bearer,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "Missing token",
			statusCode: http.StatusUnauthorized,
		},
		{
			name:       "Throttled",
			bearer:     bearer,
			throttler:  fakeThrottler{deny: true},
			statusCode: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.throttler, fakeHealth{})

			recorder := f.do(http.MethodPost, "/api/v1/plans/workout", tt.body, tt.bearer)

			require.Equal(t, tt.statusCode, recorder.Code)
			assert.Equal(t, tt.sessions, f.plans.parameters.SessionsPerWeek)
			if !tt.generated {
				return
			}

			assert.Equal(t, platform.PlanWorkout, f.plans.kind)
			var response struct {
				Success bool `json:"success"`
				Plan    struct {
					Type    string               `json:"type"`
					Body    *entities.PlanBody   `json:"plan"`
					Workout entities.WorkoutBody `json:"workout"`
				} `json:"plan"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.True(t, response.Success)
			assert.Equal(t, platform.PlanWorkout, response.Plan.Type)
			assert.Nil(t, response.Plan.Body)
			assert.Len(t, response.Plan.Workout.Weeks, 4)
		})
	}
}

func TestHealth(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		f := newFixture(t, fakeThrottler{}, fakeHealth{})

		recorder := f.do(http.MethodGet, "/health", "", "")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"redis":"ok"`)
	})

	t.Run("Redis down", func(t *testing.T) {
		f := newFixture(t, fakeThrottler{}, fakeHealth{redisErr: errors.New("refused")})

		recorder := f.do(http.MethodGet, "/health", "", "")

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"redis":"unavailable"`)
	})
}
