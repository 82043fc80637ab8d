package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitcoach/sources/persistence"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := tracing.NewSilentLogger()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: persistence.NewGormLogger(log)})
	require.NoError(t, err)

	sqldb, err := db.DB()
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	require.NoError(t, persistence.Migrate(db, log))
	return db
}

func TestProfilesRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfilesRepository(db)
	log := tracing.NewSilentLogger()
	ctx := context.Background()

	require.NoError(t, db.Create(&entities.UserProfile{ID: "user-b", Age: 31, Goals: []string{"strength"}}).Error)
	require.NoError(t, db.Create(&entities.UserProfile{ID: "user-a", Age: 25, Allergies: []string{"peanuts"}}).Error)

	t.Run("Get existing profile", func(t *testing.T) {
		profile, err := repo.GetProfile(ctx, log, "user-a")
		require.NoError(t, err)
		assert.Equal(t, 25, profile.Age)
		assert.Equal(t, []string{"peanuts"}, profile.Allergies)
	})

	t.Run("Missing profile is not found", func(t *testing.T) {
		_, err := repo.GetProfile(ctx, log, "ghost")
		assert.ErrorIs(t, err, ErrProfileNotFound)
		assert.ErrorIs(t, err, platform.ErrNotFound)
	})

	t.Run("List user ids is ordered", func(t *testing.T) {
		ids, err := repo.ListUserIDs(ctx, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"user-a", "user-b"}, ids)
	})
}

func TestEventsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventsRepository(db)
	log := tracing.NewSilentLogger()
	ctx := context.Background()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	events := []entities.InteractionEvent{
		{UserID: "u1", Type: platform.EventWorkoutCompleted, Timestamp: now.Add(-40 * 24 * time.Hour)},
		{UserID: "u1", Type: platform.EventMealLogged, Timestamp: now.Add(-2 * 24 * time.Hour), Details: map[string]any{"macros": map[string]any{"protein": 30}}},
		{UserID: "u1", Type: platform.EventWorkoutCompleted, Timestamp: now.Add(-1 * 24 * time.Hour)},
		{UserID: "u2", Type: platform.EventWorkoutCompleted, Timestamp: now.Add(-1 * 24 * time.Hour)},
	}
	for i := range events {
		require.NoError(t, repo.AppendInteraction(ctx, log, &events[i]))
	}

	t.Run("Append rejects malformed events", func(t *testing.T) {
		err := repo.AppendInteraction(ctx, log, &entities.InteractionEvent{UserID: "u1", Timestamp: now})
		assert.ErrorIs(t, err, entities.ErrEventTypeMissing)
	})

	t.Run("Since filters by window and user", func(t *testing.T) {
		got, err := repo.ListInteractionsSince(ctx, log, "u1", now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, platform.EventWorkoutCompleted, got[0].Type)
		assert.Equal(t, platform.EventMealLogged, got[1].Type)

		protein, ok := got[1].DetailNumber("macros", "protein")
		assert.True(t, ok)
		assert.Equal(t, 30.0, protein)
	})

	t.Run("Recent honors limit", func(t *testing.T) {
		got, err := repo.ListRecentInteractions(ctx, log, "u1", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Timestamp.Equal(now.Add(-24*time.Hour)))
	})

	t.Run("Progress newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			record := &entities.ProgressRecord{
				UserID:   "u1",
				Date:     now.Add(-time.Duration(i) * 24 * time.Hour),
				Tasks:    map[string]entities.ProgressTask{"t1": {Done: i%2 == 0}},
				Feedback: "feeling better",
			}
			require.NoError(t, repo.AppendProgress(ctx, log, record))
		}

		got, err := repo.ListRecentProgress(ctx, log, "u1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].Date.After(got[1].Date))
		assert.True(t, got[0].Tasks["t1"].Done)
	})
}

func TestPersonalizationsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonalizationsRepository(db)
	log := tracing.NewSilentLogger()
	ctx := context.Background()

	t.Run("Absent resolves to template", func(t *testing.T) {
		_, err := repo.GetPersonalization(ctx, log, "u1")
		assert.True(t, errors.Is(err, ErrPersonalizationNotFound))

		p, err := repo.GetOrDefault(ctx, log, "u1")
		require.NoError(t, err)
		assert.Equal(t, entities.DefaultPersonalization("u1"), p)
	})

	t.Run("Save overwrites whole document", func(t *testing.T) {
		p := entities.DefaultPersonalization("u1")
		p.ActivityPatterns.PreferredTimeOfDay = entities.TimeOfDayMorning
		p.BehavioralInsights.MotivationalFactors = []string{"goal"}
		p.LastUpdated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.SavePersonalization(ctx, log, p))

		p2 := entities.DefaultPersonalization("u1")
		p2.ConfidenceScore = 0.5
		p2.LastUpdated = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.SavePersonalization(ctx, log, p2))

		got, err := repo.GetOrDefault(ctx, log, "u1")
		require.NoError(t, err)
		assert.Equal(t, entities.TimeOfDayUnknown, got.ActivityPatterns.PreferredTimeOfDay)
		assert.Empty(t, got.BehavioralInsights.MotivationalFactors)
		assert.Equal(t, 0.5, got.ConfidenceScore)

		var count int64
		require.NoError(t, db.Model(&entities.Personalization{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestPlansAndQueriesRepository(t *testing.T) {
	db := newTestDB(t)
	plans := NewPlansRepository(db)
	queries := NewQueriesRepository(db)
	log := tracing.NewSilentLogger()
	ctx := context.Background()

	for week := 1; week <= 3; week++ {
		plan := &entities.Plan{
			UserID:     "u1",
			Type:       platform.PlanNutrition,
			WeekNumber: week,
			Body:       entities.NewPlanBody(),
			Prompt:     "prompt",
			CreatedAt:  time.Date(2026, 1, week, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, plans.SavePlan(ctx, log, plan))
	}

	got, err := plans.ListPlans(ctx, log, "u1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].WeekNumber)
	assert.Len(t, got[0].Body.Days, 7)
	assert.Nil(t, got[0].Workout)

	t.Run("Workout plan", func(t *testing.T) {
		workout := entities.NewWorkoutBody(4)
		workout.Difficulty = "beginner"
		workout.Weeks[0].Sessions = append(workout.Weeks[0].Sessions, entities.WorkoutSession{
			Day:       "Monday",
			Exercises: []entities.Exercise{{Name: "Squats", Sets: 3, Reps: "10"}},
		})
		require.NoError(t, plans.SavePlan(ctx, log, &entities.Plan{
			UserID:     "u2",
			Type:       platform.PlanWorkout,
			WeekNumber: 1,
			Workout:    workout,
			CreatedAt:  time.Now().UTC(),
		}))

		got, err := plans.ListPlans(ctx, log, "u2", 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, platform.PlanWorkout, got[0].Type)
		assert.Nil(t, got[0].Body)
		require.NotNil(t, got[0].Workout)
		assert.Equal(t, "beginner", got[0].Workout.Difficulty)
		assert.Equal(t, []entities.Exercise{{Name: "Squats", Sets: 3, Reps: "10"}}, got[0].Workout.Weeks[0].Sessions[0].Exercises)
	})

	require.NoError(t, queries.LogQuery(ctx, log, &entities.QueryLog{UserID: "u1", Type: platform.QueryHealthQuestion, Query: "q"}))
	count, err := queries.CountQueriesSince(ctx, log, platform.QueryHealthQuestion, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
