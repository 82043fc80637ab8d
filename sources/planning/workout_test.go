package planning

import (
	"testing"

	"fitcoach/sources/persistence/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkout = `Welcome to your four week plan! Consistency beats intensity.

**Week 1: Foundation**
Monday: Full body strength
- Squats: 3 sets x 10 reps
- Push-ups 3x8-12
- Brisk walk: 20 minutes
Rest 60 seconds between sets.
Wednesday - Cardio
1. Cycling: 30 min

Week 2: Build volume
Day 1: Lower body
- Lunges: 3 sets of 12 reps

Week 7: Bonus
Monday: Should be ignored
- Burpees: 5 sets x 5 reps

Nutrition Guidelines:
- Aim for 1.6 g of protein per kg of body weight
- Eat a carb-rich meal before training

Progress Tracking
- Weekly weigh-in
- Track reps on each lift

Adaptation Guidelines: Add 5% load when all sets feel easy.
`

func TestParseWorkoutPlan(t *testing.T) {
	body := ParseWorkoutPlan(sampleWorkout, WorkoutWeeks)

	assert.Equal(t, "Welcome to your four week plan! Consistency beats intensity.", body.Introduction)
	require.Len(t, body.Weeks, 4)

	first := body.Weeks[0]
	assert.Equal(t, 1, first.Week)
	assert.Equal(t, "Foundation", first.Theme)
	require.Len(t, first.Sessions, 2)
	assert.Equal(t, "Monday", first.Sessions[0].Day)
	assert.Equal(t, "Full body strength", first.Sessions[0].Focus)
	assert.Equal(t, []entities.Exercise{
		{Name: "Squats", Sets: 3, Reps: "10"},
		{Name: "Push-ups", Sets: 3, Reps: "8-12"},
		{Name: "Brisk walk", DurationMinutes: 20},
	}, first.Sessions[0].Exercises)
	assert.Equal(t, "Wednesday", first.Sessions[1].Day)
	assert.Equal(t, "Cardio", first.Sessions[1].Focus)
	assert.Equal(t, []entities.Exercise{{Name: "Cycling", DurationMinutes: 30}}, first.Sessions[1].Exercises)

	second := body.Weeks[1]
	assert.Equal(t, "Build volume", second.Theme)
	require.Len(t, second.Sessions, 1)
	assert.Equal(t, "Day 1", second.Sessions[0].Day)
	assert.Equal(t, []entities.Exercise{{Name: "Lunges", Sets: 3, Reps: "12"}}, second.Sessions[0].Exercises)

	assert.Empty(t, body.Weeks[2].Sessions)
	assert.Empty(t, body.Weeks[3].Sessions)

	assert.Equal(t, []string{
		"Aim for 1.6 g of protein per kg of body weight",
		"Eat a carb-rich meal before training",
	}, body.NutritionGuidelines)
	assert.Equal(t, []string{"Weekly weigh-in", "Track reps on each lift"}, body.ProgressMetrics)
	assert.Equal(t, []string{"Add 5% load when all sets feel easy."}, body.Adaptations)
}

func TestParseWorkoutPlanTolerance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		sessions int
	}{
		{name: "Empty", raw: "", sessions: 0},
		{name: "Prose only", raw: "Stay active and drink water.", sessions: 0},
		{name: "Sessions without week header", raw: "Monday: Upper body\n- Rows: 3 x 10", sessions: 1},
		{name: "Windows line endings", raw: "Week 1\r\nTuesday: Legs\r\n- Squats: 4 sets x 6 reps\r\n", sessions: 1},
		{name: "Only out of range weeks", raw: "Week 9\nMonday: Legs\n- Squats: 3x5", sessions: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ParseWorkoutPlan(tt.raw, WorkoutWeeks)

			require.Len(t, body.Weeks, WorkoutWeeks)
			assert.Equal(t, tt.sessions, populatedSessions(body))
			for _, week := range body.Weeks {
				assert.NotNil(t, week.Sessions)
			}
			assert.NotNil(t, body.NutritionGuidelines)
			assert.NotNil(t, body.ProgressMetrics)
			assert.NotNil(t, body.Adaptations)
		})
	}
}

func TestParseWorkoutPlanKeepsSessionProse(t *testing.T) {
	raw := "Week 1\nFriday: Mobility\nProgress is slow at first, that is fine.\nNutrition matters too"

	body := ParseWorkoutPlan(raw, WorkoutWeeks)

	require.Len(t, body.Weeks[0].Sessions, 1)
	assert.Equal(t, []entities.Exercise{
		{Name: "Progress is slow at first, that is fine."},
		{Name: "Nutrition matters too"},
	}, body.Weeks[0].Sessions[0].Exercises)
	assert.Empty(t, body.ProgressMetrics)
	assert.Empty(t, body.NutritionGuidelines)
}

func TestWorkoutDifficulty(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{level: "Beginner", expected: DifficultyBeginner},
		{level: "advanced athlete", expected: DifficultyAdvanced},
		{level: "intermediate", expected: DifficultyIntermediate},
		{level: "moderately active", expected: DifficultyIntermediate},
		{level: "", expected: DifficultyIntermediate},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, WorkoutDifficulty(tt.level))
		})
	}
}

func TestWorkoutFocusAreas(t *testing.T) {
	tests := []struct {
		name     string
		goals    []string
		expected []string
	}{
		{name: "No goals", goals: nil, expected: []string{"general fitness"}},
		{name: "Unrecognised goals", goals: []string{"sleep better"}, expected: []string{"general fitness"}},
		{name: "Weight loss", goals: []string{"Lose 5kg"}, expected: []string{"weight loss"}},
		{
			name:     "Several goals without duplicates",
			goals:    []string{"build muscle", "gain muscle", "improve endurance", "better flexibility"},
			expected: []string{"muscle building", "cardio endurance", "flexibility"},
		},
		{name: "Strength and health", goals: []string{"Strength", "overall health"}, expected: []string{"strength training", "general health"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WorkoutFocusAreas(tt.goals))
		})
	}
}

func TestBuildWorkoutPrompt(t *testing.T) {
	profile := &entities.UserProfile{
		ID:                "u1",
		Age:               34,
		ActivityLevel:     "beginner",
		MedicalConditions: []string{"knee pain"},
		Goals:             []string{"lose weight"},
	}

	t.Run("Parameters", func(t *testing.T) {
		prompt := BuildWorkoutPrompt(profile, nil, entities.PlanParameters{
			SessionsPerWeek: 4,
			SessionMinutes:  45,
			Equipment:       []string{"dumbbells", " "},
			FocusAreas:      []string{"core"},
		})

		assert.Contains(t, prompt, "- Age: 34\n")
		assert.Contains(t, prompt, "- Fitness level: beginner\n")
		assert.Contains(t, prompt, "- Health conditions: knee pain\n")
		assert.Contains(t, prompt, "Goals: lose weight\n")
		assert.Contains(t, prompt, "- Sessions per week: 4\n")
		assert.Contains(t, prompt, "- Session length: 45 minutes\n")
		assert.Contains(t, prompt, "- Available equipment: dumbbells\n")
		assert.Contains(t, prompt, "- Focus areas: core\n")
		assert.Contains(t, prompt, "- Preferred workout time: unknown\n")
		assert.Contains(t, prompt, "Create a 4-week progressive plan")
	})

	t.Run("Defaults", func(t *testing.T) {
		prompt := BuildWorkoutPrompt(profile, nil, entities.PlanParameters{})

		assert.Contains(t, prompt, "- Sessions per week: 3\n")
		assert.Contains(t, prompt, "- Session length: not specified\n")
		assert.Contains(t, prompt, "- Available equipment: bodyweight only\n")
		assert.Contains(t, prompt, "- Focus areas: general fitness\n")
	})
}
