package personalization

import (
	"strings"
	"testing"

	"fitcoach/sources/persistence/entities"

	"github.com/stretchr/testify/assert"
)

func TestAssemble(t *testing.T) {
	t.Run("Missing values fall back to defaults", func(t *testing.T) {
		context := Assemble(&entities.UserProfile{ID: "u1"}, nil)

		assert.Contains(t, context, "- Age: Unknown\n")
		assert.Contains(t, context, "- Gender: Unknown\n")
		assert.Contains(t, context, "- Primary health goal: General health\n")
		assert.Contains(t, context, "- Activity level: Moderate\n")
		assert.Contains(t, context, "- Dietary preferences: None specified\n")
		assert.Contains(t, context, "- Preferred learning style: Visual\n")
		assert.Contains(t, context, "- Adherence to plans: 80%\n")
		assert.Contains(t, context, "- Motivational factors: Achievement, progress tracking\n")
		assert.Contains(t, context, "- Preferred detail level: 5/10\n")
		assert.True(t, strings.HasSuffix(context, "- Preferred detail level: 5/10\n\nTailor your response to this user's profile and preferences. Keep explanations at their preferred detail level.\n"))
	})

	t.Run("Profile values are rendered in a fixed order", func(t *testing.T) {
		profile := &entities.UserProfile{
			ID:                  "u1",
			Age:                 34,
			Gender:              "female",
			ActivityLevel:       "active",
			Goals:               []string{"muscle gain", "endurance"},
			DietaryRestrictions: []string{"vegetarian", "gluten-free", "vegetarian"},
			Allergies:           []string{"peanuts"},
		}

		context := Assemble(profile, entities.DefaultPersonalization("u1"))

		assert.True(t, strings.HasPrefix(context, "User Profile:\n- Age: 34\n- Gender: female\n"))
		assert.Contains(t, context, "- Primary health goal: muscle gain\n")
		assert.Contains(t, context, "- Dietary preferences: gluten-free, vegetarian\n")
		assert.Contains(t, context, "- Allergies: peanuts\n")
		assert.Less(t, strings.Index(context, "User Profile:"), strings.Index(context, "Personalization Insights:"))
	})

	t.Run("Output is deterministic regardless of set order", func(t *testing.T) {
		a := &entities.UserProfile{ID: "u1", MedicalConditions: []string{"asthma", "diabetes"}}
		b := &entities.UserProfile{ID: "u1", MedicalConditions: []string{"diabetes", "asthma"}}
		p := entities.DefaultPersonalization("u1")
		p.BehavioralInsights.MotivationalFactors = []string{"goal", "health"}

		assert.Equal(t, Assemble(a, p), Assemble(b, p))
		assert.Contains(t, Assemble(a, p), "- Motivational factors: goal, health\n")
	})
}

func TestPreferredLearningStyle(t *testing.T) {
	tests := []struct {
		name     string
		style    entities.LearningStyle
		expected string
	}{
		{name: "All equal prefers visual", style: entities.LearningStyle{Visual: 5, Auditory: 5, Reading: 5, Kinesthetic: 5}, expected: StyleVisual},
		{name: "Highest wins", style: entities.LearningStyle{Visual: 2, Auditory: 3, Reading: 9, Kinesthetic: 4}, expected: StyleReading},
		{name: "Tie resolves to earlier style", style: entities.LearningStyle{Visual: 1, Auditory: 7, Reading: 2, Kinesthetic: 7}, expected: StyleAuditory},
		{name: "Kinesthetic when strictly highest", style: entities.LearningStyle{Kinesthetic: 8}, expected: StyleKinesthetic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PreferredLearningStyle(tt.style))
		})
	}
}
