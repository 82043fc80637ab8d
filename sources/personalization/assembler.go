package personalization

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fitcoach/sources/persistence/entities"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultUnknown      = "Unknown"
	defaultGoal         = "General health"
	defaultActivity     = "Moderate"
	defaultNone         = "None specified"
	defaultMotivational = "Achievement, progress tracking"
)

const closingInstruction = "Tailor your response to this user's profile and preferences. Keep explanations at their preferred detail level."

const (
	StyleVisual      = "visual"
	StyleAuditory    = "auditory"
	StyleReading     = "reading"
	StyleKinesthetic = "kinesthetic"
)

// Assemble renders the fixed-order context block sent alongside every answer prompt.
// It is pure: absent values resolve to defaults and sets are sorted.
func Assemble(profile *entities.UserProfile, personalization *entities.Personalization) string {
	if profile == nil {
		profile = &entities.UserProfile{}
	}
	if personalization == nil {
		personalization = entities.DefaultPersonalization(profile.ID)
	}

	age := defaultUnknown
	if profile.Age > 0 {
		age = strconv.Itoa(profile.Age)
	}

	motivational := defaultMotivational
	if factors := personalization.BehavioralInsights.MotivationalFactors; len(factors) > 0 {
		motivational = strings.Join(factors, ", ")
	}

	var b strings.Builder
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", age)
	fmt.Fprintf(&b, "- Gender: %s\n", orDefault(profile.Gender, defaultUnknown))
	fmt.Fprintf(&b, "- Primary health goal: %s\n", orDefault(profile.PrimaryGoal(), defaultGoal))
	fmt.Fprintf(&b, "- Activity level: %s\n", orDefault(profile.ActivityLevel, defaultActivity))
	fmt.Fprintf(&b, "- Dietary preferences: %s\n", joinSet(profile.DietaryRestrictions))
	fmt.Fprintf(&b, "- Medical conditions: %s\n", joinSet(profile.MedicalConditions))
	fmt.Fprintf(&b, "- Allergies: %s\n", joinSet(profile.Allergies))
	b.WriteString("\nPersonalization Insights:\n")
	fmt.Fprintf(&b, "- Preferred learning style: %s\n", cases.Title(language.English).String(PreferredLearningStyle(personalization.LearningStyle)))
	fmt.Fprintf(&b, "- Adherence to plans: %d%%\n", personalization.BehavioralInsights.PlanAdherenceRate)
	fmt.Fprintf(&b, "- Motivational factors: %s\n", motivational)
	fmt.Fprintf(&b, "- Preferred detail level: %d/10\n", personalization.ModelParameters.ExplainabilityNeed)
	b.WriteString("\n" + closingInstruction + "\n")

	return b.String()
}

// PreferredLearningStyle picks the highest-scoring style. Ties go to the
// earlier of visual, auditory, reading, kinesthetic.
func PreferredLearningStyle(style entities.LearningStyle) string {
	ranked := []struct {
		name  string
		score int
	}{
		{StyleVisual, style.Visual},
		{StyleAuditory, style.Auditory},
		{StyleReading, style.Reading},
		{StyleKinesthetic, style.Kinesthetic},
	}

	best := ranked[0]
	for _, candidate := range ranked[1:] {
		if candidate.score > best.score {
			best = candidate
		}
	}
	return best.name
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}

func joinSet(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return defaultNone
	}
	slices.Sort(cleaned)
	return strings.Join(slices.Compact(cleaned), ", ")
}
