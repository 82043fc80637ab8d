package planning

import (
	"fmt"
	"strconv"
	"strings"

	"fitcoach/sources/persistence/entities"
)

const SystemPrompt = "You are a professional nutritionist and fitness expert specializing in creating personalized meal plans."

const (
	defaultWeek        = 1
	defaultMealsPerDay = 3
	defaultCalories    = "appropriate for goals"
	defaultFocus       = "balanced nutrition"
	notSpecified       = "not specified"
)

// BuildPrompt renders the user prompt for a weekly nutrition plan.
func BuildPrompt(profile *entities.UserProfile, personalization *entities.Personalization, preferences string, parameters entities.PlanParameters) string {
	if personalization == nil {
		personalization = entities.DefaultPersonalization(profile.ID)
	}

	snacks := parameters.IncludeSnacks != nil && *parameters.IncludeSnacks

	var b strings.Builder
	b.WriteString("Generate a personalized nutrition plan for the following user:\n\n")

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", positive(profile.Age, ""))
	fmt.Fprintf(&b, "- Gender: %s\n", text(profile.Gender))
	fmt.Fprintf(&b, "- Weight: %s\n", measure(profile.WeightKg, "kg"))
	fmt.Fprintf(&b, "- Height: %s\n", measure(profile.HeightCm, "cm"))
	if bmi := profile.BMI(); bmi > 0 {
		fmt.Fprintf(&b, "- BMI: %.1f\n", bmi)
	}
	fmt.Fprintf(&b, "- Activity level: %s\n", text(profile.ActivityLevel))
	fmt.Fprintf(&b, "- Allergies: %s\n", list(profile.Allergies))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", list(profile.DietaryRestrictions))
	fmt.Fprintf(&b, "- Nutritional deficiencies: %s\n", list(profile.Deficiencies))
	fmt.Fprintf(&b, "- Preferred cuisines: %s\n", list(profile.CuisinePreferences))
	fmt.Fprintf(&b, "- Preferred meal complexity: %s\n", text(profile.MealComplexity))
	fmt.Fprintf(&b, "- Available cooking time: %s\n", positive(profile.CookingTimeMinutes, " minutes"))
	fmt.Fprintf(&b, "- Goals: %s\n", list(profile.Goals))

	b.WriteString("\nPersonalization Insights:\n")
	fmt.Fprintf(&b, "- Meal size preference: %s\n", personalization.NutritionPatterns.MealSizePreference)
	fmt.Fprintf(&b, "- Protein preference level (1-10): %d\n", personalization.NutritionPatterns.ProteinPreference)
	fmt.Fprintf(&b, "- Carb preference level (1-10): %d\n", personalization.NutritionPatterns.CarbPreference)
	fmt.Fprintf(&b, "- Plan adherence rate: %d%%\n", personalization.BehavioralInsights.PlanAdherenceRate)
	fmt.Fprintf(&b, "- Response to variety (1-10): %d\n", personalization.ModelParameters.VarietyPreference)

	b.WriteString("\nPlan Parameters:\n")
	fmt.Fprintf(&b, "- Week number: %d\n", orInt(parameters.WeekNumber, defaultWeek))
	fmt.Fprintf(&b, "- Daily calorie target: %s\n", positive(parameters.CalorieTarget, " kcal", defaultCalories))
	fmt.Fprintf(&b, "- Number of meals per day: %d\n", orInt(parameters.MealsPerDay, defaultMealsPerDay))
	fmt.Fprintf(&b, "- Include snacks: %s\n", yesNo(snacks))
	fmt.Fprintf(&b, "- Focus areas: %s\n", listOr(parameters.FocusAreas, defaultFocus))

	fmt.Fprintf(&b, "\nBased on the user's recent behavior, they tend to prefer %s.\n\n", preferences)

	meals := "breakfast, lunch, dinner"
	if snacks {
		meals += ", and snacks"
	}
	fmt.Fprintf(&b, "Create a 7-day meal plan with %s for each day.\n", meals)
	b.WriteString("Start each day with a line \"Day N\" and each meal with its type followed by a colon.\n")
	b.WriteString("For each meal, include:\n")
	b.WriteString("1. Meal name\n")
	b.WriteString("2. Brief description\n")
	b.WriteString("3. Key ingredients\n")
	b.WriteString("4. Approximate macros (protein, carbs, fat)\n")
	b.WriteString("5. Preparation time\n")
	b.WriteString("6. Cooking difficulty (1-5)\n\n")
	b.WriteString("Also include:\n")
	b.WriteString("- Weekly shopping list\n")
	b.WriteString("- Meal prep recommendations\n")
	b.WriteString("- 2-3 alternative options for each day for flexibility\n\n")
	b.WriteString("The plan should be tailored to the user's specific needs, preferences, and goals.")

	return b.String()
}

func text(value string) string {
	if value = strings.TrimSpace(value); value == "" {
		return notSpecified
	}
	return value
}

func list(values []string) string {
	return listOr(values, "none")
}

func listOr(values []string, fallback string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return strings.Join(cleaned, ", ")
}

func positive(value int, unit string, fallback ...string) string {
	if value <= 0 {
		if len(fallback) > 0 {
			return fallback[0]
		}
		return notSpecified
	}
	return strconv.Itoa(value) + unit
}

func measure(value float64, unit string) string {
	if value <= 0 {
		return notSpecified
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + unit
}

func orInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
