package planning

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
)

const (
	DefaultPreferences = "balanced meals with moderate variety"
	preferredCuisines  = 2
)

// Preferences are the habits visible in a user's most recent interactions.
type Preferences struct {
	Cuisines     []string
	MealHourMin  int
	MealHourMax  int
	HasMealHours bool
}

// ExtractPreferences expects events newest first. Cuisines are ranked by
// frequency, ties going to the one encountered first.
func ExtractPreferences(events []entities.InteractionEvent, location *time.Location) Preferences {
	if location == nil {
		location = time.UTC
	}

	counts := map[string]int{}
	var order []string
	var preferences Preferences

	for _, event := range events {
		switch event.Type {
		case platform.EventRecipeView, platform.EventRecipeFavorite:
			cuisine, ok := event.DetailString("cuisineType")
			if !ok {
				continue
			}
			if counts[cuisine] == 0 {
				order = append(order, cuisine)
			}
			counts[cuisine]++
		case platform.EventMealLogged:
			if event.Timestamp.IsZero() {
				continue
			}
			hour := event.Timestamp.In(location).Hour()
			if !preferences.HasMealHours {
				preferences.MealHourMin, preferences.MealHourMax, preferences.HasMealHours = hour, hour, true
				continue
			}
			preferences.MealHourMin = min(preferences.MealHourMin, hour)
			preferences.MealHourMax = max(preferences.MealHourMax, hour)
		}
	}

	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })
	if len(order) > preferredCuisines {
		order = order[:preferredCuisines]
	}
	preferences.Cuisines = order

	return preferences
}

// Describe renders the preferences as the tail of "they tend to prefer ...".
func (p Preferences) Describe() string {
	if len(p.Cuisines) == 0 {
		return DefaultPreferences
	}

	description := strings.Join(p.Cuisines, " and ") + " cuisine"
	if p.HasMealHours {
		description += fmt.Sprintf(", and typically eats their main meal between %d:00 and %d:00", p.MealHourMin, p.MealHourMax)
	}
	return description
}
