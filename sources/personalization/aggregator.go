package personalization

import (
	"math"
	"slices"
	"strings"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
)

var MotivationalKeywords = []string{"achieve", "goal", "better", "improve", "health"}

const consistencyWindowDays = 30

// Aggregator recomputes a personalization profile from a user's recent history.
type Aggregator struct {
	location *time.Location
	keywords []string
}

func NewAggregator(config *configuration.Config) (*Aggregator, error) {
	location, err := time.LoadLocation(config.Personalization.TimeZone)
	if err != nil {
		return nil, err
	}
	return &Aggregator{location: location, keywords: MotivationalKeywords}, nil
}

// Aggregate is pure: it returns a new profile and never mutates current.
// events are the last 30 days of interactions and progress the most recent records.
func (x *Aggregator) Aggregate(current *entities.Personalization, userID string, events []entities.InteractionEvent, progress []entities.ProgressRecord, now time.Time) *entities.Personalization {
	next := current.Clone()
	if next == nil {
		next = entities.DefaultPersonalization(userID)
	}
	next.UserID = userID

	x.activity(&next.ActivityPatterns, events)
	x.nutrition(&next.NutritionPatterns, events)
	x.behaviour(&next.BehavioralInsights, progress)

	next.ConfidenceScore = Confidence(len(events) + len(progress))
	next.LastUpdated = now.UTC()
	next.Normalize()
	return next
}

// Confidence grows linearly with observed records and never exceeds the ceiling.
func Confidence(observations int) float64 {
	if observations < 0 {
		observations = 0
	}
	return math.Min(entities.ConfidenceCeiling, entities.ConfidenceInitial+float64(observations)/100*0.75)
}

// PreferredTimeOfDay resolves bucket counts. Morning wins only when strictly
// ahead of both others, afternoon only when strictly ahead of evening; every
// other case, ties included, resolves to evening.
func PreferredTimeOfDay(morning, afternoon, evening int) string {
	switch {
	case morning > afternoon && morning > evening:
		return entities.TimeOfDayMorning
	case afternoon > evening:
		return entities.TimeOfDayAfternoon
	default:
		return entities.TimeOfDayEvening
	}
}

func (x *Aggregator) activity(patterns *entities.ActivityPatterns, events []entities.InteractionEvent) {
	var morning, afternoon, evening, workouts int
	days := map[time.Time]struct{}{}

	for _, event := range events {
		if event.Type != platform.EventWorkoutStarted && event.Type != platform.EventWorkoutCompleted {
			continue
		}
		workouts++

		local := event.Timestamp.In(x.location)
		switch hour := local.Hour(); {
		case hour >= 5 && hour < 12:
			morning++
		case hour >= 12 && hour < 17:
			afternoon++
		case hour >= 17 && hour < 23:
			evening++
		}
		days[time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, x.location)] = struct{}{}
	}

	if workouts == 0 {
		return
	}

	patterns.PreferredTimeOfDay = PreferredTimeOfDay(morning, afternoon, evening)
	patterns.ConsistencyScore = ConsistencyScore(len(days))
	patterns.StreakLongest = max(patterns.StreakLongest, longestStreak(days))
}

// ConsistencyScore maps distinct workout days in the window onto 0..10.
func ConsistencyScore(distinctDays int) int {
	return int(math.Round(math.Min(10, float64(distinctDays)/consistencyWindowDays*10)))
}

func longestStreak(days map[time.Time]struct{}) int {
	sorted := make([]time.Time, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	longest, run := 0, 0
	for i, day := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func (x *Aggregator) nutrition(patterns *entities.NutritionPatterns, events []entities.InteractionEvent) {
	var total float64
	var meals int

	for _, event := range events {
		if event.Type != platform.EventMealLogged && event.Type != platform.EventRecipePrepared {
			continue
		}
		protein, ok := event.DetailNumber("macros", "protein")
		if !ok || protein < 0 || math.IsNaN(protein) || math.IsInf(protein, 0) {
			continue
		}
		total += protein
		meals++
	}

	if meals == 0 {
		return
	}

	average := total / float64(meals)
	patterns.ProteinPreference = int(math.Min(10, math.Round(average/10)))
}

func (x *Aggregator) behaviour(insights *entities.BehavioralInsights, progress []entities.ProgressRecord) {
	var ratios float64
	var counted int
	for _, record := range progress {
		if ratio, ok := record.CompletionRatio(); ok {
			ratios += ratio
			counted++
		}
	}
	if counted > 0 {
		insights.PlanAdherenceRate = int(math.Round(ratios / float64(counted) * 100))
	}

	insights.MotivationalFactors = MergeMotivationalFactors(insights.MotivationalFactors, x.matchKeywords(progress))
}

// matchKeywords returns keywords found in feedback, most frequent first, then most recent.
func (x *Aggregator) matchKeywords(progress []entities.ProgressRecord) []string {
	records := slices.Clone(progress)
	slices.SortStableFunc(records, func(a, b entities.ProgressRecord) int { return b.Date.Compare(a.Date) })

	counts := map[string]int{}
	var order []string
	for _, record := range records {
		feedback := strings.ToLower(record.Feedback)
		if feedback == "" {
			continue
		}
		for _, keyword := range x.keywords {
			if !strings.Contains(feedback, keyword) {
				continue
			}
			if counts[keyword] == 0 {
				order = append(order, keyword)
			}
			counts[keyword]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })
	return order
}

// MergeMotivationalFactors puts fresh matches first, keeps the remaining
// existing factors in order and truncates the result.
func MergeMotivationalFactors(existing, fresh []string) []string {
	merged := make([]string, 0, len(existing)+len(fresh))
	for _, factor := range fresh {
		if !slices.Contains(merged, factor) {
			merged = append(merged, factor)
		}
	}
	for _, factor := range existing {
		if !slices.Contains(merged, factor) {
			merged = append(merged, factor)
		}
	}
	if len(merged) > entities.MotivationalLimit {
		merged = merged[:entities.MotivationalLimit]
	}
	return merged
}
