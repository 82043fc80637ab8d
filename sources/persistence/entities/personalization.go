package entities

import (
	"slices"
	"time"
)

const (
	TimeOfDayUnknown   = "unknown"
	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
)

const (
	MealSizeSmall    = "small"
	MealSizeModerate = "moderate"
	MealSizeLarge    = "large"
)

const (
	ScoreMin          = 0
	ScoreMax          = 10
	ScoreDefault      = 5
	PercentDefault    = 80
	ConfidenceInitial = 0.2
	ConfidenceCeiling = 0.95
	MotivationalLimit = 5
)

type (
	ActivityPatterns struct {
		PreferredTimeOfDay string `json:"preferredTimeOfDay"`
		ConsistencyScore   int    `json:"consistencyScore"`
		StreakLongest      int    `json:"streakLongest"`
	}

	NutritionPatterns struct {
		CalorieAdherence   int    `json:"calorieAdherence"`
		ProteinPreference  int    `json:"proteinPreference"`
		CarbPreference     int    `json:"carbPreference"`
		FatPreference      int    `json:"fatPreference"`
		MealSizePreference string `json:"mealSizePreference"`
	}

	BehavioralInsights struct {
		PlanAdherenceRate               int      `json:"planAdherenceRate"`
		MotivationalFactors             []string `json:"motivationalFactors"`
		ResponseToPositiveReinforcement int      `json:"responseToPositiveReinforcement"`
		ResponseToNegativeFeedback      int      `json:"responseToNegativeFeedback"`
	}

	LearningStyle struct {
		Visual      int `json:"visual"`
		Auditory    int `json:"auditory"`
		Reading     int `json:"reading"`
		Kinesthetic int `json:"kinesthetic"`
	}

	ModelParameters struct {
		DifficultyProgression int `json:"difficultyProgression"`
		VarietyPreference     int `json:"varietyPreference"`
		ExplainabilityNeed    int `json:"explainabilityNeed"`
		AutonomyPreference    int `json:"autonomyPreference"`
	}

	Personalization struct {
		UserID             string             `gorm:"type:varchar(128);primaryKey" json:"user_id"`
		ActivityPatterns   ActivityPatterns   `gorm:"type:jsonb;serializer:json;not null" json:"activityPatterns"`
		NutritionPatterns  NutritionPatterns  `gorm:"type:jsonb;serializer:json;not null" json:"nutritionPatterns"`
		BehavioralInsights BehavioralInsights `gorm:"type:jsonb;serializer:json;not null" json:"behavioralInsights"`
		LearningStyle      LearningStyle      `gorm:"type:jsonb;serializer:json;not null" json:"learningStyle"`
		ModelParameters    ModelParameters    `gorm:"type:jsonb;serializer:json;not null" json:"modelParameters"`
		ConfidenceScore    float64            `gorm:"not null" json:"confidenceScore"`
		LastUpdated        time.Time          `gorm:"not null" json:"lastUpdated"`
	}
)

// DefaultPersonalization is the template used whenever a user has no stored profile yet.
func DefaultPersonalization(userID string) *Personalization {
	return &Personalization{
		UserID: userID,
		ActivityPatterns: ActivityPatterns{
			PreferredTimeOfDay: TimeOfDayUnknown,
			ConsistencyScore:   ScoreDefault,
			StreakLongest:      0,
		},
		NutritionPatterns: NutritionPatterns{
			CalorieAdherence:   PercentDefault,
			ProteinPreference:  ScoreDefault,
			CarbPreference:     ScoreDefault,
			FatPreference:      ScoreDefault,
			MealSizePreference: MealSizeModerate,
		},
		BehavioralInsights: BehavioralInsights{
			PlanAdherenceRate:               PercentDefault,
			MotivationalFactors:             []string{},
			ResponseToPositiveReinforcement: ScoreDefault,
			ResponseToNegativeFeedback:      ScoreDefault,
		},
		LearningStyle: LearningStyle{
			Visual:      ScoreDefault,
			Auditory:    ScoreDefault,
			Reading:     ScoreDefault,
			Kinesthetic: ScoreDefault,
		},
		ModelParameters: ModelParameters{
			DifficultyProgression: ScoreDefault,
			VarietyPreference:     ScoreDefault,
			ExplainabilityNeed:    ScoreDefault,
			AutonomyPreference:    ScoreDefault,
		},
		ConfidenceScore: ConfidenceInitial,
	}
}

// Clone returns a deep copy so aggregation never mutates a caller's value.
func (p *Personalization) Clone() *Personalization {
	if p == nil {
		return nil
	}
	clone := *p
	clone.BehavioralInsights.MotivationalFactors = slices.Clone(p.BehavioralInsights.MotivationalFactors)
	if clone.BehavioralInsights.MotivationalFactors == nil {
		clone.BehavioralInsights.MotivationalFactors = []string{}
	}
	return &clone
}

// Normalize clamps every score to its scale and resets unknown enum values.
func (p *Personalization) Normalize() {
	a := &p.ActivityPatterns
	switch a.PreferredTimeOfDay {
	case TimeOfDayUnknown, TimeOfDayMorning, TimeOfDayAfternoon, TimeOfDayEvening:
	default:
		a.PreferredTimeOfDay = TimeOfDayUnknown
	}
	a.ConsistencyScore = clamp(a.ConsistencyScore, ScoreMin, ScoreMax)
	a.StreakLongest = max(a.StreakLongest, 0)

	n := &p.NutritionPatterns
	n.CalorieAdherence = clamp(n.CalorieAdherence, 0, 100)
	n.ProteinPreference = clamp(n.ProteinPreference, ScoreMin, ScoreMax)
	n.CarbPreference = clamp(n.CarbPreference, ScoreMin, ScoreMax)
	n.FatPreference = clamp(n.FatPreference, ScoreMin, ScoreMax)
	switch n.MealSizePreference {
	case MealSizeSmall, MealSizeModerate, MealSizeLarge:
	default:
		n.MealSizePreference = MealSizeModerate
	}

	b := &p.BehavioralInsights
	b.PlanAdherenceRate = clamp(b.PlanAdherenceRate, 0, 100)
	b.ResponseToPositiveReinforcement = clamp(b.ResponseToPositiveReinforcement, ScoreMin, ScoreMax)
	b.ResponseToNegativeFeedback = clamp(b.ResponseToNegativeFeedback, ScoreMin, ScoreMax)
	if b.MotivationalFactors == nil {
		b.MotivationalFactors = []string{}
	}
	if len(b.MotivationalFactors) > MotivationalLimit {
		b.MotivationalFactors = b.MotivationalFactors[:MotivationalLimit]
	}

	l := &p.LearningStyle
	l.Visual = clamp(l.Visual, ScoreMin, ScoreMax)
	l.Auditory = clamp(l.Auditory, ScoreMin, ScoreMax)
	l.Reading = clamp(l.Reading, ScoreMin, ScoreMax)
	l.Kinesthetic = clamp(l.Kinesthetic, ScoreMin, ScoreMax)

	m := &p.ModelParameters
	m.DifficultyProgression = clamp(m.DifficultyProgression, ScoreMin, ScoreMax)
	m.VarietyPreference = clamp(m.VarietyPreference, ScoreMin, ScoreMax)
	m.ExplainabilityNeed = clamp(m.ExplainabilityNeed, ScoreMin, ScoreMax)
	m.AutonomyPreference = clamp(m.AutonomyPreference, ScoreMin, ScoreMax)

	p.ConfidenceScore = min(max(p.ConfidenceScore, 0), ConfidenceCeiling)
}

func clamp(value, lo, hi int) int {
	return min(max(value, lo), hi)
}
