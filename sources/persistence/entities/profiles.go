package entities

import (
	"time"
)

type UserProfile struct {
	ID                  string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Age                 int       `gorm:"not null;default:0" json:"age"`
	Gender              string    `gorm:"size:32" json:"gender"`
	ActivityLevel       string    `gorm:"size:32" json:"activity_level"`
	Goals               []string  `gorm:"type:jsonb;serializer:json" json:"goals"`
	DietaryRestrictions []string  `gorm:"type:jsonb;serializer:json" json:"dietary_restrictions"`
	Allergies           []string  `gorm:"type:jsonb;serializer:json" json:"allergies"`
	MedicalConditions   []string  `gorm:"type:jsonb;serializer:json" json:"medical_conditions"`
	CuisinePreferences  []string  `gorm:"type:jsonb;serializer:json" json:"cuisine_preferences"`
	Deficiencies        []string  `gorm:"type:jsonb;serializer:json" json:"deficiencies"`
	WeightKg            float64   `gorm:"not null;default:0" json:"weight_kg"`
	HeightCm            float64   `gorm:"not null;default:0" json:"height_cm"`
	MealComplexity      string    `gorm:"size:32" json:"meal_complexity"`
	CookingTimeMinutes  int       `gorm:"not null;default:0" json:"cooking_time_minutes"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

// PrimaryGoal returns the first declared goal, or an empty string.
func (p *UserProfile) PrimaryGoal() string {
	if p == nil || len(p.Goals) == 0 {
		return ""
	}
	return p.Goals[0]
}

// BMI returns the body mass index, or zero when weight or height is unknown.
func (p *UserProfile) BMI() float64 {
	if p == nil || p.WeightKg <= 0 || p.HeightCm <= 0 {
		return 0
	}
	meters := p.HeightCm / 100
	return p.WeightKg / (meters * meters)
}
