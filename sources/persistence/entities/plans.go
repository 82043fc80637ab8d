package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type (
	Macros struct {
		Protein decimal.Decimal `json:"protein"`
		Carbs   decimal.Decimal `json:"carbs"`
		Fat     decimal.Decimal `json:"fat"`
	}

	Meal struct {
		Type            string   `json:"type"`
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		Ingredients     []string `json:"ingredients"`
		Macros          Macros   `json:"macros"`
		PrepTimeMinutes int      `json:"prepTimeMinutes"`
		Difficulty      int      `json:"difficulty"`
	}

	PlanDay struct {
		Day   string `json:"day"`
		Meals []Meal `json:"meals"`
	}

	ShoppingCategory struct {
		Category string   `json:"category"`
		Items    []string `json:"items"`
	}

	PlanAlternative struct {
		DayIndex    int    `json:"dayIndex"`
		MealType    string `json:"mealType"`
		Alternative string `json:"alternative"`
	}

	PlanBody struct {
		Days         []PlanDay          `json:"days"`
		ShoppingList []ShoppingCategory `json:"shoppingList"`
		MealPrepTips []string           `json:"mealPrepTips"`
		Alternatives []PlanAlternative  `json:"alternatives"`
	}

	Exercise struct {
		Name            string `json:"name"`
		Sets            int    `json:"sets,omitempty"`
		Reps            string `json:"reps,omitempty"`
		DurationMinutes int    `json:"durationMinutes,omitempty"`
	}

	WorkoutSession struct {
		Day       string     `json:"day"`
		Focus     string     `json:"focus"`
		Exercises []Exercise `json:"exercises"`
	}

	WorkoutWeek struct {
		Week     int              `json:"week"`
		Theme    string           `json:"theme"`
		Sessions []WorkoutSession `json:"sessions"`
	}

	WorkoutBody struct {
		Introduction        string        `json:"introduction"`
		Weeks               []WorkoutWeek `json:"weeks"`
		NutritionGuidelines []string      `json:"nutritionGuidelines"`
		ProgressMetrics     []string      `json:"progressMetrics"`
		Adaptations         []string      `json:"adaptations"`
		Duration            string        `json:"duration"`
		Difficulty          string        `json:"difficulty"`
		FocusAreas          []string      `json:"focusAreas"`
	}

	// PlanParameters carries the request knobs of both plan types. Meal fields
	// apply to nutrition plans, session fields to workout plans.
	PlanParameters struct {
		WeekNumber      int      `json:"weekNumber,omitempty"`
		CalorieTarget   int      `json:"calorieTarget,omitempty"`
		MealsPerDay     int      `json:"mealsPerDay,omitempty"`
		IncludeSnacks   *bool    `json:"includeSnacks,omitempty"`
		FocusAreas      []string `json:"focusAreas,omitempty"`
		SessionsPerWeek int      `json:"sessionsPerWeek,omitempty"`
		SessionMinutes  int      `json:"sessionMinutes,omitempty"`
		Equipment       []string `json:"equipment,omitempty"`
	}

	Plan struct {
		ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
		UserID      string         `gorm:"type:varchar(128);not null;index" json:"userId"`
		Type        string         `gorm:"size:32;not null" json:"type"`
		WeekNumber  int            `gorm:"not null" json:"weekNumber"`
		Parameters  PlanParameters `gorm:"type:jsonb;serializer:json" json:"parameters"`
		Body        *PlanBody      `gorm:"type:jsonb;serializer:json" json:"plan,omitempty"`
		Workout     *WorkoutBody   `gorm:"type:jsonb;serializer:json" json:"workout,omitempty"`
		Prompt      string         `gorm:"type:text" json:"-"`
		RawResponse string         `gorm:"type:text" json:"-"`
		CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
	}
)

// NewPlanBody returns a body with seven empty days.
func NewPlanBody() *PlanBody {
	days := make([]PlanDay, len(Weekdays))
	for i, name := range Weekdays {
		days[i] = PlanDay{Day: name, Meals: []Meal{}}
	}
	return &PlanBody{
		Days:         days,
		ShoppingList: []ShoppingCategory{},
		MealPrepTips: []string{},
		Alternatives: []PlanAlternative{},
	}
}

// NewWorkoutBody returns a body with the given number of empty weeks.
func NewWorkoutBody(weeks int) *WorkoutBody {
	body := &WorkoutBody{
		Weeks:               make([]WorkoutWeek, weeks),
		NutritionGuidelines: []string{},
		ProgressMetrics:     []string{},
		Adaptations:         []string{},
		FocusAreas:          []string{},
	}
	for i := range body.Weeks {
		body.Weeks[i] = WorkoutWeek{Week: i + 1, Sessions: []WorkoutSession{}}
	}
	return body
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
