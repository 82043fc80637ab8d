package platform

type EventType = string

const (
	EventWorkoutStarted   EventType = "workout_started"
	EventWorkoutCompleted EventType = "workout_completed"
	EventMealLogged       EventType = "meal_logged"
	EventRecipeView       EventType = "recipe_view"
	EventRecipeFavorite   EventType = "recipe_favorite"
	EventRecipePrepared   EventType = "recipe_prepared"
)

type QueryType = string

const (
	QueryHealthQuestion QueryType = "health_question"
	QueryNutritionPlan  QueryType = "nutrition_plan_generation"
	QueryWorkoutPlan    QueryType = "workout_plan_generation"
)

type PlanType = string

const (
	PlanNutrition PlanType = "nutrition"
	PlanWorkout   PlanType = "workout"
)
