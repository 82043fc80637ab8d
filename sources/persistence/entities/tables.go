package entities

func (UserProfile) TableName() string      { return "fit_user_profiles" }
func (InteractionEvent) TableName() string { return "fit_interaction_events" }
func (ProgressRecord) TableName() string   { return "fit_progress_records" }
func (Personalization) TableName() string  { return "fit_personalizations" }
func (QueryLog) TableName() string         { return "fit_ai_queries" }
func (Plan) TableName() string             { return "fit_plans" }

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{
		&UserProfile{},
		&InteractionEvent{},
		&ProgressRecord{},
		&Personalization{},
		&QueryLog{},
		&Plan{},
	}
}
