package entities

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventTypeMissing      = errors.New("event type is missing")
	ErrEventTimestampMissing = errors.New("event timestamp is missing")
	ErrEventUserMissing      = errors.New("event user is missing")
)

type (
	InteractionEvent struct {
		ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
		UserID    string         `gorm:"type:varchar(128);not null;index:idx_fit_events_user_time,priority:1" json:"user_id"`
		Type      string         `gorm:"size:64;not null" json:"type"`
		Timestamp time.Time      `gorm:"column:occurred_at;not null;index:idx_fit_events_user_time,priority:2" json:"timestamp"`
		Details   map[string]any `gorm:"type:jsonb;serializer:json" json:"details"`
	}

	ProgressTask struct {
		Name string `json:"name,omitempty"`
		Done bool   `json:"done"`
	}

	ProgressRecord struct {
		ID       uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
		UserID   string                  `gorm:"type:varchar(128);not null;index:idx_fit_progress_user_date,priority:1" json:"user_id"`
		Date     time.Time               `gorm:"column:recorded_on;not null;index:idx_fit_progress_user_date,priority:2" json:"date"`
		Tasks    map[string]ProgressTask `gorm:"type:jsonb;serializer:json" json:"tasks"`
		Feedback string                  `gorm:"type:text" json:"feedback"`
	}
)

func (e *InteractionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (r *ProgressRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (e *InteractionEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return ErrEventUserMissing
	case strings.TrimSpace(e.Type) == "":
		return ErrEventTypeMissing
	case e.Timestamp.IsZero():
		return ErrEventTimestampMissing
	}
	return nil
}

func (r *ProgressRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return ErrEventUserMissing
	case r.Date.IsZero():
		return ErrEventTimestampMissing
	}
	return nil
}

// DetailString returns a non-empty string detail at the given path.
func (e *InteractionEvent) DetailString(path ...string) (string, bool) {
	value, ok := e.detail(path...)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// DetailNumber returns a numeric detail at the given path. Strings carrying a
// leading number such as "25g" are accepted.
func (e *InteractionEvent) DetailNumber(path ...string) (float64, bool) {
	value, ok := e.detail(path...)
	if !ok {
		return 0, false
	}
	return ParseLeadingNumber(value)
}

func (e *InteractionEvent) detail(path ...string) (any, bool) {
	if len(path) == 0 || e.Details == nil {
		return nil, false
	}
	var current any = e.Details
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// CompletionRatio returns done/total for the record's tasks and false when it has none.
func (r *ProgressRecord) CompletionRatio() (float64, bool) {
	if len(r.Tasks) == 0 {
		return 0, false
	}
	done := 0
	for _, task := range r.Tasks {
		if task.Done {
			done++
		}
	}
	return float64(done) / float64(len(r.Tasks)), true
}

func ParseLeadingNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		end := 0
		for i, r := range s {
			if unicode.IsDigit(r) || r == '.' || (i == 0 && (r == '-' || r == '+')) {
				end = i + 1
				continue
			}
			break
		}
		f, err := strconv.ParseFloat(s[:end], 64)
		return f, err == nil
	}
	return 0, false
}
