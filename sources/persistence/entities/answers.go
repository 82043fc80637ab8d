package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	StructuredAnswer struct {
		MainAnswer       string `json:"mainAnswer"`
		AdditionalInfo   string `json:"additionalInfo"`
		PersonalizedTips string `json:"personalizedTips"`
	}

	QueryLog struct {
		ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
		UserID    string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
		Type      string    `gorm:"size:64;not null" json:"type"`
		Query     string    `gorm:"type:text;not null" json:"query"`
		Response  string    `gorm:"type:text" json:"response"`
		FromCache bool      `gorm:"not null;default:false" json:"from_cache"`
		CreatedAt time.Time `gorm:"not null" json:"created_at"`
	}
)

func (q *QueryLog) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
