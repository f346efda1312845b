package recommendation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("recommendation not found")

// Recommendation stores an opaque recommendation payload and the user's
// feedback on it.
type Recommendation struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;index;not null" json:"user"`
	RecommendationType *string        `gorm:"size:100" json:"recommendation_type"`
	RecommendationData map[string]any `gorm:"serializer:json;not null" json:"recommendation_data"`
	WasHelpful         *bool          `json:"was_helpful"`
	Feedback           *string        `json:"feedback"`
	Timestamp          time.Time      `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (Recommendation) TableName() string { return "recommendations" }

func (r *Recommendation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type HistoryEntry struct {
	ID         uuid.UUID      `json:"id"`
	Type       *string        `json:"type"`
	Data       map[string]any `json:"data"`
	WasHelpful *bool          `json:"wasHelpful"`
	Feedback   *string        `json:"feedback"`
	Timestamp  time.Time      `json:"timestamp"`
}
