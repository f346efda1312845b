package interaction

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Interaction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;index;not null" json:"user"`
	InteractionType string         `gorm:"size:50;not null" json:"interaction_type"`
	InteractionData map[string]any `gorm:"serializer:json" json:"interaction_data"`
	Success         bool           `gorm:"not null" json:"success"`
	Timestamp       time.Time      `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (Interaction) TableName() string { return "user_interactions" }

func (i *Interaction) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TypeStats aggregates one interaction type over a window.
type TypeStats struct {
	Count       int64   `json:"count"`
	Successful  int64   `json:"successful"`
	SuccessRate float64 `json:"success_rate"`
}

type UserAnalytics struct {
	TotalConversations   int64 `json:"totalConversations"`
	TotalInteractions    int64 `json:"totalInteractions"`
	TotalRecommendations int64 `json:"totalRecommendations"`
}

type SystemAnalytics struct {
	TotalUsers              int64 `json:"totalUsers"`
	ConversationsLast30Days int64 `json:"conversationsLast30Days"`
	InteractionsLast30Days  int64 `json:"interactionsLast30Days"`
}
