package conversation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("conversation not found")
	ErrInvalidMessageType = errors.New("invalid message type")
)

const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
)

func ValidMessageType(t string) bool {
	return t == MessageTypeUser || t == MessageTypeAssistant
}

// Conversation is one logged chat message.
type Conversation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user"`
	MessageType string         `gorm:"size:20;not null" json:"message_type"`
	MessageText string         `gorm:"not null" json:"message_text"`
	ContextData map[string]any `gorm:"serializer:json" json:"context_data"`
	Timestamp   time.Time      `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HistoryEntry is the chronological chat transcript shape served from the
// raw-SQL service.
type HistoryEntry struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"userId"`
	Role      string         `json:"role"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Context   map[string]any `json:"context"`
	Timestamp time.Time      `json:"timestamp"`
}
