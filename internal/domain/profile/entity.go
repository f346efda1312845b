package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
)

// UserProfile is the survey-backed profile, one per user.
type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user"`

	PhysicalNeeds            []string `gorm:"serializer:json;not null" json:"physical_needs"`
	EnergyLevel              string   `gorm:"size:64;not null;default:''" json:"energy_level"`
	MainDevice               string   `gorm:"size:64;not null;default:''" json:"main_device"`
	AccessibilityAdaptations []string `gorm:"serializer:json;not null" json:"accessibility_adaptations"`
	DailyTaskChallenges      []string `gorm:"serializer:json;not null" json:"daily_task_challenges"`
	SendPhotos               string   `gorm:"size:16;not null;default:''" json:"send_photos"`
	ConditionName            string   `gorm:"size:255;not null;default:''" json:"condition_name"`
	HelpNeeded               string   `gorm:"not null;default:''" json:"help_needed"`
	ShareExperiences         string   `gorm:"size:16;not null;default:''" json:"share_experiences"`
	OtherNeedsSoon           string   `gorm:"not null;default:''" json:"other_needs_soon"`

	Bio      string  `gorm:"not null;default:''" json:"bio"`
	Avatar   *string `gorm:"size:255" json:"avatar"`
	Location string  `gorm:"size:255;not null;default:''" json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *UserProfile) BeforeSave(*gorm.DB) error {
	p.PhysicalNeeds = nonNil(p.PhysicalNeeds)
	p.AccessibilityAdaptations = nonNil(p.AccessibilityAdaptations)
	p.DailyTaskChallenges = nonNil(p.DailyTaskChallenges)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Document is the free-form profile_data JSON kept alongside the survey
// columns by the raw-SQL service.
type Document map[string]any
