package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnouncementPriority controls how prominently an announcement is shown.
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "LOW"
	PriorityNormal AnnouncementPriority = "NORMAL"
	PriorityUrgent AnnouncementPriority = "URGENT"
)

// Announcement is a broadcast notice published to all residents.
type Announcement struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string               `gorm:"type:text;not null" json:"title"`
	Body        string               `gorm:"type:text;not null" json:"body"`
	Priority    AnnouncementPriority `gorm:"type:text;not null;default:'NORMAL'" json:"priority"`
	PublishedBy uuid.UUID            `gorm:"type:uuid;not null" json:"published_by"`
	PublishedAt time.Time            `gorm:"not null;index" json:"published_at"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Publisher *User `gorm:"constraint:OnDelete:RESTRICT;foreignKey:PublishedBy;references:ID" json:"publisher,omitempty"`
}
