package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action names a state-changing operation recorded in the activity log.
type Action string

const (
	ActionUserRegistered        Action = "USER_REGISTERED"
	ActionProjectCreated        Action = "PROJECT_CREATED"
	ActionProjectUpdated        Action = "PROJECT_UPDATED"
	ActionProjectSubmitted      Action = "PROJECT_SUBMITTED"
	ActionProjectApproved       Action = "PROJECT_APPROVED"
	ActionProjectCancelled      Action = "PROJECT_CANCELLED"
	ActionTaskCreated           Action = "TASK_CREATED"
	ActionTaskUpdated           Action = "TASK_UPDATED"
	ActionTaskAssigned          Action = "TASK_ASSIGNED"
	ActionDocumentUploaded      Action = "DOCUMENT_UPLOADED"
	ActionDocumentReviewed      Action = "DOCUMENT_REVIEWED"
	ActionEventUpdated          Action = "EVENT_UPDATED"
	ActionAnnouncementPublished Action = "ANNOUNCEMENT_PUBLISHED"
)

// ActivityLog is an append-only audit record. Nothing in the codebase
// updates or deletes rows of this table; entries may outlive the entity
// they describe, so readers must tolerate dangling entity ids.
type ActivityLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action      Action            `gorm:"type:text;not null;index" json:"action"`
	Description string            `gorm:"type:text;not null" json:"description"`
	EntityType  string            `gorm:"type:text;not null" json:"entity_type"`
	EntityID    uuid.UUID         `gorm:"type:uuid;not null" json:"entity_id"`
	ActorID     *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ProjectID   *uuid.UUID        `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	Actor *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:ActorID;references:ID" json:"actor,omitempty"`
}
