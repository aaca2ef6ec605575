package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates task progress states.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// Task is a unit of work inside a project, optionally assigned to a user.
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Title      string     `gorm:"type:text;not null" json:"title"`
	Status     TaskStatus `gorm:"type:text;not null;default:'TODO'" json:"status"`
	AssigneeID *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Project  *Project `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Assignee *User    `gorm:"constraint:OnDelete:SET NULL;foreignKey:AssigneeID;references:ID" json:"assignee,omitempty"`
}
