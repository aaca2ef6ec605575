package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus enumerates the lifecycle states of a barangay project.
type ProjectStatus string

const (
	ProjectPlanning        ProjectStatus = "PLANNING"
	ProjectPendingApproval ProjectStatus = "PENDING_APPROVAL"
	ProjectApproved        ProjectStatus = "APPROVED"
	ProjectCancelled       ProjectStatus = "CANCELLED"
	ProjectCompleted       ProjectStatus = "COMPLETED"
)

// Project is a unit of barangay work tracked from planning through completion.
//
// Status is written by the approval workflow or by an explicit admin edit.
// There is deliberately no transition guard: re-approving an already
// approved project rewrites the status and produces a fresh activity
// entry. Tightening this would change observable behaviour downstream.
type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string        `gorm:"type:text;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:text;not null;default:'PLANNING';index" json:"status"`
	Budget      int64         `gorm:"not null;default:0" json:"budget"`
	CreatedBy   uuid.UUID     `gorm:"type:uuid;not null;index" json:"created_by"`
	ManagerID   *uuid.UUID    `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	Creator *User `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
	Manager *User `gorm:"constraint:OnDelete:SET NULL;foreignKey:ManagerID;references:ID" json:"manager,omitempty"`
}

// PendingStatuses are the project states surfaced on the approval dashboard.
func PendingStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPlanning, ProjectPendingApproval}
}
