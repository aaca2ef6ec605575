package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names a coarse permission level assigned to a user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleResident Role = "RESIDENT"
)

// User represents an authenticated actor in the barangay system.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"type:text;not null" json:"name"`
	PasswordHash string         `gorm:"type:text;not null" json:"-"`
	Role         Role           `gorm:"type:text;not null;default:'RESIDENT'" json:"role"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Sessions []Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
