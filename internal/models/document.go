package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DocumentStatus is the review state of an uploaded document. The column
// is nullable on purpose: a NULL status and an explicit PENDING are both
// treated as awaiting review, while any other value excludes the document
// from the pending queue.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// awaitingReview reports whether a status value (possibly nil) places a
// document in the pending queue. It is the Go statement of the predicate
// the pending-documents SQL applies on the database side.
func awaitingReview(status *DocumentStatus) bool {
	return status == nil || *status == DocumentPending
}

// Document holds the metadata of an uploaded file. The bytes themselves
// live in object storage under ObjectKey; DownloadCount only ever grows.
type Document struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID      *uuid.UUID        `gorm:"type:uuid;index" json:"project_id,omitempty"`
	UploadedBy     uuid.UUID         `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	ObjectKey      string            `gorm:"type:text;uniqueIndex;not null" json:"object_key"`
	MimeType       string            `gorm:"type:text;not null" json:"mime_type"`
	OriginalName   string            `gorm:"type:text;not null" json:"original_name"`
	SizeBytes      int64             `gorm:"not null;default:0" json:"size_bytes"`
	DownloadCount  int64             `gorm:"not null;default:0" json:"download_count"`
	LastAccessed   *time.Time        `json:"last_accessed,omitempty"`
	ApprovalStatus *DocumentStatus   `gorm:"type:text;index" json:"approval_status,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Uploader *User    `gorm:"constraint:OnDelete:RESTRICT;foreignKey:UploadedBy;references:ID" json:"uploader,omitempty"`
	Project  *Project `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
}
