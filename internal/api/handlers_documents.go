package api

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingkod/internal/db"
	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

// objectKeyFor places every upload under the configured prefix with an
// unguessable directory, keeping the original name for humans. The key
// never leaves the bucket namespace regardless of the client-supplied name.
func objectKeyFor(prefix string, id uuid.UUID, originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return prefix + id.String() + "/" + name
}

func (a *API) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	if a.store.Blobs == nil {
		respondError(w, http.StatusFailedDependency, kindInternal, errors.New("object storage not configured"))
		return
	}

	user, _ := currentUser(r.Context())

	var req struct {
		ProjectID    *uuid.UUID     `json:"project_id"`
		OriginalName string         `json:"original_name"`
		MimeType     string         `json:"mime_type"`
		SizeBytes    int64          `json:"size_bytes"`
		MarkPending  bool           `json:"mark_pending"`
		Metadata     map[string]any `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	req.OriginalName = strings.TrimSpace(req.OriginalName)
	if req.OriginalName == "" {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("original_name is required"))
		return
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	if req.ProjectID != nil {
		var project models.Project
		if err := orm.First(&project, "id = ?", *req.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))
				return
			}
			respondError(w, http.StatusInternalServerError, kindInternal, err)
			return
		}
	}

	id := uuid.New()
	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	doc := models.Document{
		ID:           id,
		ProjectID:    req.ProjectID,
		UploadedBy:   user.ID,
		ObjectKey:    objectKeyFor(a.config.DocumentPrefix, id, req.OriginalName),
		MimeType:     req.MimeType,
		OriginalName: req.OriginalName,
		SizeBytes:    req.SizeBytes,
		Metadata:     metadata,
	}
	if req.MarkPending {
		pending := models.DocumentPending
		doc.ApprovalStatus = &pending
	}

	uploadURL, err := a.store.Blobs.PresignPut(ctx, a.config.DocumentBucket, doc.ObjectKey, doc.MimeType, a.config.PresignTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	if err := orm.Create(&doc).Error; err != nil {
		// Best-effort rollback of the object slot so the signed key never
		// outlives a failed registration.
		if derr := a.store.Blobs.DeleteObject(ctx, a.config.DocumentBucket, doc.ObjectKey); derr != nil {
			a.logger.Error().Err(derr).Str("object_key", doc.ObjectKey).Msg("roll back upload object")
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionDocumentUploaded,
		Description: "Document " + doc.OriginalName + " uploaded by " + user.Name,
		EntityType:  "document",
		EntityID:    doc.ID,
		ActorID:     &user.ID,
		ProjectID:   doc.ProjectID,
	})
	a.publish(realtime.ChannelDashboard, realtime.EventDocumentUploaded, map[string]any{
		"document_id": doc.ID,
		"project_id":  doc.ProjectID,
	})

	respondJSON(w, http.StatusCreated, map[string]any{
		"document":   doc,
		"upload_url": uploadURL,
	})
}

// pendingDocumentRow is the read model for the document review queue.
type pendingDocumentRow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OriginalName   string    `db:"original_name" json:"original_name"`
	MimeType       string    `db:"mime_type" json:"mime_type"`
	ApprovalStatus *string   `db:"approval_status" json:"approval_status,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UploaderName   string    `db:"uploader_name" json:"uploader_name"`
	ProjectName    *string   `db:"project_name" json:"project_name,omitempty"`
}

// A NULL approval_status and an explicit PENDING both mean "awaiting
// review"; any other value keeps the document out of the queue.
const pendingDocumentsQuery = `
SELECT d.id, d.original_name, d.mime_type, d.approval_status, d.created_at,
       u.name AS uploader_name,
       p.name AS project_name
FROM documents d
JOIN users u ON u.id = d.uploaded_by
LEFT JOIN projects p ON p.id = d.project_id
WHERE d.approval_status IS NULL OR d.approval_status = $1
ORDER BY d.created_at DESC`

func (a *API) handlePendingDocuments(w http.ResponseWriter, r *http.Request) {
	var rows []pendingDocumentRow
	if err := db.Select(r.Context(), a.store.Pool, &rows, pendingDocumentsQuery, string(models.DocumentPending)); err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if rows == nil {
		rows = []pendingDocumentRow{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": rows})
}

func (a *API) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid document id is required"))
		return
	}

	var req struct {
		Status models.DocumentStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	if req.Status != models.DocumentApproved && req.Status != models.DocumentRejected {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("status must be APPROVED or REJECTED"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var doc models.Document
	if err := orm.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("document not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	if err := orm.Model(&doc).Updates(map[string]any{
		"approval_status": req.Status,
		"updated_at":      time.Now().UTC(),
	}).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	doc.ApprovalStatus = &req.Status

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionDocumentReviewed,
		Description: "Document " + doc.OriginalName + " marked " + string(req.Status) + " by " + user.Name,
		EntityType:  "document",
		EntityID:    doc.ID,
		ActorID:     &user.ID,
		ProjectID:   doc.ProjectID,
	})

	respondJSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (a *API) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	if a.store.Blobs == nil {
		respondError(w, http.StatusFailedDependency, kindInternal, errors.New("object storage not configured"))
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid document id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var doc models.Document
	if err := orm.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("document not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	url, err := a.store.Blobs.PresignGet(ctx, a.config.DocumentBucket, doc.ObjectKey, a.config.PresignTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	// download_count only ever grows; the increment happens in SQL so
	// concurrent downloads don't lose counts.
	if _, err := db.Exec(ctx, a.store.Pool,
		`UPDATE documents SET download_count = download_count + 1, last_accessed = $1 WHERE id = $2`,
		time.Now().UTC(), doc.ID); err != nil {
		a.logger.Error().Err(err).Str("document_id", doc.ID.String()).Msg("record download")
	}

	http.Redirect(w, r, url, http.StatusFound)
}
