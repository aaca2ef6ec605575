package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"gorm.io/gorm"

	"lingkod/internal/db"
	"lingkod/internal/models"
)

const (
	defaultActivityPageSize = 50
	maxActivityPageSize     = 200
	exportBatchSize         = 500
)

// activityRow is the read model for the activity feed.
type activityRow struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Action      string     `db:"action" json:"action"`
	Description string     `db:"description" json:"description"`
	EntityType  string     `db:"entity_type" json:"entity_type"`
	EntityID    uuid.UUID  `db:"entity_id" json:"entity_id"`
	ActorName   *string    `db:"actor_name" json:"actor_name,omitempty"`
	ProjectID   *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// The actor join is LEFT on purpose: log entries outlive the users and
// entities they describe.
const activityQuery = `
SELECT l.id, l.action, l.description, l.entity_type, l.entity_id,
       u.name AS actor_name,
       l.project_id, l.created_at
FROM activity_logs l
LEFT JOIN users u ON u.id = l.actor_id
WHERE ($1::text = '' OR l.entity_type = $1)
ORDER BY l.created_at DESC
LIMIT $2 OFFSET $3`

const activityCountQuery = `
SELECT count(*)
FROM activity_logs l
WHERE ($1::text = '' OR l.entity_type = $1)`

func (a *API) handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(parsed, maxActivityPageSize)
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("offset must be a non-negative integer"))
			return
		}
		offset = parsed
	}
	entityType := r.URL.Query().Get("entity_type")

	var total int64
	if err := db.Get(r.Context(), a.store.Pool, &total, activityCountQuery, entityType); err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	var rows []activityRow
	if err := db.Select(r.Context(), a.store.Pool, &rows, activityQuery, entityType, limit, offset); err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if rows == nil {
		rows = []activityRow{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"activity": rows, "total": total})
}

// handleExportActivity streams the full log as gzipped NDJSON, batched so
// an arbitrarily long history never sits in memory at once.
func (a *API) handleExportActivity(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="activity-log.ndjson.gz"`)

	gz := gzip.NewWriter(w)
	defer gz.Close()

	enc := json.NewEncoder(gz)

	var batch []models.ActivityLog
	err := a.store.ORM.WithContext(r.Context()).
		Order("created_at").
		FindInBatches(&batch, exportBatchSize, func(_ *gorm.DB, _ int) error {
			for _, entry := range batch {
				if err := enc.Encode(entry); err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		// Headers are already gone; all we can do is log and cut the stream.
		a.logger.Error().Err(err).Msg("export activity log")
	}
}
