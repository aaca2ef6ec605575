package api

import (
	"context"

	"lingkod/internal/models"
)

// logActivity appends an audit entry for ordinary CRUD mutations. The
// write is best-effort here; only the approval workflow couples its log
// entry to the entity write transactionally.
func (a *API) logActivity(ctx context.Context, entry models.ActivityLog) {
	if err := a.store.ORM.WithContext(ctx).Create(&entry).Error; err != nil {
		a.logger.Error().Err(err).Str("action", string(entry.Action)).Msg("write activity log")
	}
}
