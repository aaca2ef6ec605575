// Package approval implements the project approve/reject workflow: resolve
// the acting user, flip the project status, append exactly one activity
// entry in the same transaction, then fan out a best-effort refresh event.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

var (
	// ErrUserNotFound means the acting identity has no User record.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound means the decision references a missing project.
	ErrProjectNotFound = errors.New("project not found")
)

// Store is the persistence boundary the workflow needs. ApplyDecision
// must make the project update and the log insert visible together or
// not at all.
type Store interface {
	UserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	ProjectByID(ctx context.Context, id uuid.UUID) (models.Project, error)
	ApplyDecision(ctx context.Context, project *models.Project, entry *models.ActivityLog) error
}

// Publisher is the fire-and-forget notification boundary. Implementations
// must never block on delivery or surface failures to the caller.
type Publisher interface {
	Publish(channel, event string, payload any)
}

// Result is the success payload of a decision.
type Result struct {
	Message string         `json:"message"`
	Project models.Project `json:"project"`
}

// Handler performs approval decisions.
type Handler struct {
	store     Store
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// New constructs a Handler. publisher may be nil when no real-time
// transport is configured.
func New(store Store, publisher Publisher, logger zerolog.Logger) (*Handler, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &Handler{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Decide applies an approve/reject decision to a project on behalf of
// actorID.
//
// Two policies here are deliberate and must not be "fixed":
//   - transitions are permissive: there is no check that the project is
//     currently approvable, so re-deciding an already decided project
//     rewrites the status and appends another activity entry;
//   - authorization is identity-existence only: any user with a record
//     may decide any project, independent of role.
//
// Concurrent decisions on the same project are not serialized;
// last-write-wins on the status and each call leaves its own log entry.
func (h *Handler) Decide(ctx context.Context, projectID, actorID uuid.UUID, approved bool) (Result, error) {
	actor, err := h.store.UserByID(ctx, actorID)
	if err != nil {
		return Result{}, err
	}

	project, err := h.store.ProjectByID(ctx, projectID)
	if err != nil {
		return Result{}, err
	}

	decidedAt := h.now()

	status := models.ProjectApproved
	action := models.ActionProjectApproved
	verb := "approved"
	if !approved {
		status = models.ProjectCancelled
		action = models.ActionProjectCancelled
		verb = "rejected"
	}

	project.Status = status
	project.UpdatedAt = decidedAt

	entry := models.ActivityLog{
		Action:      action,
		Description: fmt.Sprintf("Project %q %s by %s", project.Name, verb, actor.Name),
		EntityType:  "project",
		EntityID:    project.ID,
		ActorID:     &actor.ID,
		ProjectID:   &project.ID,
		Metadata: datatypes.JSONMap{
			"approved":   approved,
			"approvedBy": actor.ID.String(),
			"approvedAt": decidedAt.Format(time.RFC3339),
		},
		CreatedAt: decidedAt,
	}

	if err := h.store.ApplyDecision(ctx, &project, &entry); err != nil {
		return Result{}, err
	}

	// Broadcast only after the writes are durable. Failures stay inside
	// the publisher; nothing past this point can fail the decision.
	if h.publisher != nil {
		payload := map[string]any{
			"project_id": project.ID,
			"status":     project.Status,
			"decided_by": actor.ID,
		}
		h.publisher.Publish(realtime.ProjectChannel(project.ID), realtime.EventProjectUpdated, payload)
		h.publisher.Publish(realtime.ChannelDashboard, realtime.EventProjectUpdated, payload)
	}

	message := fmt.Sprintf("Project %q %s successfully", project.Name, verb)

	h.logger.Info().
		Str("project_id", project.ID.String()).
		Str("actor_id", actor.ID.String()).
		Bool("approved", approved).
		Msg("project decision applied")

	return Result{Message: message, Project: project}, nil
}
