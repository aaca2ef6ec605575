package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingkod/internal/approval"
	"lingkod/internal/db"
	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	q := a.store.ORM.WithContext(ctx).Order("created_at DESC")
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		q = q.Where("status = ?", models.ProjectStatus(status))
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Budget      int64      `json:"budget"`
		ManagerID   *uuid.UUID `json:"manager_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("name is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectPlanning,
		Budget:      req.Budget,
		CreatedBy:   user.ID,
		ManagerID:   req.ManagerID,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionProjectCreated,
		Description: "Project " + project.Name + " created by " + user.Name,
		EntityType:  "project",
		EntityID:    project.ID,
		ActorID:     &user.ID,
		ProjectID:   &project.ID,
	})
	a.publish(realtime.ChannelDashboard, realtime.EventProjectUpdated, map[string]any{
		"project_id": project.ID,
		"status":     project.Status,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"project": project})
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	q := a.store.ORM.WithContext(ctx)
	if r.URL.Query().Get("expand") == "relations" {
		q = q.Preload("Creator").Preload("Manager")
	}

	var project models.Project
	if err := q.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	var req struct {
		Name        *string               `json:"name"`
		Description *string               `json:"description"`
		Budget      *int64                `json:"budget"`
		ManagerID   *uuid.UUID            `json:"manager_id"`
		Status      *models.ProjectStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.ManagerID != nil {
		updates["manager_id"] = *req.ManagerID
	}
	if req.Status != nil {
		// Explicit status edits bypass the approval workflow on purpose.
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("no fields to update"))
		return
	}
	updates["updated_at"] = time.Now().UTC()

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	if err := orm.Model(&project).Updates(updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if err := orm.First(&project, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionProjectUpdated,
		Description: "Project " + project.Name + " updated by " + user.Name,
		EntityType:  "project",
		EntityID:    project.ID,
		ActorID:     &user.ID,
		ProjectID:   &project.ID,
	})
	a.publish(realtime.ProjectChannel(project.ID), realtime.EventProjectUpdated, map[string]any{
		"project_id": project.ID,
		"status":     project.Status,
	})

	respondJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (a *API) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	now := time.Now().UTC()
	if err := orm.Model(&project).Updates(map[string]any{
		"status":     models.ProjectPendingApproval,
		"updated_at": now,
	}).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	project.Status = models.ProjectPendingApproval
	project.UpdatedAt = now

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionProjectSubmitted,
		Description: "Project " + project.Name + " submitted for approval by " + user.Name,
		EntityType:  "project",
		EntityID:    project.ID,
		ActorID:     &user.ID,
		ProjectID:   &project.ID,
	})
	a.publish(realtime.ChannelDashboard, realtime.EventProjectUpdated, map[string]any{
		"project_id": project.ID,
		"status":     project.Status,
	})

	respondJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (a *API) handleApproveProject(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	// approved is a required boolean; a missing field or any other JSON
	// type is an input error, not a default-to-false.
	var req struct {
		Approved *bool `json:"approved"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	if req.Approved == nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("approved is required and must be a boolean"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.approvals.Decide(ctx, id, user.ID, *req.Approved)
	switch {
	case errors.Is(err, approval.ErrUserNotFound), errors.Is(err, approval.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, kindNotFound, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": result.Message,
		"project": result.Project,
	})
}

// pendingProjectRow is the read model for the approval dashboard.
type pendingProjectRow struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Status       string    `db:"status" json:"status"`
	Budget       int64     `db:"budget" json:"budget"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CreatorName  string    `db:"creator_name" json:"creator_name"`
	CreatorEmail string    `db:"creator_email" json:"creator_email"`
	ManagerName  *string   `db:"manager_name" json:"manager_name,omitempty"`
}

const pendingProjectsQuery = `
SELECT p.id, p.name, p.status, p.budget, p.created_at,
       c.name AS creator_name, c.email AS creator_email,
       m.name AS manager_name
FROM projects p
JOIN users c ON c.id = p.created_by
LEFT JOIN users m ON m.id = p.manager_id
WHERE p.status = ANY($1)
ORDER BY p.created_at DESC`

func (a *API) handlePendingProjects(w http.ResponseWriter, r *http.Request) {
	pending := models.PendingStatuses()
	statuses := make([]string, len(pending))
	for i, s := range pending {
		statuses[i] = string(s)
	}

	var rows []pendingProjectRow
	if err := db.Select(r.Context(), a.store.Pool, &rows, pendingProjectsQuery, statuses); err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if rows == nil {
		rows = []pendingProjectRow{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": rows})
}
