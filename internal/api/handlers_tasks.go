package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var tasks []models.Task
	if err := a.store.ORM.WithContext(ctx).
		Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	projectID, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid project id is required"))
		return
	}

	var req struct {
		Title      string     `json:"title"`
		AssigneeID *uuid.UUID `json:"assignee_id"`
		DueDate    *time.Time `json:"due_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("title is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	task := models.Task{
		ProjectID:  project.ID,
		Title:      req.Title,
		Status:     models.TaskTodo,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	}
	if err := orm.Create(&task).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionTaskCreated,
		Description: "Task " + task.Title + " created by " + user.Name,
		EntityType:  "task",
		EntityID:    task.ID,
		ActorID:     &user.ID,
		ProjectID:   &project.ID,
	})
	a.publish(realtime.ProjectChannel(project.ID), realtime.EventTaskUpdated, map[string]any{
		"task_id":    task.ID,
		"project_id": project.ID,
		"status":     task.Status,
	})
	if task.AssigneeID != nil {
		a.publish(realtime.UserChannel(*task.AssigneeID), realtime.EventTaskAssigned, map[string]any{
			"task_id":    task.ID,
			"project_id": project.ID,
		})
	}

	respondJSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid task id is required"))
		return
	}

	var req struct {
		Title      *string            `json:"title"`
		Status     *models.TaskStatus `json:"status"`
		AssigneeID *uuid.UUID         `json:"assignee_id"`
		DueDate    *time.Time         `json:"due_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var task models.Task
	if err := orm.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("task not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	assigned := req.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *req.AssigneeID)
	if req.AssigneeID != nil {
		updates["assignee_id"] = *req.AssigneeID
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("no fields to update"))
		return
	}
	updates["updated_at"] = time.Now().UTC()

	if err := orm.Model(&task).Updates(updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if err := orm.First(&task, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	action := models.ActionTaskUpdated
	if assigned {
		action = models.ActionTaskAssigned
	}
	a.logActivity(ctx, models.ActivityLog{
		Action:      action,
		Description: "Task " + task.Title + " updated by " + user.Name,
		EntityType:  "task",
		EntityID:    task.ID,
		ActorID:     &user.ID,
		ProjectID:   &task.ProjectID,
	})

	a.publish(realtime.TaskChannel(task.ID), realtime.EventTaskUpdated, map[string]any{
		"task_id":    task.ID,
		"project_id": task.ProjectID,
		"status":     task.Status,
	})
	if assigned {
		a.publish(realtime.UserChannel(*task.AssigneeID), realtime.EventTaskAssigned, map[string]any{
			"task_id":    task.ID,
			"project_id": task.ProjectID,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"task": task})
}
