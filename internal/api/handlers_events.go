package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	q := a.store.ORM.WithContext(ctx).Order("starts_at")
	if r.URL.Query().Get("upcoming") == "true" {
		q = q.Where("ends_at >= ?", time.Now().UTC())
	}

	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
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
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() || req.EndsAt.Before(req.StartsAt) {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("starts_at and ends_at must form a valid range"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		CreatedBy:   user.ID,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&event).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionEventUpdated,
		Description: "Event " + event.Title + " scheduled by " + user.Name,
		EntityType:  "event",
		EntityID:    event.ID,
		ActorID:     &user.ID,
	})
	a.publish(realtime.ChannelGlobal, realtime.EventEventUpdated, map[string]any{
		"event_id":  event.ID,
		"starts_at": event.StartsAt,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"event": event})
}

func (a *API) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid event id is required"))
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.StartsAt != nil {
		updates["starts_at"] = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		updates["ends_at"] = req.EndsAt.UTC()
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("no fields to update"))
		return
	}
	updates["updated_at"] = time.Now().UTC()

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var event models.Event
	if err := orm.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("event not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	if err := orm.Model(&event).Updates(updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	if err := orm.First(&event, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionEventUpdated,
		Description: "Event " + event.Title + " updated by " + user.Name,
		EntityType:  "event",
		EntityID:    event.ID,
		ActorID:     &user.ID,
	})
	a.publish(realtime.ChannelGlobal, realtime.EventEventUpdated, map[string]any{
		"event_id":  event.ID,
		"starts_at": event.StartsAt,
	})

	respondJSON(w, http.StatusOK, map[string]any{"event": event})
}
