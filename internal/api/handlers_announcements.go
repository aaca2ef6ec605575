package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

func (a *API) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var announcements []models.Announcement
	if err := a.store.ORM.WithContext(ctx).
		Preload("Publisher").
		Order("published_at DESC").
		Find(&announcements).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"announcements": announcements})
}

func (a *API) handlePublishAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req struct {
		Title    string                      `json:"title"`
		Body     string                      `json:"body"`
		Priority models.AnnouncementPriority `json:"priority"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("title and body are required"))
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	ann := models.Announcement{
		Title:       req.Title,
		Body:        req.Body,
		Priority:    req.Priority,
		PublishedBy: user.ID,
		PublishedAt: time.Now().UTC(),
	}
	if err := a.store.ORM.WithContext(ctx).Create(&ann).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionAnnouncementPublished,
		Description: "Announcement " + ann.Title + " published by " + user.Name,
		EntityType:  "announcement",
		EntityID:    ann.ID,
		ActorID:     &user.ID,
	})
	a.publish(realtime.ChannelGlobal, realtime.EventAnnouncementPublished, map[string]any{
		"announcement_id": ann.ID,
		"title":           ann.Title,
		"priority":        ann.Priority,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"announcement": ann})
}
