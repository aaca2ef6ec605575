package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"lingkod/internal/models"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var users []models.User
	if err := a.store.ORM.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid user id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var user models.User
	if err := a.store.ORM.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, kindNotFound, errors.New("user not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
