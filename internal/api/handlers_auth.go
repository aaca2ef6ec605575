package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lingkod/internal/models"
)

// isUniqueViolation reports whether err is a duplicate-key error, for
// inserts racing past an existence check.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   a.config.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, kindBadRequest, errors.New("password must be at least 8 characters"))
		return
	}
	if req.Name == "" {
		req.Name = req.Email
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var existing models.User
	if err := orm.First(&existing, "email = ?", req.Email).Error; err == nil {
		respondError(w, http.StatusConflict, kindConflict, errors.New("email already registered"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         models.RoleResident,
	}
	if err := orm.Create(&user).Error; err != nil {
		// A duplicate email can land between the lookup and the insert;
		// the race loses to the unique index, not to the handler.
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, kindConflict, errors.New("email already registered"))
			return
		}
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.logActivity(ctx, models.ActivityLog{
		Action:      models.ActionUserRegistered,
		Description: user.Name + " registered",
		EntityType:  "user",
		EntityID:    user.ID,
		ActorID:     &user.ID,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, kindBadRequest, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var user models.User
	err := orm.First(&user, "email = ?", req.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil) {
		respondError(w, http.StatusUnauthorized, kindUnauthenticated, errors.New("invalid credentials"))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	token, err := newSessionToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	session := models.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(a.config.SessionTTL),
	}
	if err := orm.Create(&session).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.setSessionCookie(w, token, session.ExpiresAt)
	respondJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).
		Model(&models.Session{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", now).Error; err != nil {
		respondError(w, http.StatusInternalServerError, kindInternal, err)
		return
	}

	a.setSessionCookie(w, "", time.Unix(0, 0))
	respondJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
