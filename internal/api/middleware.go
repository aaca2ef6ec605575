package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"lingkod/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// currentUser returns the authenticated user stored by requireSession.
func currentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// sessionToken extracts the opaque token from the session cookie or an
// Authorization: Bearer header, cookie first.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// requireSession resolves the caller's identity before any handler or
// store access runs; unauthenticated requests are rejected here.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, kindUnauthenticated, errors.New("missing session"))
			return
		}

		ctx, cancel := withTimeout(r.Context())
		defer cancel()

		var session models.Session
		err := a.store.ORM.WithContext(ctx).
			Preload("User").
			First(&session, "token = ?", token).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondError(w, http.StatusUnauthorized, kindUnauthenticated, errors.New("invalid session"))
			return
		case err != nil:
			respondError(w, http.StatusInternalServerError, kindInternal, err)
			return
		}

		if !session.Live(time.Now().UTC()) {
			respondError(w, http.StatusUnauthorized, kindUnauthenticated, errors.New("session expired"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, session.User)))
	})
}

// requireRole gates a subtree on the caller's role. Note the approval
// endpoint deliberately does NOT sit behind this; see approval.Decide.
func (a *API) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := currentUser(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, kindUnauthenticated, errors.New("missing session"))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				respondError(w, http.StatusForbidden, kindForbidden, errors.New("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
