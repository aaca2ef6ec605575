package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Machine-readable error kinds. Clients branch on these, so they are part
// of the API contract.
const (
	kindUnauthenticated = "unauthenticated"
	kindForbidden       = "forbidden"
	kindNotFound        = "not_found"
	kindBadRequest      = "bad_request"
	kindConflict        = "conflict"
	kindInternal        = "internal"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError writes the structured error envelope. Internal failures
// get a generic message so driver errors never leak to clients.
func respondError(w http.ResponseWriter, status int, kind string, err error) {
	message := "internal error"
	if err != nil && kind != kindInternal {
		message = err.Error()
	}
	respondJSON(w, status, map[string]any{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
