package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingkod/internal/models"
)

func TestObjectKeyFor(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51")

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"plain name", "permit.pdf", "documents/8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51/permit.pdf"},
		{"path traversal stripped", "../../etc/passwd", "documents/8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51/passwd"},
		{"windows separators", `C:\Users\juan\budget.xlsx`, "documents/8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51/budget.xlsx"},
		{"empty name", "", "documents/8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51/upload"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := objectKeyFor("documents/", id, tc.original); got != tc.want {
				t.Errorf("objectKeyFor = %q, want %q", got, tc.want)
			}
		})
	}
}

func newApproveRequest(t *testing.T, id, body string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/v1/projects/"+id+"/approve", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, userKey, models.User{ID: uuid.New(), Role: models.RoleStaff})
	return r.WithContext(ctx)
}

// Input validation must run before the workflow: malformed requests never
// reach the decision path.
func TestApproveProjectRejectsBadInput(t *testing.T) {
	a := &API{store: &Store{}, logger: zerolog.Nop()}

	tests := []struct {
		name string
		id   string
		body string
	}{
		{"bad project id", "not-a-uuid", `{"approved":true}`},
		{"missing approved", uuid.NewString(), `{}`},
		{"approved is a string", uuid.NewString(), `{"approved":"yes"}`},
		{"unknown field", uuid.NewString(), `{"approved":true,"force":true}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.handleApproveProject(w, newApproveRequest(t, tc.id, tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
