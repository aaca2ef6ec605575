package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingkod/internal/models"
	"lingkod/internal/storage"
)

// When the metadata insert fails after the upload URL was signed, the
// handler must delete the object key so nothing orphaned stays behind.
func TestRegisterDocumentCleansUpObjectOnCreateFailure(t *testing.T) {
	var mu sync.Mutex
	var deletes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			mu.Lock()
			deletes = append(deletes, r.URL.Path)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("S3_ENDPOINT", srv.URL)
	t.Setenv("S3_ACCESS_KEY", "test")
	t.Setenv("S3_SECRET_KEY", "test")
	blobs, err := storage.NewClientFromEnv()
	if err != nil {
		t.Fatalf("storage client: %v", err)
	}

	// No documents table, so the insert fails after presigning.
	orm := newTestORM(t)

	a := &API{
		store: &Store{ORM: orm, Blobs: blobs},
		config: Config{
			DocumentBucket: "lingkod-docs",
			DocumentPrefix: "documents/",
			PresignTTL:     time.Minute,
		},
		logger: zerolog.Nop(),
	}

	r := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader(`{"original_name":"permit.pdf"}`))
	r = r.WithContext(context.WithValue(r.Context(), userKey, models.User{ID: uuid.New(), Role: models.RoleStaff}))
	w := httptest.NewRecorder()
	a.handleRegisterDocument(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(deletes) != 1 {
		t.Fatalf("object store saw %d deletes, want 1", len(deletes))
	}
	if !strings.HasPrefix(deletes[0], "/lingkod-docs/documents/") || !strings.HasSuffix(deletes[0], "/permit.pdf") {
		t.Errorf("deleted key = %q", deletes[0])
	}
}
