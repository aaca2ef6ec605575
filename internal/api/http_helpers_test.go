package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))

	var dest struct {
		Name string `json:"name"`
	}
	err := decodeJSON(r, &dest)
	if err == nil {
		t.Fatal("decodeJSON accepted an unknown field")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("err = %q, want mention of the unknown field", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Basketball Court"}`))

	var dest struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &dest); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if dest.Name != "Basketball Court" {
		t.Errorf("name = %q", dest.Name)
	}
}

func TestRespondErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, http.StatusNotFound, kindNotFound, errors.New("project not found"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Kind != kindNotFound || body.Error.Message != "project not found" {
		t.Errorf("envelope = %+v", body.Error)
	}
}

// Internal errors must never leak driver details to clients.
func TestRespondErrorMasksInternal(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, http.StatusInternalServerError, kindInternal, errors.New(`pq: relation "projects" does not exist`))

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Message != "internal error" {
		t.Errorf("message = %q, want masked", body.Error.Message)
	}
}

func TestRespondJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	respondJSON(w, http.StatusNoContent, nil)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}
