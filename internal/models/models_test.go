package models

import (
	"testing"
	"time"
)

func TestAwaitingReview(t *testing.T) {
	pending := DocumentPending
	approved := DocumentApproved
	rejected := DocumentRejected

	tests := []struct {
		name   string
		status *DocumentStatus
		want   bool
	}{
		{"nil status counts as pending", nil, true},
		{"explicit pending", &pending, true},
		{"approved", &approved, false},
		{"rejected", &rejected, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := awaitingReview(tc.status); got != tc.want {
				t.Errorf("awaitingReview = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSessionLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Hour)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"active", Session{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", Session{ExpiresAt: now.Add(-time.Minute)}, false},
		{"expires exactly now", Session{ExpiresAt: now}, false},
		{"revoked", Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.Live(now); got != tc.want {
				t.Errorf("Live = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPendingStatuses(t *testing.T) {
	got := PendingStatuses()
	want := []ProjectStatus{ProjectPlanning, ProjectPendingApproval}
	if len(got) != len(want) {
		t.Fatalf("PendingStatuses returned %d statuses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("status[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
