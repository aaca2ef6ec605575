package realtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubTransport struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (s *stubTransport) Publish(subj string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.subjects = append(s.subjects, subj)
	s.payloads = append(s.payloads, data)
	return nil
}

func TestPublishEnvelope(t *testing.T) {
	tr := &stubTransport{}
	b := &Broadcaster{tr: tr, logger: zerolog.Nop()}

	b.Publish(ChannelDashboard, EventProjectUpdated, map[string]string{"status": "APPROVED"})

	if len(tr.subjects) != 1 {
		t.Fatalf("published %d messages, want 1", len(tr.subjects))
	}
	if want := "lingkod.rt.dashboard"; tr.subjects[0] != want {
		t.Errorf("subject = %q, want %q", tr.subjects[0], want)
	}

	var env struct {
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(tr.payloads[0], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Event != EventProjectUpdated {
		t.Errorf("event = %q, want %q", env.Event, EventProjectUpdated)
	}
	if env.Payload["status"] != "APPROVED" {
		t.Errorf("payload = %v", env.Payload)
	}
}

func TestPublishSwallowsTransportError(t *testing.T) {
	tr := &stubTransport{err: errors.New("nats: connection closed")}
	b := &Broadcaster{tr: tr, logger: zerolog.Nop()}

	b.Publish(ChannelGlobal, EventAnnouncementPublished, nil)
}

func TestPublishSwallowsMarshalError(t *testing.T) {
	tr := &stubTransport{}
	b := &Broadcaster{tr: tr, logger: zerolog.Nop()}

	b.Publish(ChannelGlobal, EventAnnouncementPublished, func() {})

	if len(tr.subjects) != 0 {
		t.Errorf("published %d messages for unmarshalable payload, want 0", len(tr.subjects))
	}
}

func TestPublishDropsEmptyChannelOrEvent(t *testing.T) {
	tr := &stubTransport{}
	b := &Broadcaster{tr: tr, logger: zerolog.Nop()}

	b.Publish("", EventProjectUpdated, nil)
	b.Publish(ChannelDashboard, "", nil)

	if len(tr.subjects) != 0 {
		t.Errorf("published %d messages, want 0", len(tr.subjects))
	}
}

func TestPublishNilBroadcaster(t *testing.T) {
	var b *Broadcaster
	b.Publish(ChannelDashboard, EventProjectUpdated, nil)
	b.Close()
}

func TestChannelHelpers(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"project", ProjectChannel(id), "project.8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51"},
		{"task", TaskChannel(id), "task.8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51"},
		{"user", UserChannel(id), "private-user.8f14e45f-ceea-467f-9b0b-8d9c4bfa2e51"},
		{"subject", SubjectFor(ChannelNotifications), "lingkod.rt.notifications"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
