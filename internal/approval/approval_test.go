package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingkod/internal/models"
	"lingkod/internal/realtime"
)

type fakeStore struct {
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project

	applied  []appliedDecision
	applyErr error
}

type appliedDecision struct {
	project models.Project
	entry   models.ActivityLog
}

func (s *fakeStore) UserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) ProjectByID(_ context.Context, id uuid.UUID) (models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (s *fakeStore) ApplyDecision(_ context.Context, project *models.Project, entry *models.ActivityLog) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied = append(s.applied, appliedDecision{project: *project, entry: *entry})
	s.projects[project.ID] = *project
	return nil
}

type publishedEvent struct {
	channel string
	event   string
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(channel, event string, _ any) {
	p.events = append(p.events, publishedEvent{channel: channel, event: event})
}

func newFixture(t *testing.T) (*fakeStore, *fakePublisher, *Handler, uuid.UUID, uuid.UUID) {
	t.Helper()

	actorID := uuid.New()
	projectID := uuid.New()
	store := &fakeStore{
		users: map[uuid.UUID]models.User{
			actorID: {ID: actorID, Name: "Ana Reyes", Email: "ana@example.com", Role: models.RoleResident},
		},
		projects: map[uuid.UUID]models.Project{
			projectID: {ID: projectID, Name: "Drainage Repair", Status: models.ProjectPendingApproval},
		},
	}
	publisher := &fakePublisher{}

	h, err := New(store, publisher, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, publisher, h, projectID, actorID
}

func TestDecideApprove(t *testing.T) {
	store, publisher, h, projectID, actorID := newFixture(t)

	res, err := h.Decide(context.Background(), projectID, actorID, true)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if res.Project.Status != models.ProjectApproved {
		t.Errorf("status = %q, want %q", res.Project.Status, models.ProjectApproved)
	}
	if want := `Project "Drainage Repair" approved successfully`; res.Message != want {
		t.Errorf("message = %q, want %q", res.Message, want)
	}

	if len(store.applied) != 1 {
		t.Fatalf("applied %d decisions, want 1", len(store.applied))
	}
	entry := store.applied[0].entry
	if entry.Action != models.ActionProjectApproved {
		t.Errorf("action = %q, want %q", entry.Action, models.ActionProjectApproved)
	}
	if entry.ActorID == nil || *entry.ActorID != actorID {
		t.Errorf("entry actor = %v, want %s", entry.ActorID, actorID)
	}
	if got, ok := entry.Metadata["approved"].(bool); !ok || !got {
		t.Errorf("metadata approved = %v, want true", entry.Metadata["approved"])
	}

	want := []publishedEvent{
		{channel: realtime.ProjectChannel(projectID), event: realtime.EventProjectUpdated},
		{channel: realtime.ChannelDashboard, event: realtime.EventProjectUpdated},
	}
	if len(publisher.events) != len(want) {
		t.Fatalf("published %d events, want %d", len(publisher.events), len(want))
	}
	for i, ev := range want {
		if publisher.events[i] != ev {
			t.Errorf("event[%d] = %+v, want %+v", i, publisher.events[i], ev)
		}
	}
}

func TestDecideReject(t *testing.T) {
	store, _, h, projectID, actorID := newFixture(t)

	res, err := h.Decide(context.Background(), projectID, actorID, false)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if res.Project.Status != models.ProjectCancelled {
		t.Errorf("status = %q, want %q", res.Project.Status, models.ProjectCancelled)
	}
	if want := `Project "Drainage Repair" rejected successfully`; res.Message != want {
		t.Errorf("message = %q, want %q", res.Message, want)
	}
	if store.applied[0].entry.Action != models.ActionProjectCancelled {
		t.Errorf("action = %q, want %q", store.applied[0].entry.Action, models.ActionProjectCancelled)
	}
}

// Re-deciding an already decided project rewrites the status and leaves a
// second log entry; there is no terminal-state guard.
func TestDecideTwiceLogsTwice(t *testing.T) {
	store, _, h, projectID, actorID := newFixture(t)

	if _, err := h.Decide(context.Background(), projectID, actorID, true); err != nil {
		t.Fatalf("first Decide: %v", err)
	}
	res, err := h.Decide(context.Background(), projectID, actorID, false)
	if err != nil {
		t.Fatalf("second Decide: %v", err)
	}

	if res.Project.Status != models.ProjectCancelled {
		t.Errorf("status after re-decide = %q, want %q", res.Project.Status, models.ProjectCancelled)
	}
	if len(store.applied) != 2 {
		t.Errorf("applied %d decisions, want 2", len(store.applied))
	}
}

func TestDecideUnknownActor(t *testing.T) {
	store, publisher, h, projectID, _ := newFixture(t)

	_, err := h.Decide(context.Background(), projectID, uuid.New(), true)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if len(store.applied) != 0 {
		t.Errorf("applied %d decisions, want 0", len(store.applied))
	}
	if len(publisher.events) != 0 {
		t.Errorf("published %d events, want 0", len(publisher.events))
	}
}

func TestDecideUnknownProject(t *testing.T) {
	store, publisher, h, _, actorID := newFixture(t)

	_, err := h.Decide(context.Background(), uuid.New(), actorID, true)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
	if len(store.applied) != 0 {
		t.Errorf("applied %d decisions, want 0", len(store.applied))
	}
	if len(publisher.events) != 0 {
		t.Errorf("published %d events, want 0", len(publisher.events))
	}
}

func TestDecideApplyFailureSkipsPublish(t *testing.T) {
	store, publisher, h, projectID, actorID := newFixture(t)
	store.applyErr = errors.New("connection reset")

	_, err := h.Decide(context.Background(), projectID, actorID, true)
	if err == nil {
		t.Fatal("Decide succeeded, want error")
	}
	if len(publisher.events) != 0 {
		t.Errorf("published %d events after failed write, want 0", len(publisher.events))
	}
}

func TestDecideNilPublisher(t *testing.T) {
	store, _, _, projectID, actorID := newFixture(t)

	h, err := New(store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := h.Decide(context.Background(), projectID, actorID, true); err != nil {
		t.Fatalf("Decide with nil publisher: %v", err)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("New(nil) succeeded, want error")
	}
}
