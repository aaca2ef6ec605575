package realtime

import "github.com/google/uuid"

// Channels are the fixed set of real-time topics clients may subscribe
// to. Per-entity channels are derived with the helper functions below;
// everything else is a constant. Both sides of the wire treat this file
// as the registry.
const (
	ChannelGlobal        = "global"
	ChannelDashboard     = "dashboard"
	ChannelNotifications = "notifications"
)

// Event names carried in the wire envelope.
const (
	EventProjectUpdated        = "project-updated"
	EventTaskUpdated           = "task-updated"
	EventTaskAssigned          = "task-assigned"
	EventCommentAdded          = "comment-added"
	EventTypingStarted         = "typing-started"
	EventTypingStopped         = "typing-stopped"
	EventNotificationSent      = "notification-sent"
	EventGoalUpdated           = "goal-updated"
	EventMilestoneCompleted    = "milestone-completed"
	EventEventUpdated          = "event-updated"
	EventDocumentUploaded      = "document-uploaded"
	EventAnnouncementPublished = "announcement-published"
)

// subjectPrefix namespaces all real-time traffic on the NATS side.
const subjectPrefix = "lingkod.rt."

// ProjectChannel returns the per-project channel name.
func ProjectChannel(id uuid.UUID) string { return "project." + id.String() }

// TaskChannel returns the per-task channel name.
func TaskChannel(id uuid.UUID) string { return "task." + id.String() }

// UserChannel returns a user's private channel name.
func UserChannel(id uuid.UUID) string { return "private-user." + id.String() }

// SubjectFor maps a channel name onto its NATS subject.
func SubjectFor(channel string) string { return subjectPrefix + channel }
