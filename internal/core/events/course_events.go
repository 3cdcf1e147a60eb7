package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCoursesChanged  = "courses.changed"
	EventTypeImportCommitted = "import.committed"
)

// Course mutation kinds carried by CoursesChangedEvent.
const (
	OpUpsert      = "upsert"
	OpDelete      = "delete"
	OpBatchUpsert = "batch_upsert"
	OpBatchDelete = "batch_delete"
)

// CoursesChangedEvent is published after the persistence backend accepted a
// course write. Subscribers treat it as a signal to reload.
type CoursesChangedEvent struct {
	BaseEvent
	Op      string   `json:"op"`
	IDs     []string `json:"ids"`
	ActorID string   `json:"actor_id"`
}

func NewCoursesChangedEvent(op string, ids []string, actorID string) *CoursesChangedEvent {
	return &CoursesChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCoursesChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"op":       op,
				"ids":      ids,
				"actor_id": actorID,
			},
		},
		Op:      op,
		IDs:     ids,
		ActorID: actorID,
	}
}

type ImportCommittedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	ActorID   string `json:"actor_id"`
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
}

func NewImportCommittedEvent(sessionID, actorID string, accepted, rejected int) *ImportCommittedEvent {
	return &ImportCommittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeImportCommitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id": sessionID,
				"actor_id":   actorID,
				"accepted":   accepted,
				"rejected":   rejected,
			},
		},
		SessionID: sessionID,
		ActorID:   actorID,
		Accepted:  accepted,
		Rejected:  rejected,
	}
}
