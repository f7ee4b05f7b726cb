package domain

import "time"

// TimelineEntry is an immutable audit record for an accepted lifecycle
// transition or assignment change.
type TimelineEntry struct {
	ID          string
	GrievanceID string
	Event       LifecycleEvent
	ActorType   SubjectType
	ActorID     *string
	OldValue    map[string]any
	NewValue    map[string]any
	Remark      string
	CreatedAt   time.Time
}
