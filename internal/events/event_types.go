package events

import (
	"time"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGrievanceCreated    EventType = "grievance_created"
	EventStatusChanged       EventType = "grievance_status_changed"
	EventGrievanceAssigned   EventType = "grievance_assigned"
	EventResolutionSubmitted EventType = "grievance_resolution_submitted"
	EventGrievanceVerified   EventType = "grievance_verified"
	EventFeedbackAttached    EventType = "grievance_feedback_attached"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	CitizenID *string            `json:"citizen_id,omitempty"`
	StaffID   *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	GrievanceID string      `json:"grievance_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// GrievanceCreatedPayload payload.
type GrievanceCreatedPayload struct {
	DepartmentID *string         `json:"department_id,omitempty"`
	Priority     domain.Priority `json:"priority"`
	State        string          `json:"state,omitempty"`
	District     string          `json:"district,omitempty"`
	Title        string          `json:"title"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	Event     domain.LifecycleEvent  `json:"event"`
	OldStatus domain.GrievanceStatus `json:"old_status"`
	NewStatus domain.GrievanceStatus `json:"new_status"`
	Remark    string                 `json:"remark,omitempty"`
}

// GrievanceAssignedPayload payload.
type GrievanceAssignedPayload struct {
	AssigneeID   *string `json:"assignee_id,omitempty"`
	PreviouslyTo *string `json:"previously_to,omitempty"`
}

// ResolutionSubmittedPayload payload.
type ResolutionSubmittedPayload struct {
	ProofCount int `json:"proof_count"`
}

// FeedbackAttachedPayload payload.
type FeedbackAttachedPayload struct {
	Rating int `json:"rating"`
}
