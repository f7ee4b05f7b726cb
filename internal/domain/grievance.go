package domain

import "time"

// GrievanceStatus enumerates lifecycle states for grievances.
type GrievanceStatus string

const (
	StatusNew                 GrievanceStatus = "NEW"
	StatusAssigned            GrievanceStatus = "ASSIGNED"
	StatusInProgress          GrievanceStatus = "IN_PROGRESS"
	StatusPendingVerification GrievanceStatus = "PENDING_VERIFICATION"
	StatusResolved            GrievanceStatus = "RESOLVED"
)

// Priority enumerates reported severity. It is set at creation, possibly by
// an external classifier, and never changed by this service.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// LifecycleEvent enumerates status-changing operations on a grievance.
type LifecycleEvent string

const (
	// EventCreate is recorded in the timeline only; creation is not a
	// status transition.
	EventCreate LifecycleEvent = "CREATE"

	EventAssign           LifecycleEvent = "ASSIGN"
	EventReassign         LifecycleEvent = "REASSIGN"
	EventStartWork        LifecycleEvent = "START_WORK"
	EventSubmitResolution LifecycleEvent = "SUBMIT_RESOLUTION"
	EventVerify           LifecycleEvent = "VERIFY"
	EventAttachFeedback   LifecycleEvent = "ATTACH_FEEDBACK"
)

// Grievance is the aggregate for citizen-reported issues.
type Grievance struct {
	ID           string
	Title        string
	Description  string
	CitizenID    string
	DepartmentID *string
	AssigneeID   *string
	Status       GrievanceStatus
	Priority     Priority
	Category     *string
	Geo          GeoScope
	Location     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the status counts toward open-grievance rollups.
// Everything short of RESOLVED is active.
func (s GrievanceStatus) Active() bool {
	return s != StatusResolved
}

// Terminal reports whether no further status change is possible.
func (s GrievanceStatus) Terminal() bool {
	return s == StatusResolved
}
