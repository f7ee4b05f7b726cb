package domain

import "time"

// Feedback is the citizen's one-shot rating of a resolved grievance.
// At most one row exists per grievance.
type Feedback struct {
	ID          string
	GrievanceID string
	Rating      int
	Comment     *string
	CreatedAt   time.Time
}
