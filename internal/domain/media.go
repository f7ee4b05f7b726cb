package domain

import "time"

// MediaPurpose tags why a media reference was attached.
type MediaPurpose string

const (
	MediaPurposeReportEvidence  MediaPurpose = "REPORT_EVIDENCE"
	MediaPurposeResolutionProof MediaPurpose = "RESOLUTION_PROOF"
)

// Media is an opaque reference to an uploaded file held by the external
// media store. The core never sees the bytes. The collection on a
// grievance is append-only.
type Media struct {
	ID          string
	GrievanceID string
	URL         string
	Purpose     MediaPurpose
	UploaderID  *string
	MimeType    *string
	CreatedAt   time.Time
}
