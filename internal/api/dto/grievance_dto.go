package dto

import (
	"time"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// GeoScopeDTO carries either the canonical or the legacy location form.
type GeoScopeDTO struct {
	State      string `json:"state,omitempty"`
	District   string `json:"district,omitempty"`
	RegionCode string `json:"region_code,omitempty"`
	RegionID   string `json:"region_id,omitempty"`
}

// ToDomain converts the wire form.
func (g GeoScopeDTO) ToDomain() domain.GeoScope {
	return domain.GeoScope{
		State:      g.State,
		District:   g.District,
		RegionCode: g.RegionCode,
		RegionID:   g.RegionID,
	}
}

// GeoScopeFromDomain converts to the wire form.
func GeoScopeFromDomain(g domain.GeoScope) GeoScopeDTO {
	return GeoScopeDTO{
		State:      g.State,
		District:   g.District,
		RegionCode: g.RegionCode,
		RegionID:   g.RegionID,
	}
}

// EvidenceDTO references an uploaded file.
type EvidenceDTO struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// CreateGrievanceRequest payload for grievance intake.
type CreateGrievanceRequest struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	DepartmentID *string       `json:"department_id,omitempty"`
	Priority     string        `json:"priority,omitempty"`
	Category     *string       `json:"category,omitempty"`
	Geo          GeoScopeDTO   `json:"geo"`
	Location     *string       `json:"location,omitempty"`
	Evidence     []EvidenceDTO `json:"evidence,omitempty"`
}

// TransitionRequest payload for lifecycle events.
type TransitionRequest struct {
	Event     string        `json:"event"`
	OfficerID string        `json:"officer_id,omitempty"`
	Evidence  []EvidenceDTO `json:"evidence,omitempty"`
	Rating    int           `json:"rating,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	Remark    string        `json:"remark,omitempty"`
}

// FeedbackRequest payload for the citizen feedback endpoint.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// BoardMoveRequest payload for optimistic board moves.
type BoardMoveRequest struct {
	Event     string `json:"event"`
	OfficerID string `json:"officer_id,omitempty"`
	Remark    string `json:"remark,omitempty"`
}

// GrievanceResponse is the wire shape of a grievance.
type GrievanceResponse struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CitizenID    string      `json:"citizen_id"`
	DepartmentID *string     `json:"department_id,omitempty"`
	AssigneeID   *string     `json:"assignee_id,omitempty"`
	Status       string      `json:"status"`
	Priority     string      `json:"priority"`
	Category     *string     `json:"category,omitempty"`
	Geo          GeoScopeDTO `json:"geo"`
	Location     *string     `json:"location,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// GrievanceFromDomain converts a grievance to the wire shape.
func GrievanceFromDomain(g *domain.Grievance) GrievanceResponse {
	return GrievanceResponse{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		CitizenID:    g.CitizenID,
		DepartmentID: g.DepartmentID,
		AssigneeID:   g.AssigneeID,
		Status:       string(g.Status),
		Priority:     string(g.Priority),
		Category:     g.Category,
		Geo:          GeoScopeFromDomain(g.Geo),
		Location:     g.Location,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// GrievanceListFromDomain converts a slice.
func GrievanceListFromDomain(items []domain.Grievance) []GrievanceResponse {
	out := make([]GrievanceResponse, 0, len(items))
	for i := range items {
		out = append(out, GrievanceFromDomain(&items[i]))
	}
	return out
}

// MediaResponse is the wire shape of an attachment.
type MediaResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Purpose   string    `json:"purpose"`
	MimeType  *string   `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackResponse is the wire shape of citizen feedback.
type FeedbackResponse struct {
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineEntryResponse is one audit row.
type TimelineEntryResponse struct {
	Event     string         `json:"event"`
	ActorType string         `json:"actor_type"`
	ActorID   *string        `json:"actor_id,omitempty"`
	OldValue  map[string]any `json:"old_value,omitempty"`
	NewValue  map[string]any `json:"new_value,omitempty"`
	Remark    string         `json:"remark,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// GrievanceDetailResponse is a grievance with its attachments and history.
type GrievanceDetailResponse struct {
	GrievanceResponse
	Media    []MediaResponse         `json:"media"`
	Feedback *FeedbackResponse       `json:"feedback,omitempty"`
	Timeline []TimelineEntryResponse `json:"timeline"`
}

// DetailFromDomain assembles the detail wire shape.
func DetailFromDomain(g *domain.Grievance, media []domain.Media, feedback *domain.Feedback, timeline []domain.TimelineEntry) GrievanceDetailResponse {
	resp := GrievanceDetailResponse{
		GrievanceResponse: GrievanceFromDomain(g),
		Media:             make([]MediaResponse, 0, len(media)),
		Timeline:          make([]TimelineEntryResponse, 0, len(timeline)),
	}
	for _, m := range media {
		resp.Media = append(resp.Media, MediaResponse{
			ID:        m.ID,
			URL:       m.URL,
			Purpose:   string(m.Purpose),
			MimeType:  m.MimeType,
			CreatedAt: m.CreatedAt,
		})
	}
	if feedback != nil {
		resp.Feedback = &FeedbackResponse{
			Rating:    feedback.Rating,
			Comment:   feedback.Comment,
			CreatedAt: feedback.CreatedAt,
		}
	}
	for _, t := range timeline {
		resp.Timeline = append(resp.Timeline, TimelineEntryResponse{
			Event:     string(t.Event),
			ActorType: string(t.ActorType),
			ActorID:   t.ActorID,
			OldValue:  t.OldValue,
			NewValue:  t.NewValue,
			Remark:    t.Remark,
			CreatedAt: t.CreatedAt,
		})
	}
	return resp
}
