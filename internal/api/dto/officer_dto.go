package dto

import (
	"time"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// CreateOfficerRequest payload for admin staff creation.
type CreateOfficerRequest struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Role         string      `json:"role"`
	DepartmentID *string     `json:"department_id,omitempty"`
	Geo          GeoScopeDTO `json:"geo"`
}

// SetOfficerActiveRequest toggles the active flag.
type SetOfficerActiveRequest struct {
	Active bool `json:"active"`
}

// OfficerResponse is the wire shape of a staff record. The password hash
// never leaves the service.
type OfficerResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	DepartmentID *string     `json:"department_id,omitempty"`
	Geo          GeoScopeDTO `json:"geo"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OfficerFromDomain converts an officer to the wire shape.
func OfficerFromDomain(o *domain.Officer) OfficerResponse {
	return OfficerResponse{
		ID:           o.ID,
		Name:         o.Name,
		Email:        o.Email,
		Role:         string(o.Role),
		DepartmentID: o.DepartmentID,
		Geo:          GeoScopeFromDomain(o.Geo),
		Active:       o.Active,
		CreatedAt:    o.CreatedAt,
	}
}

// OfficerListFromDomain converts a slice.
func OfficerListFromDomain(items []domain.Officer) []OfficerResponse {
	out := make([]OfficerResponse, 0, len(items))
	for i := range items {
		out = append(out, OfficerFromDomain(&items[i]))
	}
	return out
}
