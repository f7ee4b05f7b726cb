package dto

import "github.com/civicpulse/grievance-service/internal/domain"

// DepartmentResponse is the wire shape of a department.
type DepartmentResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

// RegionResponse is the wire shape of a region reference row.
type RegionResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Type     string  `json:"type"`
	ParentID *string  `json:"parent_id,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// DepartmentListFromDomain converts a slice.
func DepartmentListFromDomain(items []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, DepartmentResponse{ID: d.ID, Name: d.Name, Code: d.Code, IsActive: d.IsActive})
	}
	return out
}

// RegionListFromDomain converts a slice.
func RegionListFromDomain(items []domain.Region) []RegionResponse {
	out := make([]RegionResponse, 0, len(items))
	for _, r := range items {
		out = append(out, RegionResponse{
			ID:       r.ID,
			Name:     r.Name,
			Code:     r.Code,
			Type:     string(r.Type),
			ParentID: r.ParentID,
			Lat:      r.Lat,
			Lng:      r.Lng,
		})
	}
	return out
}
