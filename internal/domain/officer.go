package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleFieldOfficer StaffRole = "FIELD_OFFICER"
	StaffRoleAdmin        StaffRole = "ADMIN"
)

// Officer models a field officer or administrator from the staff directory.
// The lifecycle core treats these records as read-only.
type Officer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	DepartmentID *string
	Geo          GeoScope
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
