package domain

import "time"

// Department represents a municipal unit responsible for a grievance category.
type Department struct {
	ID        string
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
