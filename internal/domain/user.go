package domain

import "time"

// UserStatus represents lifecycle states for a citizen account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for citizens who submit grievances.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
