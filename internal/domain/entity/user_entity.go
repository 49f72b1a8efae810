package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Users are created or refreshed on each successful sign-in (keyed by email)
// and are never deleted by the application.
type User struct {
	ID          string
	Email       string
	Name        string
	ImageURL    string
	GoogleID    string
	LastLoginAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
