package domain

import "time"

// User is the slice of the identity component's user record this service
// depends on. IsAdmin gates staff-only operations.
type User struct {
	ID        string
	Name      string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}
