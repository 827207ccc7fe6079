package domain

import "time"

// GroupPropertyOwners scopes listing visibility: members see and mutate only
// their own accommodations unless they are staff.
const GroupPropertyOwners = "Property Owners"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	Active       bool
	Staff        bool
	CreatedAt    time.Time
}
