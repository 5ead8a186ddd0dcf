// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace account. Username is matched exactly (case-sensitive).
type User struct {
	ID           uuid.UUID // Assigned on registration, never changes afterwards.
	Username     string    // Unique across all users.
	PasswordHash string    // bcrypt credential; never logged or serialized.
	CreatedAt    time.Time
}
