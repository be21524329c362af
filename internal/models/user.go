package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is the authenticated identity gating access to the rest of the
// service. Absent a persisted user, camera/alert/stream operations are
// inaccessible.
type User struct {
	UserID          string    `json:"user_id"`
	DisplayName     string    `json:"display_name"`
	Role            Role      `json:"role"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}
