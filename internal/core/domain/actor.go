package domain

import "github.com/google/uuid"

// Role is the capability level of an authenticated actor.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleArtist  Role = "ARTIST"
	RoleCreator Role = "CREATOR"
)

// Actor is an already-authenticated caller. Authentication itself happens at
// the transport boundary; the engine only checks capability.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the actor holds administrator capability.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
