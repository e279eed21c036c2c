package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of transport/adapter concerns.

import (
	"time"

	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// SessionUser is the denormalized {id, role} snapshot of a User embedded in a
// live session. It is refreshed lazily: a privilege change on another node
// marks the user for refresh and the snapshot is reloaded on the next
// authenticated request the owning process sees.
type SessionUser struct {
	ID   string         `json:"id"`
	Role model.UserRole `json:"role"`
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier carried by the client cookie.
type Session struct {
	ID        string      `json:"id"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Authenticated reports whether the session is bound to a user identity.
func (s Session) Authenticated() bool { return s.User.ID != "" }

// IsAdmin reports whether the session snapshot carries the admin role.
func (s Session) IsAdmin() bool { return s.User.Role == model.UserRoleAdmin }
