package domain

import "time"

// Claims is the identity carried by a verified bearer token. It lives for the
// duration of one request and is never persisted.
type Claims struct {
	UserID    int64
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanAccessUser is the ownership rule shared by the per-user operations:
// admins may act on anyone, everyone else only on themselves.
func (c Claims) CanAccessUser(targetID int64) bool {
	return c.IsAdmin() || c.UserID == targetID
}
