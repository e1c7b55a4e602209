package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles understood by the inventory. Any other role string is stored as
// given and treated as unprivileged.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BootstrapAdmin is the account created on first start. It can have its
// password reset but is never deleted.
const BootstrapAdmin = "admin"

// Session identifies an authenticated user for the lifetime of one
// interaction. It is passed explicitly to every privileged operation.
type Session struct {
	ID        uuid.UUID
	UserID    int64
	Username  string
	Role      string
	StartedAt time.Time
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func newSession(u User) Session {
	return Session{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		StartedAt: time.Now().UTC(),
	}
}
