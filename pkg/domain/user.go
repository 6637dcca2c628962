package domain

import "time"

// Role is the access level of an account. Moderators curate listings and
// blog posts; admins additionally manage accounts and integrations.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// UserAccount is a directory account as the backend reports it.
type UserAccount struct {
	ID          string    `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name,omitempty" db:"display_name"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CanModerate reports whether the role may approve or reject content.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanAdminister reports whether the role may manage accounts and settings.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}
