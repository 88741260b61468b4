package users

import (
	"encoding/json"
	"strings"

	"github.com/jrsteele09/go-event-portal/internal/utils"
)

// RoleType is the single role carried by a user account
type RoleType string

const (
	RoleAdmin     RoleType = "admin"     // Oversees users and every event
	RolePublisher RoleType = "publisher" // Creates and manages their own events ("event manager")
	RoleUser      RoleType = "user"      // Browses and registers for events
)

// Landing routes per role
const (
	HomeAdmin     = "/admin"
	HomePublisher = "/my-events"
	HomeDefault   = "/events"
)

// ParseRole normalises a role string. Unknown values are returned unchanged so that
// they never match one of the known roles.
func ParseRole(role string) RoleType {
	return RoleType(strings.ToLower(strings.TrimSpace(role)))
}

// UnmarshalJSON normalises the role sent by the backend with ParseRole
func (r *RoleType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRole(raw)
	return nil
}

// User is the account record returned by the backend. It is replaced wholesale on re-fetch.
type User struct {
	ID        int             `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      RoleType        `json:"role,omitempty"` // May be missing in malformed payloads
	CreatedAt utils.Timestamp `json:"created_at,omitzero"`
	UpdatedAt utils.Timestamp `json:"updated_at,omitzero"`
}

// IsAdmin is false for a nil user
func (u *User) IsAdmin() bool {
	return u.hasRole(RoleAdmin)
}

// IsPublisher is true only for the publisher role; admins are not publishers.
func (u *User) IsPublisher() bool {
	return u.hasRole(RolePublisher)
}

func (u *User) IsRegularUser() bool {
	return u.hasRole(RoleUser)
}

// CanManageEvents is true for admins and publishers
func (u *User) CanManageEvents() bool {
	return u.IsAdmin() || u.IsPublisher()
}

func (u *User) hasRole(role RoleType) bool {
	return u != nil && u.Role == role
}

// HomePageForUser returns the landing route for the user's role
func HomePageForUser(u *User) string {
	switch {
	case u.IsAdmin():
		return HomeAdmin
	case u.IsPublisher():
		return HomePublisher
	default:
		return HomeDefault
	}
}

// RoleName returns the display label for a role
func RoleName(role RoleType) string {
	switch role {
	case RoleAdmin:
		return "Administrator"
	case RolePublisher:
		return "Platform Manager"
	case RoleUser:
		return "User"
	default:
		return "Guest"
	}
}
