// Package sessions holds the client session value and the read handle given to guards and pages
package sessions

import (
	"time"

	"github.com/jrsteele09/go-event-portal/token/jwt"
	"github.com/jrsteele09/go-event-portal/users"
)

// State of the session lifecycle: uninitialized -> loading -> authenticated | anonymous
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Session is a snapshot of the client's authentication state. Snapshots are values;
// changing one never changes the controller's copy.
type Session struct {
	AccessToken  string      `json:"-"`
	RefreshToken string      `json:"-"`
	CurrentUser  *users.User `json:"current_user,omitempty"`
	Loading      bool        `json:"loading"`
	LastError    string      `json:"last_error,omitempty"`
	initialized  bool
}

// New is the session at application start: nothing known, loading
func New() Session {
	return Session{Loading: true}
}

// Initialized returns s marked as having left the uninitialized state
func (s Session) Initialized() Session {
	s.initialized = true
	return s
}

// State derives the lifecycle state
func (s Session) State() State {
	switch {
	case s.Loading && !s.initialized:
		return StateUninitialized
	case s.Loading:
		return StateLoading
	case s.CurrentUser != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Authenticated is true once a user has been loaded and nothing is pending
func (s Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// AccessExpiresAt is decoded from the access token when it is a JWT; zero otherwise.
// It is informational only: the backend decides validity.
func (s Session) AccessExpiresAt() time.Time {
	ti, ok := jwt.Inspect(s.AccessToken)
	if !ok {
		return time.Time{}
	}
	return ti.ExpiresAt
}

// Reader is the read-only view of the session handed to guards and pages
type Reader interface {
	Session() Session
	// Subscribe calls fn with every new snapshot until cancel is called
	Subscribe(fn func(Session)) (cancel func())
}
