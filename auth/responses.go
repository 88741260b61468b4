package auth

import (
	"github.com/jrsteele09/go-event-portal/token"
	"github.com/jrsteele09/go-event-portal/users"
	"golang.org/x/oauth2"
)

// LoginResponse is the body of POST /api/auth/login.
// The user is returned inline so no follow-up /api/auth/me call is needed.
type LoginResponse struct {
	// Message is the backend's acknowledgement.
	// Example: "Login successful"
	Message string `json:"message"`

	// User is the authenticated account.
	// Only absent: when talking to an older backend; the controller then fetches /api/auth/me
	User *users.User `json:"user,omitempty"`

	// AccessToken authorizes API calls.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived; renewed through /api/auth/refresh
	AccessToken string `json:"access_token"`

	// RefreshToken is used solely to obtain a new access token.
	// Usage: Sent as the bearer credential to /api/auth/refresh
	RefreshToken string `json:"refresh_token"`
}

// Token returns the pair as an oauth2.Token ready for the token store
func (lr *LoginResponse) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  lr.AccessToken,
		RefreshToken: lr.RefreshToken,
		TokenType:    token.BearerType,
	}
}

// RegisterResponse is the body of POST /api/auth/register (201 Created)
type RegisterResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user,omitempty"`
}
