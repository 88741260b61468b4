package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/internal/utils"
)

// LoginParameters is the body of POST /api/auth/login
type LoginParameters struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects obviously bad input before any network call
func (p LoginParameters) Validate() error {
	if strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return invalid("email and password are required")
	}
	if !utils.ValidEmail(p.Email) {
		return invalid("invalid email address")
	}
	return nil
}

// RegisterParameters is the body of POST /api/auth/register
type RegisterParameters struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p RegisterParameters) Validate() error {
	if strings.TrimSpace(p.Username) == "" || strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return invalid("username, email and password are required")
	}
	if !utils.ValidEmail(p.Email) {
		return invalid("invalid email address")
	}
	return nil
}

func invalid(msg string) error {
	return &apperrors.APIError{Kind: apperrors.ErrValidation, Message: msg}
}
