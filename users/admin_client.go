package users

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/pkg/errors"
)

const basePath = "/api/users"

// Requester is the part of the request pipeline the admin client needs
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// AdminClient manages accounts and roles; every call requires an admin session
type AdminClient struct {
	api Requester
}

func NewAdminClient(api Requester) (*AdminClient, error) {
	if api == nil {
		return nil, errors.New("[users.NewAdminClient] requester is required")
	}
	return &AdminClient{api: api}, nil
}

type userResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// PublisherParameters is the body for registering an event manager account
type PublisherParameters struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p PublisherParameters) Validate() error {
	switch {
	case strings.TrimSpace(p.Username) == "" || strings.TrimSpace(p.Email) == "" || p.Password == "":
		return invalid("username, email and password are required")
	case !utils.ValidEmail(p.Email):
		return invalid("invalid email address")
	}
	return nil
}

func (c *AdminClient) List(ctx context.Context) ([]User, error) {
	return c.list(ctx, basePath)
}

func (c *AdminClient) Publishers(ctx context.Context) ([]User, error) {
	return c.list(ctx, basePath+"/publishers")
}

func (c *AdminClient) Get(ctx context.Context, id int) (*User, error) {
	var u User
	if err := c.api.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *AdminClient) MakePublisher(ctx context.Context, id int) (*User, error) {
	return c.changeRole(ctx, "make-publisher", id)
}

func (c *AdminClient) MakeAdmin(ctx context.Context, id int) (*User, error) {
	return c.changeRole(ctx, "make-admin", id)
}

// RevokePrivileges demotes a publisher or admin back to a regular user
func (c *AdminClient) RevokePrivileges(ctx context.Context, id int) (*User, error) {
	return c.changeRole(ctx, "revoke-privileges", id)
}

// RegisterPublisher creates a new account with the publisher role
func (c *AdminClient) RegisterPublisher(ctx context.Context, params PublisherParameters) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	var resp userResponse
	if err := c.api.Post(ctx, basePath+"/register-publisher", params, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *AdminClient) list(ctx context.Context, path string) ([]User, error) {
	var list []User
	if err := c.api.Get(ctx, path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *AdminClient) changeRole(ctx context.Context, action string, id int) (*User, error) {
	var resp userResponse
	if err := c.api.Put(ctx, fmt.Sprintf("%s/%s/%d", basePath, action, id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func invalid(msg string) error {
	return &apperrors.APIError{Kind: apperrors.ErrValidation, Message: msg}
}
