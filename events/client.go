// Package events is the typed client for the event endpoints used by the portal pages
package events

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-event-portal/apiclient"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/pkg/errors"
)

const basePath = "/api/events"

// Requester is the part of the request pipeline the client needs
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

var _ Requester = (*apiclient.Client)(nil)

type Client struct {
	api Requester
}

func NewClient(api Requester) (*Client, error) {
	if api == nil {
		return nil, errors.New("[events.NewClient] requester is required")
	}
	return &Client{api: api}, nil
}

// MessageResponse is the acknowledgement body of mutating calls
type MessageResponse struct {
	Message string `json:"message"`
}

type eventResponse struct {
	Message string `json:"message"`
	Event   Event  `json:"event"`
}

// ListPublished returns the published events visible to everyone
func (c *Client) ListPublished(ctx context.Context) ([]Event, error) {
	var list []Event
	if err := c.api.Get(ctx, basePath, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAll includes unpublished events; publisher or admin only
func (c *Client) ListAll(ctx context.Context) ([]Event, error) {
	var list []Event
	if err := c.api.Get(ctx, basePath+"/all", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int) (*Event, error) {
	var e Event
	if err := c.api.Get(ctx, eventPath(id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create validates the input locally before calling the backend
func (c *Client) Create(ctx context.Context, in EventInput) (*Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp eventResponse
	if err := c.api.Post(ctx, basePath, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

func (c *Client) Update(ctx context.Context, id int, in EventInput) (*Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var resp eventResponse
	if err := c.api.Put(ctx, eventPath(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.api.Delete(ctx, eventPath(id), nil)
}

// Register signs the current user up for the event
func (c *Client) Register(ctx context.Context, id int) (string, error) {
	var resp MessageResponse
	err := c.api.Post(ctx, eventPath(id)+"/register", nil, &resp)
	return resp.Message, err
}

func (c *Client) Unregister(ctx context.Context, id int) (string, error) {
	var resp MessageResponse
	err := c.api.Delete(ctx, eventPath(id)+"/unregister", &resp)
	return resp.Message, err
}

// Attendees lists the users registered for an event; owner publisher or admin only
func (c *Client) Attendees(ctx context.Context, id int) ([]users.User, error) {
	var list []users.User
	if err := c.api.Get(ctx, eventPath(id)+"/attendees", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MyEvents lists the events published by the current user
func (c *Client) MyEvents(ctx context.Context) ([]Event, error) {
	var list []Event
	if err := c.api.Get(ctx, basePath+"/my-events", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MyRegistrations lists the events the current user is registered for
func (c *Client) MyRegistrations(ctx context.Context) ([]Event, error) {
	var list []Event
	if err := c.api.Get(ctx, basePath+"/my-registrations", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// IsRegistered reports whether the current user is registered for the event
func (c *Client) IsRegistered(ctx context.Context, id int) (bool, error) {
	list, err := c.MyRegistrations(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range list {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func eventPath(id int) string {
	return fmt.Sprintf("%s/%d", basePath, id)
}

func validationError(msg string) error {
	return &apperrors.APIError{Kind: apperrors.ErrValidation, Message: msg}
}
