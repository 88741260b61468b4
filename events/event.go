package events

import (
	"strings"

	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/jrsteele09/go-event-portal/users"
)

// Event as returned by the backend
type Event struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	StartTime     utils.Timestamp `json:"start_time"`
	EndTime       utils.Timestamp `json:"end_time"`
	Capacity      int             `json:"capacity"` // 0 means unlimited
	IsPublished   bool            `json:"is_published"`
	PublisherID   int             `json:"publisher_id"`
	AttendeeCount int             `json:"attendee_count"`
	IsFull        bool            `json:"is_full"`
	CreatedAt     utils.Timestamp `json:"created_at,omitzero"`
	UpdatedAt     utils.Timestamp `json:"updated_at,omitzero"`
}

// Full reports whether the event has no free places. The backend flag wins when set.
func (e *Event) Full() bool {
	if e.IsFull {
		return true
	}
	return e.Capacity > 0 && e.AttendeeCount >= e.Capacity
}

// CanRegister is the client-side precheck before offering registration to u
func (e *Event) CanRegister(u *users.User) bool {
	return u != nil && e.IsPublished && !e.Full()
}

// CanEdit reports whether u may edit or delete the event: admins always, publishers only their own
func (e *Event) CanEdit(u *users.User) bool {
	switch {
	case u.IsAdmin():
		return true
	case u.IsPublisher():
		return e.PublisherID == u.ID
	default:
		return false
	}
}

// EventInput is the body for creating or updating an event
type EventInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	StartTime   utils.Timestamp `json:"start_time"`
	EndTime     utils.Timestamp `json:"end_time"`
	Capacity    int             `json:"capacity"`
	IsPublished bool            `json:"is_published"`
}

// Validate checks the fields the create and edit forms require
func (in EventInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if in.StartTime.IsZero() {
		missing = append(missing, "start_time")
	}
	if in.EndTime.IsZero() {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return validationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if !in.EndTime.After(in.StartTime.Time) {
		return validationError("end time must be after start time")
	}
	if in.Capacity < 0 {
		return validationError("capacity cannot be negative")
	}
	return nil
}
