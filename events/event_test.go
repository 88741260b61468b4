package events_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-event-portal/events"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/stretchr/testify/require"
)

func at(hour int) utils.Timestamp {
	return utils.Timestamp{Time: time.Date(2030, 6, 1, hour, 0, 0, 0, time.UTC)}
}

func validInput() events.EventInput {
	return events.EventInput{
		Title:       "Go Meetup",
		Description: "Talks and pizza",
		Location:    "Leeds",
		StartTime:   at(18),
		EndTime:     at(21),
		Capacity:    2,
		IsPublished: true,
	}
}

func TestEventFull(t *testing.T) {
	require.False(t, (&events.Event{Capacity: 0, AttendeeCount: 100}).Full(), "zero capacity is unlimited")
	require.False(t, (&events.Event{Capacity: 3, AttendeeCount: 2}).Full())
	require.True(t, (&events.Event{Capacity: 3, AttendeeCount: 3}).Full())
	require.True(t, (&events.Event{Capacity: 10, IsFull: true}).Full())
}

func TestEventCanRegister(t *testing.T) {
	u := &users.User{ID: 3, Role: users.RoleUser}
	open := &events.Event{IsPublished: true, Capacity: 5, AttendeeCount: 1}

	require.True(t, open.CanRegister(u))
	require.False(t, open.CanRegister(nil))
	require.False(t, (&events.Event{IsPublished: false}).CanRegister(u))
	require.False(t, (&events.Event{IsPublished: true, Capacity: 1, AttendeeCount: 1}).CanRegister(u))
}

func TestEventCanEdit(t *testing.T) {
	e := &events.Event{PublisherID: 2}

	require.True(t, e.CanEdit(&users.User{ID: 1, Role: users.RoleAdmin}))
	require.True(t, e.CanEdit(&users.User{ID: 2, Role: users.RolePublisher}))
	require.False(t, e.CanEdit(&users.User{ID: 7, Role: users.RolePublisher}))
	require.False(t, e.CanEdit(&users.User{ID: 2, Role: users.RoleUser}))
	require.False(t, e.CanEdit(nil))
}

func TestEventInputValidate(t *testing.T) {
	require.NoError(t, validInput().Validate())

	missing := events.EventInput{Description: "only a description"}
	err := missing.Validate()
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Equal(t, "missing required fields: title, location, start_time, end_time", apperrors.Message(err))

	backwards := validInput()
	backwards.EndTime = at(17)
	require.Equal(t, "end time must be after start time", apperrors.Message(backwards.Validate()))

	negative := validInput()
	negative.Capacity = -1
	require.Equal(t, "capacity cannot be negative", apperrors.Message(negative.Validate()))
}
