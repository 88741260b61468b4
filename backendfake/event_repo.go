package backendfake

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-event-portal/events"
	"github.com/jrsteele09/go-event-portal/internal/utils"
)

var (
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
)

// FakeEventRepo holds events and their registrations
type FakeEventRepo struct {
	events        map[int]*events.Event
	registrations map[int]map[int]bool // event id to user ids
	nextID        int
	lock          sync.RWMutex
}

func NewFakeEventRepo() *FakeEventRepo {
	return &FakeEventRepo{
		events:        make(map[int]*events.Event),
		registrations: make(map[int]map[int]bool),
		nextID:        1,
	}
}

func (er *FakeEventRepo) Create(publisherID int, in events.EventInput) events.Event {
	er.lock.Lock()
	defer er.lock.Unlock()

	now := utils.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	e := &events.Event{
		ID:          er.nextID,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyInput(e, in)
	er.nextID++
	er.events[e.ID] = e
	er.registrations[e.ID] = make(map[int]bool)
	return er.snapshot(e)
}

func (er *FakeEventRepo) Update(id int, in events.EventInput) (events.Event, error) {
	er.lock.Lock()
	defer er.lock.Unlock()

	e, ok := er.events[id]
	if !ok {
		return events.Event{}, ErrNotFound
	}
	applyInput(e, in)
	e.UpdatedAt = utils.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	return er.snapshot(e), nil
}

func (er *FakeEventRepo) Delete(id int) error {
	er.lock.Lock()
	defer er.lock.Unlock()

	if _, ok := er.events[id]; !ok {
		return ErrNotFound
	}
	delete(er.events, id)
	delete(er.registrations, id)
	return nil
}

func (er *FakeEventRepo) Get(id int) (events.Event, error) {
	er.lock.RLock()
	defer er.lock.RUnlock()

	e, ok := er.events[id]
	if !ok {
		return events.Event{}, ErrNotFound
	}
	return er.snapshot(e), nil
}

// List returns events ordered by start time that satisfy keep
func (er *FakeEventRepo) List(keep func(events.Event) bool) []events.Event {
	er.lock.RLock()
	defer er.lock.RUnlock()

	list := make([]events.Event, 0, len(er.events))
	for _, e := range er.events {
		s := er.snapshot(e)
		if keep == nil || keep(s) {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartTime.Equal(list[j].StartTime.Time) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartTime.Before(list[j].StartTime.Time)
	})
	return list
}

func (er *FakeEventRepo) Register(eventID, userID int) error {
	er.lock.Lock()
	defer er.lock.Unlock()

	e, ok := er.events[eventID]
	if !ok || !e.IsPublished {
		return ErrNotFound
	}
	regs := er.registrations[eventID]
	if regs[userID] {
		return ErrAlreadyRegistered
	}
	if e.Capacity > 0 && len(regs) >= e.Capacity {
		return ErrEventFull
	}
	regs[userID] = true
	return nil
}

func (er *FakeEventRepo) Unregister(eventID, userID int) error {
	er.lock.Lock()
	defer er.lock.Unlock()

	regs, ok := er.registrations[eventID]
	if !ok {
		return ErrNotFound
	}
	if !regs[userID] {
		return ErrNotRegistered
	}
	delete(regs, userID)
	return nil
}

// Attendees returns the ids of users registered for the event, ascending
func (er *FakeEventRepo) Attendees(eventID int) ([]int, error) {
	er.lock.RLock()
	defer er.lock.RUnlock()

	regs, ok := er.registrations[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	ids := make([]int, 0, len(regs))
	for id := range regs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// IsRegistered reports whether userID holds a place at eventID
func (er *FakeEventRepo) IsRegistered(eventID, userID int) bool {
	er.lock.RLock()
	defer er.lock.RUnlock()
	return er.registrations[eventID][userID]
}

// snapshot copies e with the derived attendance fields filled in; callers hold the lock
func (er *FakeEventRepo) snapshot(e *events.Event) events.Event {
	s := *e
	s.AttendeeCount = len(er.registrations[e.ID])
	s.IsFull = s.Capacity > 0 && s.AttendeeCount >= s.Capacity
	return s
}

func applyInput(e *events.Event, in events.EventInput) {
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.Capacity = in.Capacity
	e.IsPublished = in.IsPublished
}
