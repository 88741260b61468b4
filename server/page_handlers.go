package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-event-portal/events"
	"github.com/jrsteele09/go-event-portal/users"
)

type eventDetail struct {
	Event       *events.Event `json:"event"`
	Registered  bool          `json:"registered"`
	CanRegister bool          `json:"can_register"`
	CanEdit     bool          `json:"can_edit"`
	Attendees   []users.User  `json:"attendees,omitempty"`
}

type dashboardPage struct {
	Events         []events.Event         `json:"events"`
	Users          []users.User           `json:"users"`
	PublishedCount int                    `json:"published_count"`
	RoleCounts     map[users.RoleType]int `json:"role_counts"`
}

type messagePage struct {
	Message string `json:"message"`
	Event   any    `json:"event,omitempty"`
	User    any    `json:"user,omitempty"`
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	return id, err == nil && id > 0
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// EventsPageHandler lists published events. Managers also see their unpublished ones.
func (s *Server) EventsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := s.deps.Events.ListPublished
		if s.deps.Controller.Session().CurrentUser.CanManageEvents() {
			list = s.deps.Events.ListAll
		}
		evs, err := list(r.Context())
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.page(evs))
	}
}

func (s *Server) EventDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		ev, err := s.deps.Events.Get(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		u := s.deps.Controller.Session().CurrentUser
		detail := eventDetail{Event: ev, CanEdit: ev.CanEdit(u)}
		if u != nil {
			if detail.Registered, err = s.deps.Events.IsRegistered(r.Context(), id); err != nil {
				writeFailure(w, r, err)
				return
			}
			detail.CanRegister = !detail.Registered && ev.CanRegister(u)
		}
		if detail.CanEdit {
			if detail.Attendees, err = s.deps.Events.Attendees(r.Context(), id); err != nil {
				writeFailure(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, s.page(detail))
	}
}

func (s *Server) EventRegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		msg, err := s.deps.Events.Register(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagePage{Message: msg})
	}
}

func (s *Server) EventUnregisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		msg, err := s.deps.Events.Unregister(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagePage{Message: msg})
	}
}

// EventFormHandler renders an empty create form
func (s *Server) EventFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.page(events.EventInput{IsPublished: true}))
	}
}

func (s *Server) EventCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in events.EventInput
		if !decodeBody(w, r, &in) {
			return
		}
		ev, err := s.deps.Events.Create(r.Context(), in)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, messagePage{Message: "Event created successfully", Event: ev})
	}
}

// EventEditPageHandler loads the event into the edit form. Publishers may only edit their own.
func (s *Server) EventEditPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		ev, err := s.deps.Events.Get(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		u := UserFromContext(r.Context())
		if !ev.CanEdit(u) {
			http.Redirect(w, r, users.HomePageForUser(u), http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, s.page(ev))
	}
}

func (s *Server) EventUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		var in events.EventInput
		if !decodeBody(w, r, &in) {
			return
		}
		ev, err := s.deps.Events.Update(r.Context(), id, in)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagePage{Message: "Event updated successfully", Event: ev})
	}
}

func (s *Server) EventDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, eventIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := s.deps.Events.Delete(r.Context(), id); err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagePage{Message: "Event deleted successfully"})
	}
}

func (s *Server) MyEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := s.deps.Events.MyEvents(r.Context())
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.page(evs))
	}
}

func (s *Server) MyRegistrationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := s.deps.Events.MyRegistrations(r.Context())
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.page(evs))
	}
}

// AdminDashboardHandler shows every event and account side by side
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := events.LoadDashboard(r.Context(), s.deps.Events, s.deps.Admin)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.page(dashboardPage{
			Events:         d.Events,
			Users:          d.Users,
			PublishedCount: d.PublishedCount(),
			RoleCounts:     d.CountByRole(),
		}))
	}
}

func (s *Server) AdminRegisterPublisherHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params users.PublisherParameters
		if !decodeBody(w, r, &params) {
			return
		}
		u, err := s.deps.Admin.RegisterPublisher(r.Context(), params)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, messagePage{Message: "Event manager registered successfully", User: u})
	}
}

// AdminChangeRoleHandler applies make-publisher, make-admin or revoke-privileges
func (s *Server) AdminChangeRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, userIDParam)
		if !ok {
			http.NotFound(w, r)
			return
		}
		actions := map[string]func(context.Context, int) (*users.User, error){
			"make-publisher":    s.deps.Admin.MakePublisher,
			"make-admin":        s.deps.Admin.MakeAdmin,
			"revoke-privileges": s.deps.Admin.RevokePrivileges,
		}
		change, ok := actions[r.PathValue(actionParam)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		u, err := change(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagePage{Message: "User role updated", User: u})
	}
}
