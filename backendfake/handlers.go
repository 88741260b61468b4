package backendfake

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-event-portal/events"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/token/jwt"
	"github.com/jrsteele09/go-event-portal/users"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, errorType string) {
	body := map[string]string{"message": message}
	if errorType != "" {
		body["error_type"] = errorType
	}
	writeJSON(w, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found", "")
		return 0, false
	}
	return id, true
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decode(w, r, &c) {
		return
	}
	if c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", "")
		return
	}
	u, ok := b.Users.Authenticate(c.Email, c.Password)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid email or password", "")
		return
	}
	access, refresh, err := b.issue(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Login successful",
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	b.createAccount(w, r, users.RoleUser, "User registered successfully")
}

func (b *Backend) registerPublisher(w http.ResponseWriter, r *http.Request) {
	b.createAccount(w, r, users.RolePublisher, "Event manager registered successfully")
}

func (b *Backend) createAccount(w http.ResponseWriter, r *http.Request, role users.RoleType, message string) {
	var c credentials
	if !decode(w, r, &c) {
		return
	}
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Email) == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required", "")
		return
	}
	u, err := b.Users.Create(c.Username, c.Email, c.Password, role)
	if errors.Is(err, ErrAlreadyExists) {
		writeError(w, http.StatusConflict, "Username or email already exists", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": message, "user": u})
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	gate, enter, failure := b.refreshGate, b.refreshEnter, b.failRefresh
	b.lock.Unlock()

	if gate != nil {
		select {
		case enter <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if failure != nil {
		writeError(w, failure.status, failure.message, failure.errorType)
		return
	}

	raw, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
		return
	}
	claims, err := b.creator.Verify(raw, jwt.TypeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token", "invalid_token")
		return
	}
	id, _ := claims.UserID()
	u, err := b.Users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "User not found", "invalid_token")
		return
	}
	access, err := b.creator.CreateAccessToken(u.ID, string(u.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	b.lock.Lock()
	b.issued = append(b.issued, access)
	b.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) listPublished(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Events.List(func(e events.Event) bool { return e.IsPublished }))
}

func (b *Backend) listAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Events.List(nil))
}

func (b *Backend) myEvents(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, b.Events.List(func(e events.Event) bool { return e.PublisherID == u.ID }))
}

func (b *Backend) myRegistrations(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, b.Events.List(func(e events.Event) bool { return b.Events.IsRegistered(e.ID, u.ID) }))
}

func (b *Backend) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := b.Events.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	if !e.IsPublished {
		u, _ := userFromContext(r.Context())
		if !e.CanEdit(&u) {
			writeError(w, http.StatusNotFound, "Event not found", "")
			return
		}
	}
	writeJSON(w, http.StatusOK, e)
}

func (b *Backend) createEvent(w http.ResponseWriter, r *http.Request) {
	var in events.EventInput
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Message(err), "")
		return
	}
	u, _ := userFromContext(r.Context())
	e := b.Events.Create(u.ID, in)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Event created successfully", "event": e})
}

// ownedEvent loads the path event and checks u may change it
func (b *Backend) ownedEvent(w http.ResponseWriter, r *http.Request) (events.Event, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return events.Event{}, false
	}
	e, err := b.Events.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return events.Event{}, false
	}
	u, _ := userFromContext(r.Context())
	if !e.CanEdit(&u) {
		writeError(w, http.StatusForbidden, "You can only manage your own events", "")
		return events.Event{}, false
	}
	return e, true
}

func (b *Backend) updateEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := b.ownedEvent(w, r)
	if !ok {
		return
	}
	var in events.EventInput
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Message(err), "")
		return
	}
	updated, err := b.Events.Update(e.ID, in)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Event updated successfully", "event": updated})
}

func (b *Backend) deleteEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := b.ownedEvent(w, r)
	if !ok {
		return
	}
	if err := b.Events.Delete(e.ID); err != nil {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

func (b *Backend) registerForEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, _ := userFromContext(r.Context())
	switch err := b.Events.Register(id, u.ID); {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrEventFull):
		writeError(w, http.StatusBadRequest, "Event is at full capacity", "")
	case errors.Is(err, ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, "You are already registered for this event", "")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Successfully registered for event"})
	}
}

func (b *Backend) unregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, _ := userFromContext(r.Context())
	switch err := b.Events.Unregister(id, u.ID); {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrNotRegistered):
		writeError(w, http.StatusBadRequest, "You are not registered for this event", "")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully unregistered from event"})
	}
}

func (b *Backend) attendees(w http.ResponseWriter, r *http.Request) {
	e, ok := b.ownedEvent(w, r)
	if !ok {
		return
	}
	ids, err := b.Events.Attendees(e.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	list := make([]users.User, 0, len(ids))
	for _, id := range ids {
		if u, err := b.Users.GetByID(id); err == nil {
			list = append(list, u)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Users.List())
}

func (b *Backend) listPublishers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Users.List(users.RolePublisher))
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := b.Users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found", "")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) changeRole(role users.RoleType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		u, err := b.Users.SetRole(id, role)
		if err != nil {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "User role updated to " + string(role), "user": u})
	}
}
