// Package backendfake is an in-process REST backend for tests. It implements the
// auth, event and user endpoints the portal calls, issues real JWTs, and exposes
// hooks for forcing token expiry and controlling the refresh endpoint.
package backendfake

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-event-portal/token/jwt"
	"github.com/jrsteele09/go-event-portal/users"
)

// Seeded accounts, all with password Password
const (
	Password       = "password123"
	AdminEmail     = "admin@example.com"
	PublisherEmail = "publisher@example.com"
	UserEmail      = "user@example.com"
)

type refreshFailure struct {
	status    int
	errorType string
	message   string
}

// Backend is a running fake backend
type Backend struct {
	Users  *FakeUserRepo
	Events *FakeEventRepo

	server  *httptest.Server
	creator *jwt.Creator

	lock         sync.Mutex
	expired      map[string]bool // access tokens treated as expired
	issued       []string        // every access token handed out
	failRefresh  *refreshFailure
	refreshGate  chan struct{}
	refreshEnter chan struct{}
	calls        map[string]int // "METHOD path" to count
	authHeaders  []string
}

// New starts a backend with one admin, one publisher and one regular user
func New() *Backend {
	creator, err := jwt.NewCreator([]byte("backendfake-secret"), 15*time.Minute, 24*time.Hour)
	if err != nil {
		panic(err)
	}
	b := &Backend{
		Users:   NewFakeUserRepo(),
		Events:  NewFakeEventRepo(),
		creator: creator,
		expired: make(map[string]bool),
		calls:   make(map[string]int),
	}
	b.mustSeed("admin", AdminEmail, users.RoleAdmin)
	b.mustSeed("publisher", PublisherEmail, users.RolePublisher)
	b.mustSeed("user", UserEmail, users.RoleUser)

	b.server = httptest.NewServer(b.routes())
	return b
}

func (b *Backend) mustSeed(username, email string, role users.RoleType) {
	if _, err := b.Users.Create(username, email, Password, role); err != nil {
		panic(err)
	}
}

// URL is the base URL to configure the pipeline with
func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.lock.Lock()
	if b.refreshGate != nil {
		close(b.refreshGate)
		b.refreshGate = nil
	}
	b.lock.Unlock()
	b.server.Close()
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.countCalls)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", b.login)
		r.Post("/register", b.register)
		r.Post("/refresh", b.refresh)
		r.With(b.requireAccess).Get("/me", b.me)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", b.listPublished)
		r.Group(func(r chi.Router) {
			r.Use(b.requireAccess)
			r.With(requireRole(users.RolePublisher, users.RoleAdmin)).Get("/all", b.listAll)
			r.With(requireRole(users.RolePublisher, users.RoleAdmin)).Post("/", b.createEvent)
			r.Get("/my-events", b.myEvents)
			r.Get("/my-registrations", b.myRegistrations)
			r.With(requireRole(users.RolePublisher, users.RoleAdmin)).Put("/{id}", b.updateEvent)
			r.With(requireRole(users.RolePublisher, users.RoleAdmin)).Delete("/{id}", b.deleteEvent)
			r.Post("/{id}/register", b.registerForEvent)
			r.Delete("/{id}/unregister", b.unregisterFromEvent)
			r.With(requireRole(users.RolePublisher, users.RoleAdmin)).Get("/{id}/attendees", b.attendees)
		})
		// Event details are public, but a valid token lets owners see unpublished events
		r.With(b.optionalAccess).Get("/{id}", b.getEvent)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(b.requireAccess, requireRole(users.RoleAdmin))
		r.Get("/", b.listUsers)
		r.Get("/publishers", b.listPublishers)
		r.Get("/{id}", b.getUser)
		r.Put("/make-publisher/{id}", b.changeRole(users.RolePublisher))
		r.Put("/make-admin/{id}", b.changeRole(users.RoleAdmin))
		r.Put("/revoke-privileges/{id}", b.changeRole(users.RoleUser))
		r.Post("/register-publisher", b.registerPublisher)
	})
	return r
}

// IssueTokens returns a fresh access/refresh pair for the seeded account with email
func (b *Backend) IssueTokens(email string) (accessToken, refreshToken string) {
	u, ok := b.Users.Authenticate(email, Password)
	if !ok {
		panic("backendfake: unknown seeded account " + email)
	}
	access, refresh, err := b.issue(u)
	if err != nil {
		panic(err)
	}
	return access, refresh
}

func (b *Backend) issue(u users.User) (string, string, error) {
	access, err := b.creator.CreateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := b.creator.CreateRefreshToken(u.ID)
	if err != nil {
		return "", "", err
	}
	b.lock.Lock()
	b.issued = append(b.issued, access)
	b.lock.Unlock()
	return access, refresh, nil
}

// ExpireToken makes the backend answer token_expired for this access token
func (b *Backend) ExpireToken(accessToken string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.expired[accessToken] = true
}

// ExpireAllAccessTokens expires every access token issued so far
func (b *Backend) ExpireAllAccessTokens() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, t := range b.issued {
		b.expired[t] = true
	}
}

// FailRefresh makes the refresh endpoint answer with status and errorType until cleared with status 0
func (b *Backend) FailRefresh(status int, errorType, message string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if status == 0 {
		b.failRefresh = nil
		return
	}
	b.failRefresh = &refreshFailure{status: status, errorType: errorType, message: message}
}

// GateRefresh holds refresh calls until release is called. entered receives once per
// refresh call that reaches the gate.
func (b *Backend) GateRefresh() (entered <-chan struct{}, release func()) {
	b.lock.Lock()
	defer b.lock.Unlock()
	gate := make(chan struct{})
	enter := make(chan struct{}, 16)
	b.refreshGate = gate
	b.refreshEnter = enter

	var once sync.Once
	return enter, func() {
		once.Do(func() {
			b.lock.Lock()
			if b.refreshGate == gate {
				close(gate)
				b.refreshGate = nil
			}
			b.lock.Unlock()
		})
	}
}

// Calls reports how many times "METHOD path" was requested
func (b *Backend) Calls(method, path string) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.calls[method+" "+path]
}

// RefreshCalls is the number of refresh endpoint calls
func (b *Backend) RefreshCalls() int {
	return b.Calls(http.MethodPost, "/api/auth/refresh")
}

// AuthHeaders returns the Authorization header of every request, in arrival order
func (b *Backend) AuthHeaders() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string(nil), b.authHeaders...)
}

func (b *Backend) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.lock.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		b.lock.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) isExpired(accessToken string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.expired[accessToken]
}
