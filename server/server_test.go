package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-event-portal/apiclient"
	"github.com/jrsteele09/go-event-portal/auth"
	"github.com/jrsteele09/go-event-portal/backendfake"
	"github.com/jrsteele09/go-event-portal/events"
	"github.com/jrsteele09/go-event-portal/internal/config"
	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/jrsteele09/go-event-portal/server"
	"github.com/jrsteele09/go-event-portal/token"
	tokenrepofake "github.com/jrsteele09/go-event-portal/token/repofake"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/stretchr/testify/require"
)

// Seeded account ids, in creation order
const (
	adminID     = 1
	publisherID = 2
	userID      = 3
)

// testFixture holds all test dependencies
type testFixture struct {
	backend    *backendfake.Backend
	tokens     *tokenrepofake.FakeTokenRepo
	controller *auth.Controller
	server     *server.Server
}

// newFixture builds a portal whose token store holds a pair for email, or nothing when email is empty.
// The session is left loading; call initialize to restore it.
func newFixture(t *testing.T, email string) *testFixture {
	t.Helper()
	backend := backendfake.New()
	t.Cleanup(backend.Close)

	tokens := tokenrepofake.NewFakeTokenRepo()
	if email != "" {
		tokens = tokenrepofake.NewFakeTokenRepoWith(backend.IssueTokens(email))
	}

	f := &testFixture{backend: backend, tokens: tokens}

	api, err := apiclient.New(backend.URL(), tokens)
	require.NoError(t, err)
	f.controller, err = auth.NewController(api, auth.WithNavigator(apiclient.NavigatorFunc(func(path string) {
		f.server.Redirect(path)
	})))
	require.NoError(t, err)
	ev, err := events.NewClient(api)
	require.NoError(t, err)
	admin, err := users.NewAdminClient(api)
	require.NoError(t, err)

	f.server, err = server.New(config.New(), server.Deps{Controller: f.controller, Events: ev, Admin: admin})
	require.NoError(t, err)
	return f
}

func (f *testFixture) initialize(t *testing.T) {
	t.Helper()
	_ = f.controller.Initialize(context.Background())
	require.False(t, f.controller.Session().Loading)
}

func (f *testFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		data, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, strings.NewReader(string(data)))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) seedEvent(t *testing.T, owner int, capacity int) events.Event {
	t.Helper()
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	return f.backend.Events.Create(owner, events.EventInput{
		Title:       "Go Meetup",
		Location:    "Leeds",
		StartTime:   utils.Timestamp{Time: start},
		EndTime:     utils.Timestamp{Time: start.Add(3 * time.Hour)},
		Capacity:    capacity,
		IsPublished: true,
	})
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, location, rec.Header().Get("Location"))
}

type page[T any] struct {
	Menu      server.Menu `json:"menu"`
	User      *users.User `json:"user"`
	LastError string      `json:"last_error"`
	Data      T           `json:"data"`
}

func decodePage[T any](t *testing.T, rec *httptest.ResponseRecorder) page[T] {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p page[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestNewValidation(t *testing.T) {
	_, err := server.New(nil, server.Deps{})
	require.Error(t, err)
	_, err = server.New(config.New(), server.Deps{})
	require.Error(t, err)
}

func TestGuardsWaitWhileLoading(t *testing.T) {
	f := newFixture(t, backendfake.AdminEmail)

	for _, path := range []string{"/my-registrations", "/my-events", "/events/create", "/admin", "/nowhere"} {
		rec := f.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		require.Equal(t, server.LoadingBody, rec.Body.String(), path)
		require.Equal(t, "1", rec.Header().Get("Retry-After"))
	}
}

func TestGuardsForAnonymousVisitor(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)

	requireRedirect(t, f.do(http.MethodGet, "/my-registrations", nil), "/login")
	requireRedirect(t, f.do(http.MethodGet, "/my-events", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/events/create", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/admin", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/nowhere", nil), "/")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/events", nil).Code)
}

func TestGuardsForRegularUser(t *testing.T) {
	f := newFixture(t, backendfake.UserEmail)
	f.initialize(t)

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/my-registrations", nil).Code)
	requireRedirect(t, f.do(http.MethodGet, "/my-events", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/events/create", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/admin", nil), "/")
}

func TestGuardsForPublisher(t *testing.T) {
	f := newFixture(t, backendfake.PublisherEmail)
	f.initialize(t)

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/events/create", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/my-events", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/my-registrations", nil).Code)
	requireRedirect(t, f.do(http.MethodGet, "/admin", nil), "/")
	requireRedirect(t, f.do(http.MethodGet, "/nowhere", nil), "/")
}

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t, backendfake.AdminEmail)
	f.initialize(t)
	f.seedEvent(t, publisherID, 10)

	p := decodePage[struct {
		Events         []events.Event         `json:"events"`
		Users          []users.User           `json:"users"`
		PublishedCount int                    `json:"published_count"`
		RoleCounts     map[users.RoleType]int `json:"role_counts"`
	}](t, f.do(http.MethodGet, "/admin", nil))

	require.Len(t, p.Data.Events, 1)
	require.Equal(t, 1, p.Data.PublishedCount)
	require.Len(t, p.Data.Users, 3)
	require.Equal(t, 1, p.Data.RoleCounts[users.RoleAdmin])
	require.Equal(t, "Admin", p.Menu.Badge)

	// Admins also reach the publisher pages
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/events/create", nil).Code)
	requireRedirect(t, f.do(http.MethodGet, "/nowhere", nil), "/admin")
}

func TestAdminChangesRole(t *testing.T) {
	f := newFixture(t, backendfake.AdminEmail)
	f.initialize(t)

	rec := f.do(http.MethodPost, "/admin/users/3/make-publisher", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u, err := f.backend.Users.GetByID(userID)
	require.NoError(t, err)
	require.Equal(t, users.RolePublisher, u.Role)

	require.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/admin/users/3/make-superuser", nil).Code)
	require.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/admin/users/abc/make-admin", nil).Code)
}

func TestAdminRegistersPublisher(t *testing.T) {
	f := newFixture(t, backendfake.AdminEmail)
	f.initialize(t)

	rec := f.do(http.MethodPost, "/admin/publishers", users.PublisherParameters{
		Username: "organiser", Email: "organiser@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, f.backend.Users.List(users.RolePublisher), 2)

	rec = f.do(http.MethodPost, "/admin/publishers", users.PublisherParameters{Username: "x", Email: "bad", Password: "p"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid email address")
}

func TestLoginSubmission(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)

	form := url.Values{"email": {backendfake.PublisherEmail}, "password": {backendfake.Password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireRedirect(t, rec, "/my-events")
	require.True(t, f.controller.Session().CurrentUser.IsPublisher())
	require.NotEmpty(t, f.tokens.Value(token.AccessTokenKey))

	// Already logged in: the login page forwards to the landing page
	requireRedirect(t, f.do(http.MethodGet, "/login", nil), "/my-events")
}

func TestLoginSubmissionFailure(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)

	rec := f.do(http.MethodPost, "/login", map[string]string{"email": backendfake.UserEmail, "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email or password")
	require.Nil(t, f.controller.Session().CurrentUser)
	require.Empty(t, f.server.LastRedirect())
}

func TestRegisterSubmission(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)

	rec := f.do(http.MethodPost, "/register", map[string]string{
		"username": "newbie", "email": "newbie@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Nil(t, f.controller.Session().CurrentUser, "registration does not log in")

	rec = f.do(http.MethodPost, "/register", map[string]string{
		"username": "newbie", "email": "newbie@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Username or email already exists")
}

func TestLogout(t *testing.T) {
	f := newFixture(t, backendfake.UserEmail)
	f.initialize(t)
	require.NotNil(t, f.controller.Session().CurrentUser)

	requireRedirect(t, f.do(http.MethodPost, "/logout", nil), "/login")
	require.Nil(t, f.controller.Session().CurrentUser)
	require.Empty(t, f.tokens.Value(token.AccessTokenKey))

	requireRedirect(t, f.do(http.MethodGet, "/my-registrations", nil), "/login")
}

func TestSessionEndpoint(t *testing.T) {
	f := newFixture(t, backendfake.PublisherEmail)
	f.initialize(t)

	rec := f.do(http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "token\"")

	var s struct {
		State           string     `json:"state"`
		RoleName        string     `json:"role_name"`
		HomePage        string     `json:"home_page"`
		AccessExpiresAt *time.Time `json:"access_expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	require.Equal(t, "authenticated", s.State)
	require.Equal(t, "Platform Manager", s.RoleName)
	require.Equal(t, "/my-events", s.HomePage)
	require.NotNil(t, s.AccessExpiresAt)
	require.True(t, s.AccessExpiresAt.After(time.Now()))
}

func TestFailedRefreshSendsPageToLogin(t *testing.T) {
	f := newFixture(t, backendfake.UserEmail)
	f.initialize(t)

	f.backend.ExpireAllAccessTokens()
	f.backend.FailRefresh(http.StatusUnauthorized, "invalid_token", "Refresh token revoked")

	requireRedirect(t, f.do(http.MethodGet, "/my-registrations", nil), "/login")
	require.Equal(t, "/login", f.server.LastRedirect())
	require.Equal(t, "anonymous", f.controller.Session().State().String())
	require.Equal(t, 1, f.backend.RefreshCalls())
}

func TestExpiredTokenIsRefreshedTransparently(t *testing.T) {
	f := newFixture(t, backendfake.UserEmail)
	f.initialize(t)

	f.backend.ExpireAllAccessTokens()
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/my-registrations", nil).Code)
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.Empty(t, f.server.LastRedirect())
}

func TestEventDetailAndRegistration(t *testing.T) {
	f := newFixture(t, backendfake.UserEmail)
	f.initialize(t)
	e := f.seedEvent(t, publisherID, 1)

	type detail struct {
		Event       events.Event `json:"event"`
		Registered  bool         `json:"registered"`
		CanRegister bool         `json:"can_register"`
		CanEdit     bool         `json:"can_edit"`
	}
	path := "/events/" + itoa(e.ID)

	p := decodePage[detail](t, f.do(http.MethodGet, path, nil))
	require.Equal(t, "Go Meetup", p.Data.Event.Title)
	require.True(t, p.Data.CanRegister)
	require.False(t, p.Data.Registered)
	require.False(t, p.Data.CanEdit)

	rec := f.do(http.MethodPost, path+"/registration", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Successfully registered for event")

	p = decodePage[detail](t, f.do(http.MethodGet, path, nil))
	require.True(t, p.Data.Registered)
	require.False(t, p.Data.CanRegister)
	require.True(t, p.Data.Event.Full())

	rec = f.do(http.MethodDelete, path+"/registration", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/events/999", nil).Code)
}

func TestAnonymousRegistrationGoesToLogin(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)
	e := f.seedEvent(t, publisherID, 0)

	requireRedirect(t, f.do(http.MethodPost, "/events/"+itoa(e.ID)+"/registration", nil), "/login")
}

func TestPublisherManagesOwnEvents(t *testing.T) {
	f := newFixture(t, backendfake.PublisherEmail)
	f.initialize(t)
	start := time.Date(2030, 7, 1, 9, 0, 0, 0, time.UTC)
	in := events.EventInput{
		Title:       "Workshop",
		Location:    "Online",
		StartTime:   utils.Timestamp{Time: start},
		EndTime:     utils.Timestamp{Time: start.Add(time.Hour)},
		IsPublished: true,
	}

	rec := f.do(http.MethodPost, "/events/create", in)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Event events.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	editPath := "/events/edit/" + itoa(created.Event.ID)

	p := decodePage[events.Event](t, f.do(http.MethodGet, editPath, nil))
	require.Equal(t, "Workshop", p.Data.Title)

	in.Location = "Manchester"
	rec = f.do(http.MethodPut, editPath, in)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Manchester")

	// Someone else's event sends the publisher back to their own list
	other := f.seedEvent(t, adminID, 0)
	requireRedirect(t, f.do(http.MethodGet, "/events/edit/"+itoa(other.ID), nil), "/my-events")

	in.Title = ""
	rec = f.do(http.MethodPut, editPath, in)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodDelete, "/events/"+itoa(created.Event.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := f.backend.Events.Get(created.Event.ID)
	require.Error(t, err)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	f := newFixture(t, "")
	f.initialize(t)

	rec := f.do(http.MethodGet, "/events", nil)
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
