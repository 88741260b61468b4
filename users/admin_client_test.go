package users_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-event-portal/apiclient"
	"github.com/jrsteele09/go-event-portal/backendfake"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	tokenrepofake "github.com/jrsteele09/go-event-portal/token/repofake"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	backend *backendfake.Backend
	admin   *users.AdminClient
}

func newAdminFixture(t *testing.T, email string) *adminFixture {
	t.Helper()
	backend := backendfake.New()
	t.Cleanup(backend.Close)

	access, refresh := backend.IssueTokens(email)
	api, err := apiclient.New(backend.URL(), tokenrepofake.NewFakeTokenRepoWith(access, refresh))
	require.NoError(t, err)
	admin, err := users.NewAdminClient(api)
	require.NoError(t, err)

	return &adminFixture{backend: backend, admin: admin}
}

func (f *adminFixture) userID(t *testing.T, email string) int {
	t.Helper()
	for _, u := range f.backend.Users.List() {
		if u.Email == email {
			return u.ID
		}
	}
	t.Fatalf("no account for %s", email)
	return 0
}

func TestNewAdminClientValidation(t *testing.T) {
	_, err := users.NewAdminClient(nil)
	require.Error(t, err)
}

func TestAdminListsUsersAndPublishers(t *testing.T) {
	f := newAdminFixture(t, backendfake.AdminEmail)
	ctx := context.Background()

	all, err := f.admin.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	publishers, err := f.admin.Publishers(ctx)
	require.NoError(t, err)
	require.Len(t, publishers, 1)
	require.Equal(t, backendfake.PublisherEmail, publishers[0].Email)

	u, err := f.admin.Get(ctx, publishers[0].ID)
	require.NoError(t, err)
	require.True(t, u.IsPublisher())
}

func TestAdminChangesRoles(t *testing.T) {
	f := newAdminFixture(t, backendfake.AdminEmail)
	ctx := context.Background()
	id := f.userID(t, backendfake.UserEmail)

	u, err := f.admin.MakePublisher(ctx, id)
	require.NoError(t, err)
	require.Equal(t, users.RolePublisher, u.Role)

	u, err = f.admin.MakeAdmin(ctx, id)
	require.NoError(t, err)
	require.True(t, u.IsAdmin())

	u, err = f.admin.RevokePrivileges(ctx, id)
	require.NoError(t, err)
	require.True(t, u.IsRegularUser())
}

func TestAdminRegisterPublisher(t *testing.T) {
	f := newAdminFixture(t, backendfake.AdminEmail)
	ctx := context.Background()

	u, err := f.admin.RegisterPublisher(ctx, users.PublisherParameters{
		Username: "organiser",
		Email:    "organiser@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, users.RolePublisher, u.Role)
	require.Equal(t, "organiser", u.Username)

	_, err = f.admin.RegisterPublisher(ctx, users.PublisherParameters{
		Username: "organiser",
		Email:    "organiser@example.com",
		Password: "secret123",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Equal(t, "Username or email already exists", apperrors.Message(err))
}

func TestRegisterPublisherValidatesLocally(t *testing.T) {
	f := newAdminFixture(t, backendfake.AdminEmail)
	ctx := context.Background()

	_, err := f.admin.RegisterPublisher(ctx, users.PublisherParameters{Username: "x", Email: "not-an-email", Password: "p"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Equal(t, "invalid email address", apperrors.Message(err))

	_, err = f.admin.RegisterPublisher(ctx, users.PublisherParameters{Email: "a@b.co"})
	require.Equal(t, "username, email and password are required", apperrors.Message(err))

	require.Equal(t, 0, f.backend.Calls(http.MethodPost, "/api/users/register-publisher"))
}

func TestNonAdminIsForbidden(t *testing.T) {
	f := newAdminFixture(t, backendfake.PublisherEmail)

	_, err := f.admin.List(context.Background())
	require.ErrorIs(t, err, apperrors.ErrValidation)

	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Equal(t, "Insufficient permissions", apiErr.Message)
}
