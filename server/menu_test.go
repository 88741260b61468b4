package server_test

import (
	"strconv"
	"testing"

	"github.com/jrsteele09/go-event-portal/server"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/stretchr/testify/require"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

func labels(m server.Menu) []string {
	out := make([]string, 0, len(m.Items))
	for _, item := range m.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestMenuForAnonymous(t *testing.T) {
	m := server.MenuFor(nil)
	require.Equal(t, []string{"Events", "Login", "Register"}, labels(m))
	require.Equal(t, "Guest", m.RoleName)
	require.Empty(t, m.Greeting)
	require.Equal(t, users.HomeDefault, m.Brand.Path)
}

func TestMenuForRoles(t *testing.T) {
	admin := server.MenuFor(&users.User{Username: "root", Role: users.RoleAdmin})
	require.Equal(t, []string{"Admin Dashboard", "Logout"}, labels(admin))
	require.Equal(t, "Admin: root", admin.Greeting)
	require.Equal(t, "Admin", admin.Badge)
	require.Equal(t, "/admin", admin.Brand.Path)

	publisher := server.MenuFor(&users.User{Username: "pat", Role: users.RolePublisher})
	require.Equal(t, []string{"All Events", "My Events", "Create Event", "Logout"}, labels(publisher))
	require.Equal(t, "Event Manager", publisher.Badge)
	require.Equal(t, "Welcome, pat", publisher.Greeting)

	user := server.MenuFor(&users.User{Username: "uma", Role: users.RoleUser})
	require.Equal(t, []string{"Events", "My Registrations", "Logout"}, labels(user))
	require.Empty(t, user.Badge)
	require.Equal(t, "User", user.RoleName)

	logout := user.Items[len(user.Items)-1]
	require.Equal(t, server.RouteLogout, logout.Path)
	require.Equal(t, "POST", logout.Method)
}

func TestMenuForUnknownRole(t *testing.T) {
	m := server.MenuFor(&users.User{Username: "odd", Role: users.RoleType("superuser")})
	require.Equal(t, []string{"Events", "Logout"}, labels(m))
	require.Equal(t, "Guest", m.RoleName)
}
