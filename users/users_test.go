package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-event-portal/users"
	"github.com/stretchr/testify/require"
)

func TestRolePredicatesAreTotal(t *testing.T) {
	var missingRole users.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"username":"x","email":"x@y.z"}`), &missingRole))

	cases := map[string]*users.User{
		"nil user":     nil,
		"missing role": &missingRole,
		"unknown role": {ID: 8, Role: users.RoleType("superuser")},
		"cased role":   {ID: 9, Role: users.RoleType("Admin")},
	}

	for name, u := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, u.IsAdmin())
				require.False(t, u.IsPublisher())
				require.False(t, u.IsRegularUser())
				require.False(t, u.CanManageEvents())
				require.Equal(t, users.HomeDefault, users.HomePageForUser(u))
			})
		})
	}
}

func TestRolePredicates(t *testing.T) {
	admin := &users.User{Role: users.RoleAdmin}
	publisher := &users.User{Role: users.RolePublisher}
	regular := &users.User{Role: users.RoleUser}

	require.True(t, admin.IsAdmin())
	require.False(t, admin.IsPublisher(), "admins are not publishers")
	require.True(t, admin.CanManageEvents())

	require.True(t, publisher.IsPublisher())
	require.True(t, publisher.CanManageEvents())
	require.False(t, publisher.IsAdmin())

	require.True(t, regular.IsRegularUser())
	require.False(t, regular.CanManageEvents())
}

func TestParseRole(t *testing.T) {
	require.Equal(t, users.RoleAdmin, users.ParseRole(" Admin "))
	require.Equal(t, users.RoleType("owner"), users.ParseRole("owner"))
	require.Equal(t, "Guest", users.RoleName(users.ParseRole("owner")))
}

func TestUserRoleIsNormalisedOnDecode(t *testing.T) {
	var u users.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"role":" Publisher "}`), &u))
	require.True(t, u.IsPublisher())

	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"role":"owner"}`), &u))
	require.Equal(t, users.RoleType("owner"), u.Role)
	require.False(t, u.CanManageEvents())

	require.Error(t, json.Unmarshal([]byte(`{"id":4,"role":7}`), &u))
}

func TestUserDecodesBackendPayload(t *testing.T) {
	var u users.User
	payload := `{"id":1,"username":"admin","email":"admin@example.com","role":"admin","created_at":"2025-01-02T03:04:05.000001","updated_at":"2025-01-02T03:04:05"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &u))
	require.Equal(t, 1, u.ID)
	require.True(t, u.IsAdmin())
	require.Equal(t, 2025, u.CreatedAt.Year())
}
