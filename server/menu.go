package server

import "github.com/jrsteele09/go-event-portal/users"

// MenuItem is one navigation link
type MenuItem struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Method string `json:"method,omitempty"` // Set for actions that are not plain links
}

// Menu is the navigation bar for the current user
type Menu struct {
	Brand    MenuItem   `json:"brand"`
	Items    []MenuItem `json:"items"`
	Greeting string     `json:"greeting,omitempty"`
	Badge    string     `json:"badge,omitempty"`
	RoleName string     `json:"role_name"`
}

// MenuFor builds the navigation for u; nil means anonymous
func MenuFor(u *users.User) Menu {
	m := Menu{
		Brand: MenuItem{Label: "EVENT PLATFORM", Path: users.HomePageForUser(u)},
	}
	switch {
	case u.IsAdmin():
		m.Items = []MenuItem{{Label: "Admin Dashboard", Path: RouteAdminDashboard}}
		m.Badge = "Admin"
	case u.IsPublisher():
		m.Items = []MenuItem{
			{Label: "All Events", Path: RouteEvents},
			{Label: "My Events", Path: RouteMyEvents},
			{Label: "Create Event", Path: RouteEventCreate},
		}
		m.Badge = "Event Manager"
	case u.IsRegularUser():
		m.Items = []MenuItem{
			{Label: "Events", Path: RouteEvents},
			{Label: "My Registrations", Path: RouteMyRegistrations},
		}
	default:
		m.Items = []MenuItem{{Label: "Events", Path: RouteEvents}}
	}

	if u == nil {
		m.RoleName = users.RoleName("")
		m.Items = append(m.Items,
			MenuItem{Label: "Login", Path: RouteLogin},
			MenuItem{Label: "Register", Path: RouteRegister},
		)
		return m
	}

	m.RoleName = users.RoleName(u.Role)
	m.Greeting = "Welcome, " + u.Username
	if u.IsAdmin() {
		m.Greeting = "Admin: " + u.Username
	}
	m.Items = append(m.Items, MenuItem{Label: "Logout", Path: RouteLogout, Method: "POST"})
	return m
}
