package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteHome        = "/"
	RouteLogin       = "/login"
	RouteRegister    = "/register"
	RouteEvents      = "/events"
	RouteEventDetail = "/events/{eventId}"

	// Registration for an event: POST registers, DELETE unregisters
	RouteEventRegistration = "/events/{eventId}/registration"

	// Publisher or admin pages
	RouteEventCreate = "/events/create"
	RouteEventEdit   = "/events/edit/{eventId}"
	RouteMyEvents    = "/my-events"

	// Any authenticated user
	RouteMyRegistrations = "/my-registrations"

	// Admin pages
	RouteAdminDashboard  = "/admin"
	RouteAdminPublishers = "/admin/publishers"
	RouteAdminUserRole   = "/admin/users/{userId}/{action}"

	// Session management
	RouteLogout  = "/logout"
	RouteSession = "/session"

	// Operations
	RouteMetrics = "/metrics"
)

// Path value names used in route patterns
const (
	eventIDParam = "eventId"
	userIDParam  = "userId"
	actionParam  = "action"
)
