package server

func (s *Server) initRoutes() {
	session := s.deps.Controller

	// Public pages
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.HomeHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteEvents, ChainMiddleware(s.EventsPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteEventDetail, ChainMiddleware(s.EventDetailHandler(), s.PageMiddleware()...))

	// Event registration from the detail page
	s.RegisterRouteHandler("POST "+RouteEventRegistration, ChainMiddleware(s.EventRegisterHandler(), s.PageMiddleware(RequireAuthenticated(session))...))
	s.RegisterRouteHandler("DELETE "+RouteEventRegistration, ChainMiddleware(s.EventUnregisterHandler(), s.PageMiddleware(RequireAuthenticated(session))...))

	// Publisher or admin pages
	s.RegisterRouteHandler("GET "+RouteEventCreate, ChainMiddleware(s.EventFormHandler(), s.PageMiddleware(RequirePublisher(session))...))
	s.RegisterRouteHandler("POST "+RouteEventCreate, ChainMiddleware(s.EventCreateHandler(), s.PageMiddleware(RequirePublisher(session))...))
	s.RegisterRouteHandler("GET "+RouteEventEdit, ChainMiddleware(s.EventEditPageHandler(), s.PageMiddleware(RequirePublisher(session))...))
	s.RegisterRouteHandler("PUT "+RouteEventEdit, ChainMiddleware(s.EventUpdateHandler(), s.PageMiddleware(RequirePublisher(session))...))
	s.RegisterRouteHandler("DELETE "+RouteEventDetail, ChainMiddleware(s.EventDeleteHandler(), s.PageMiddleware(RequirePublisher(session))...))
	s.RegisterRouteHandler("GET "+RouteMyEvents, ChainMiddleware(s.MyEventsHandler(), s.PageMiddleware(RequirePublisher(session))...))

	// Any authenticated user
	s.RegisterRouteHandler("GET "+RouteMyRegistrations, ChainMiddleware(s.MyRegistrationsHandler(), s.PageMiddleware(RequireAuthenticated(session))...))

	// Admin pages
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.PageMiddleware(RequireAdmin(session))...))
	s.RegisterRouteHandler("POST "+RouteAdminPublishers, ChainMiddleware(s.AdminRegisterPublisherHandler(), s.PageMiddleware(RequireAdmin(session))...))
	s.RegisterRouteHandler("POST "+RouteAdminUserRole, ChainMiddleware(s.AdminChangeRoleHandler(), s.PageMiddleware(RequireAdmin(session))...))

	// Session management
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.PageMiddleware()...))

	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics)
	}

	// Anything unmatched is sent to the role's landing page
	s.RegisterRouteHandler("/", ChainMiddleware(s.FallbackHandler(), s.PageMiddleware()...))
}
