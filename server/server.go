package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-event-portal/auth"
	"github.com/jrsteele09/go-event-portal/events"
	"github.com/jrsteele09/go-event-portal/internal/config"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/rs/zerolog/log"
)

// Deps holds the collaborators the pages call into
type Deps struct {
	Controller *auth.Controller    // Session owner; also the guards' session reader
	Events     *events.Client      // Event endpoints
	Admin      *users.AdminClient  // User management endpoints
	Metrics    http.Handler        // Served on /metrics when set
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.EnvConfig
	deps    Deps
	metrics http.Handler

	redirectLock sync.Mutex
	lastRedirect string
}

func New(config config.EnvConfig, deps Deps) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if deps.Controller == nil {
		return nil, errors.New("[Server New] controller is required")
	}
	if deps.Events == nil || deps.Admin == nil {
		return nil, errors.New("[Server New] events and admin clients are required")
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		deps:    deps,
		metrics: deps.Metrics,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Redirect records the pipeline's login redirects; pages act on them through RequiresLogin errors
func (s *Server) Redirect(path string) {
	s.redirectLock.Lock()
	s.lastRedirect = path
	s.redirectLock.Unlock()
	log.Info().Str("path", path).Msg("Session ended by the request pipeline")
}

// LastRedirect is the most recent redirect requested by the pipeline
func (s *Server) LastRedirect() string {
	s.redirectLock.Lock()
	defer s.redirectLock.Unlock()
	return s.lastRedirect
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
