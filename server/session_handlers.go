package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-event-portal/users"
)

// credentialsInput accepts both JSON bodies and HTML form posts
type credentialsInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func readCredentials(r *http.Request) (credentialsInput, error) {
	var in credentialsInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Username = r.PostFormValue("username")
	in.Email = r.PostFormValue("email")
	in.Password = r.PostFormValue("password")
	return in, nil
}

type pageResponse struct {
	AppName   string      `json:"app_name"`
	Menu      Menu        `json:"menu"`
	User      *users.User `json:"user,omitempty"`
	LastError string      `json:"last_error,omitempty"`
	Data      any         `json:"data,omitempty"`
}

// page wraps data with the navigation every page shows
func (s *Server) page(data any) pageResponse {
	session := s.deps.Controller.Session()
	return pageResponse{
		AppName:   s.config.GetAppName(),
		Menu:      MenuFor(session.CurrentUser),
		User:      session.CurrentUser,
		LastError: session.LastError,
		Data:      data,
	}
}

// HomeHandler renders the landing page
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.page(nil))
	}
}

// LoginPageHandler sends logged in users to their landing page
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.deps.Controller.Session()
		if session.Authenticated() {
			http.Redirect(w, r, users.HomePageForUser(session.CurrentUser), http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, s.page(nil))
	}
}

// LoginSubmissionHandler logs in and redirects to the role's landing page
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := readCredentials(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		u, err := s.deps.Controller.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			writeJSON(w, failureStatus(err), errorResponse{Error: s.deps.Controller.Session().LastError})
			return
		}
		http.Redirect(w, r, users.HomePageForUser(u), http.StatusSeeOther)
	}
}

func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.page(nil))
	}
}

// RegisterSubmissionHandler creates the account; the user logs in separately
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := readCredentials(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		resp, err := s.deps.Controller.Register(r.Context(), in.Username, in.Email, in.Password)
		if err != nil {
			writeJSON(w, failureStatus(err), errorResponse{Error: s.deps.Controller.Session().LastError})
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.deps.Controller.Logout()
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

type sessionResponse struct {
	State           string      `json:"state"`
	Loading         bool        `json:"loading"`
	User            *users.User `json:"user,omitempty"`
	RoleName        string      `json:"role_name"`
	HomePage        string      `json:"home_page"`
	LastError       string      `json:"last_error,omitempty"`
	AccessExpiresAt *time.Time  `json:"access_expires_at,omitempty"`
	LastRedirect    string      `json:"last_redirect,omitempty"`
}

// SessionHandler exposes the session snapshot, without tokens
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.deps.Controller.Session()
		resp := sessionResponse{
			State:        session.State().String(),
			Loading:      session.Loading,
			User:         session.CurrentUser,
			HomePage:     users.HomePageForUser(session.CurrentUser),
			LastError:    session.LastError,
			LastRedirect: s.LastRedirect(),
		}
		if session.CurrentUser != nil {
			resp.RoleName = users.RoleName(session.CurrentUser.Role)
		} else {
			resp.RoleName = users.RoleName("")
		}
		if exp := session.AccessExpiresAt(); !exp.IsZero() {
			resp.AccessExpiresAt = &exp
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// FallbackHandler sends unmatched paths to /admin for admins and / for everyone else
func (s *Server) FallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.deps.Controller.Session()
		if session.Loading {
			writeLoading(w)
			return
		}
		target := RouteHome
		if session.CurrentUser.IsAdmin() {
			target = RouteAdminDashboard
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
