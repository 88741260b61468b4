package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-event-portal/sessions"
	"github.com/jrsteele09/go-event-portal/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the *users.User admitted by a guard
const ContextKeyUser ContextKey = "user"

// UserFromContext returns the user admitted by a guard, or nil on public routes
func UserFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}

// RequireAuthenticated admits any logged in user; others go to the login page
func RequireAuthenticated(reader sessions.Reader) func(http.HandlerFunc) http.HandlerFunc {
	return guard(reader, func(u *users.User) bool { return u != nil }, RouteLogin)
}

// RequirePublisher admits publishers and admins; others go home
func RequirePublisher(reader sessions.Reader) func(http.HandlerFunc) http.HandlerFunc {
	return guard(reader, (*users.User).CanManageEvents, RouteHome)
}

// RequireAdmin admits admins only; others go home
func RequireAdmin(reader sessions.Reader) func(http.HandlerFunc) http.HandlerFunc {
	return guard(reader, (*users.User).IsAdmin, RouteHome)
}

// guard makes no decision while the session is loading
func guard(reader sessions.Reader, allow func(*users.User) bool, denyPath string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s := reader.Session()
			if s.Loading {
				writeLoading(w)
				return
			}
			if !allow(s.CurrentUser) {
				http.Redirect(w, r, denyPath, http.StatusSeeOther)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, s.CurrentUser)))
		}
	}
}
