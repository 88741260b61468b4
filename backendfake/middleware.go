package backendfake

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/token/jwt"
	"github.com/jrsteele09/go-event-portal/users"
)

type contextKey string

const userContextKey contextKey = "user"

func userFromContext(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(userContextKey).(users.User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return raw, raw != ""
}

// authenticate resolves the access token to its account, writing the 401 itself on failure
func (b *Backend) authenticate(w http.ResponseWriter, r *http.Request) (users.User, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
		return users.User{}, false
	}
	if b.isExpired(raw) {
		writeTokenExpired(w)
		return users.User{}, false
	}
	claims, err := b.creator.Verify(raw, jwt.TypeAccess)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		writeTokenExpired(w)
		return users.User{}, false
	case err != nil:
		writeError(w, http.StatusUnauthorized, "Invalid token", "invalid_token")
		return users.User{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token", "invalid_token")
		return users.User{}, false
	}
	u, err := b.Users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "User not found", "invalid_token")
		return users.User{}, false
	}
	return u, true
}

func (b *Backend) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	})
}

// optionalAccess attaches the user when a token is presented; a bad token is still rejected
func (b *Backend) optionalAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); !ok {
			next.ServeHTTP(w, r)
			return
		}
		b.requireAccess(next).ServeHTTP(w, r)
	})
}

func requireRole(roles ...users.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := userFromContext(r.Context())
			if !containsRole(roles, u.Role) {
				writeError(w, http.StatusForbidden, "Insufficient permissions", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTokenExpired(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Token has expired", apperrors.TokenExpiredType)
}
