package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenIntrospection is what the client can learn from a token without the signing key.
// Nothing here is trusted; validity is always decided by the backend.
type TokenIntrospection struct {
	Subject   string
	Role      string
	ExpiresAt time.Time // Zero when the token carries no exp claim or is not a JWT
}

// Expired reports whether the token's exp claim is in the past. Tokens without
// an exp claim never report expired.
func (ti TokenIntrospection) Expired() bool {
	return !ti.ExpiresAt.IsZero() && NowTimeFunc().After(ti.ExpiresAt)
}

// Inspect decodes a token's claims without verifying its signature.
// Opaque (non-JWT) tokens yield an empty result and ok=false.
func Inspect(rawToken string) (TokenIntrospection, bool) {
	if strings.TrimSpace(rawToken) == "" {
		return TokenIntrospection{}, false
	}
	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return TokenIntrospection{}, false
	}
	ti := TokenIntrospection{
		Subject: claims.Subject,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		ti.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return ti, true
}
