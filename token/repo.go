package token

import "context"

// Keys under which the token pair is persisted
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
)

// Repo is the durable key/value store holding the current token pair.
// Absent keys are not an error: Get reports found=false.
// The store does not track expiry; validity is decided by the backend.
type Repo interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
