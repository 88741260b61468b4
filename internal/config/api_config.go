package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar = "API_BASE_URL"
	apiTimeoutVar = "API_TIMEOUT"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type API struct {
	overlay Overlay
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend base URL without a trailing slash.
// Endpoint paths carry the fixed /api prefix themselves.
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.overlay.lookup(apiBaseURLVar, "http://localhost:5001"), "/")
}

func (a API) GetAPITimeout() time.Duration {
	timeout, err := time.ParseDuration(a.overlay.lookup(apiTimeoutVar, "30s"))
	if err != nil || timeout <= 0 {
		return 30 * time.Second
	}
	return timeout
}
