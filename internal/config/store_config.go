package config

import "strings"

type StoreBackend string

const (
	StoreBackendFile   StoreBackend = "file"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

type StoreConfig interface {
	GetTokenStore() StoreBackend
	GetRedisAddr() string
	GetRedisPrefix() string
}

type Store struct {
	overlay Overlay
}

var _ StoreConfig = Store{}

func (s Store) GetTokenStore() StoreBackend {
	switch backend := StoreBackend(strings.ToLower(s.overlay.lookup("TOKEN_STORE", string(StoreBackendFile)))); backend {
	case StoreBackendRedis, StoreBackendMemory:
		return backend
	default:
		return StoreBackendFile
	}
}

func (s Store) GetRedisAddr() string {
	return s.overlay.lookup("REDIS_ADDR", "localhost:6379")
}

// GetRedisPrefix namespaces the token keys so several profiles can share one redis
func (s Store) GetRedisPrefix() string {
	return s.overlay.lookup("REDIS_PREFIX", "event-portal:default:")
}
