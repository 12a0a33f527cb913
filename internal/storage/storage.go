package storage

import (
	"context"
	"fmt"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/rs/zerolog"
)

// Keys under which the session is persisted.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// Storage is a persistent key-value store that survives process restarts.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// NewStorage picks a backend from the session configuration. A redis
// backend that cannot be reached falls back to the file backend.
func NewStorage(ctx context.Context, cfg appconfig.SessionConfig, log *zerolog.Logger) (Storage, error) {
	switch cfg.Store {
	case "memory":
		log.Debug().Msg("Using in-memory session storage")
		return NewMemoryStorage(), nil
	case "redis":
		store, err := NewRedisStorage(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis connection failed, falling back to file session storage")
			return NewFileStorage(cfg.Path)
		}
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("Using redis session storage")
		return store, nil
	case "file", "":
		log.Debug().Str("path", cfg.Path).Msg("Using file session storage")
		return NewFileStorage(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
