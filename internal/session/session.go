// Package session keeps per-client conversation history on the server side.
// Clients only hold an opaque session id in a cookie.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"medicalbot/internal/config"
)

// Store hands out sessions by id.
type Store interface {
	// EnsureSession returns the live session for id, or a new empty session
	// when id is empty, malformed, unknown or expired.
	EnsureSession(ctx context.Context, id string) (Session, error)
	Close() error
}

// Session is one client's conversation history.
type Session interface {
	ID() string
	History(ctx context.Context) ([]string, error)
	Append(ctx context.Context, lines ...string) error
}

type StoreType string

const (
	MemoryBackend StoreType = "memory"
	RedisBackend  StoreType = "redis"
)

func NewStore(cfg config.SessionConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case MemoryBackend:
		return NewInMemoryStore(cfg.TTL, cfg.MaxEntries), nil
	case RedisBackend:
		return NewRedisStore(cfg.Redis, cfg.TTL, cfg.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func trimTo(lines []string, max int) []string {
	if max > 0 && len(lines) > max {
		return lines[len(lines)-max:]
	}
	return lines
}
