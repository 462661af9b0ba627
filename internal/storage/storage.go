package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

// HealthChecker defines basic health check capabilities.
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities.
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage persists game sessions and serves immutable adventure content.
// Sessions are keyed by opaque uuid; "not found" is modeled as (nil, nil),
// never as an error — callers turn it into a player-facing failure message.
type Storage interface {
	HealthChecker
	Closer

	// GetAdventure returns the adventure with the given id, or nil if no
	// such adventure exists. Adventures are immutable once loaded.
	GetAdventure(ctx context.Context, adventureID string) (*adventure.Adventure, error)

	// ListAdventures returns all playable adventures.
	ListAdventures(ctx context.Context) ([]*adventure.Adventure, error)

	// CreateSession creates and persists a fresh session seeded at the
	// starting location.
	CreateSession(ctx context.Context, adventureID, startingLocationID, playerName string) (*session.Session, error)

	// GetSession retrieves a session by id. Returns nil if it doesn't exist.
	GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// SaveSession upserts a session and refreshes its UpdatedAt and
	// LastPlayedAt timestamps.
	SaveSession(ctx context.Context, s *session.Session) error

	// DeleteSession removes a session by id.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// ListSessions returns sessions, optionally filtered by adventure id.
	// An empty adventureID returns all sessions.
	ListSessions(ctx context.Context, adventureID string) ([]*session.Session, error)
}
