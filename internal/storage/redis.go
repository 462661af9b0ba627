package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

const (
	sessionKeyPrefix = "session:"
	sessionIndexKey  = "sessions"
)

// RedisStorage implements Storage using Redis for sessions and the local
// filesystem for adventure content. Sessions have no TTL; they persist until
// explicitly deleted (expiry policy belongs to the operator, not the engine).
type RedisStorage struct {
	client     *redis.Client
	adventures *adventureCache
	logger     *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage connects to Redis at addr and loads adventure content from
// dataDir/adventures.
func NewRedisStorage(addr, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	adventures, err := loadAdventures(dataDir, logger)
	if err != nil {
		return nil, err
	}
	if len(adventures.byID) == 0 {
		logger.Warn("No adventures loaded", "data_dir", dataDir)
	}

	return &RedisStorage{
		client:     rdb,
		adventures: adventures,
		logger:     logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	const maxRetries = 30
	const retryDelay = 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Adventure operations (filesystem-backed, cached in memory)

func (r *RedisStorage) GetAdventure(ctx context.Context, adventureID string) (*adventure.Adventure, error) {
	return r.adventures.get(adventureID), nil
}

func (r *RedisStorage) ListAdventures(ctx context.Context) ([]*adventure.Adventure, error) {
	return r.adventures.list(), nil
}

// Session operations (Redis-backed)

func (r *RedisStorage) CreateSession(ctx context.Context, adventureID, startingLocationID, playerName string) (*session.Session, error) {
	s := session.New(adventureID, startingLocationID, playerName)
	if err := r.SaveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStorage) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	key := sessionKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Not found is a normal outcome here
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &s, nil
}

func (r *RedisStorage) SaveSession(ctx context.Context, s *session.Session) error {
	now := time.Now().UTC()
	s.UpdatedAt = now
	s.LastPlayedAt = now

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKeyPrefix + s.ID.String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, string(data), 0)
	pipe.SAdd(ctx, sessionIndexKey, s.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	key := sessionKeyPrefix + id.String()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, sessionIndexKey, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context, adventureID string) ([]*session.Session, error) {
	ids, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session ids: %w", err)
	}

	sessions := make([]*session.Session, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed session id in index", "id", idStr)
			continue
		}

		s, err := r.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			// Index entry without a record; clean it up.
			r.client.SRem(ctx, sessionIndexKey, idStr)
			continue
		}
		if adventureID != "" && s.AdventureID != adventureID {
			continue
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}
