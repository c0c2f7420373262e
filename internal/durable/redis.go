package durable

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
)

const sessionBlobKey = "nestlog:active_sessions"

// RedisStore keeps the session snapshot as a single blob under one key.
// Used when the engine runs as a shared server instance rather than
// per-device; the snapshot semantics are identical to the file backend.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL connects and pings before returning, so a
// misconfigured backend fails at startup rather than on the first flush.
func NewRedisStoreFromURL(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisStore(client), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context) (map[string]model.ActiveSession, []error) {
	data, err := s.client.Get(ctx, sessionBlobKey).Bytes()
	if err == redis.Nil {
		return make(map[string]model.ActiveSession), nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to read session snapshot from redis, treating as empty")
		return make(map[string]model.ActiveSession), []error{err}
	}
	return decodeSnapshot(data)
}

func (s *RedisStore) SaveAll(ctx context.Context, sessions map[string]model.ActiveSession) error {
	data, err := encodeSnapshot(sessions)
	if err != nil {
		return apperrors.Storage("Failed to serialize sessions", err)
	}
	if err := s.client.Set(ctx, sessionBlobKey, data, 0).Err(); err != nil {
		return apperrors.Storage("Failed to write session snapshot", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionBlobKey).Err(); err != nil {
		return apperrors.Storage("Failed to clear session snapshot", err)
	}
	return nil
}
