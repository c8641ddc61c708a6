package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crisp/interview/internal/session"
)

const (
	sessionKeyPrefix = "interview:session:"
	markerKeyPrefix  = "interview:active:"
)

// RedisSessionStore persists session snapshots in Redis so a session
// survives process restarts and multiple server instances see the
// same state.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore wraps an existing client. Snapshots expire
// after ttl of inactivity; zero means no expiry.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func (s *RedisSessionStore) Load(ctx context.Context, id string) (*session.State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state *session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", state.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", state.ID, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func (s *RedisSessionStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// RedisMarkerStore keeps the session-active markers that gate the
// resume prompt. Markers expire on their own so an abandoned client
// eventually counts as a fresh load.
type RedisMarkerStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMarkerStore(client *redis.Client, ttl time.Duration) *RedisMarkerStore {
	return &RedisMarkerStore{client: client, ttl: ttl}
}

func markerKey(sessionID string) string { return markerKeyPrefix + sessionID }

func (s *RedisMarkerStore) Active(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, markerKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check marker for %s: %w", sessionID, err)
	}
	return n > 0, nil
}

func (s *RedisMarkerStore) SetActive(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, markerKey(sessionID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set marker for %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisMarkerStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, markerKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear marker for %s: %w", sessionID, err)
	}
	return nil
}
