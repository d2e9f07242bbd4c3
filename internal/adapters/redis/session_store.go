package redis

// Package redis provides the Redis-backed console session store. Keys carry
// a TTL derived from the session expiry, so Redis evicts stale sessions on
// its own.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
)

// SessionStore is a Redis-based implementation of ports.SessionStore.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a session store with the default key prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "console_session:"}
}

// NewSessionStoreWithPrefix creates a session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

// Save persists a session with TTL derived from its expiry. An already
// expired session is rejected rather than written.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Get retrieves a session by id, returning ErrNotFound for missing or
// expired sessions. An expired record still present in Redis is removed.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound error = notFoundError{}
