// Package redis provides Redis-backed session and graph stores plus a
// distributed locker, giving multi-replica deployments durable sessions and
// per-session turn serialization.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// farFuture scores index members that never expire (TTL 0).
const farFuture = 4102444800 // 2100-01-01

// SessionStore implements ports.SessionStore using Redis.
type SessionStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the SessionStore.
type Option func(*SessionStore)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

// NewSessionStore creates a Redis session store with its own client.
func NewSessionStore(address, password string, db int, opts ...Option) *SessionStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewSessionStoreFromClient(client, opts...)
}

// NewSessionStoreFromClient creates a Redis session store over an existing client.
func NewSessionStoreFromClient(client *backend.Client, opts ...Option) *SessionStore {
	store := &SessionStore{
		client: client,
		prefix: "botflow:session:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *SessionStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the session as JSON with TTL, tracking it in a ZSET index
// scored by expiry for lazy cleanup in List.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sess.ID), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sess.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Variables == nil {
		sess.Variables = make(map[string]any)
	}
	return &sess, nil
}

// Delete removes the session and its index entry.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns active session IDs, lazily pruning expired index entries.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
