// Package session orchestrates safe concurrent access to stored conversation
// sessions. A per-session mutex with reference counting serializes turns
// within one process; an optional distributed locker extends the guarantee
// across replicas.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc
}

// distributedLockTTL caps how long a replica may hold a session lock.
const distributedLockTTL = 30 * time.Second

// Manager mediates all session store access. Lock entries are garbage
// collected by reference counting once the last holder releases them.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock runs fn while holding the session's local mutex and, when
// configured, the distributed lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	entry := m.acquire(sessionID)
	defer m.release(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, distributedLockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock for session %s: %w", sessionID, err)
		}
		entry.unlock = unlock
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock", "session", sessionID, "error", err)
			}
			entry.unlock = nil
		}()
	}

	return fn(ctx)
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sess, err
}

// LoadOrStart loads a session, creating and persisting a fresh one positioned
// at startNodeID when none exists yet.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID, workflowID, startNodeID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if err != domain.ErrSessionNotFound {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		sess = domain.NewSession(sessionID, startNodeID)
		sess.WorkflowID = workflowID
		if err := m.store.Save(ctx, sess); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sess *domain.Session) error {
	return m.WithLock(ctx, sess.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, sess)
	})
}

// Delete removes the session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List returns the stored session IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
