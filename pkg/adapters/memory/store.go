// Package memory provides in-memory implementations of the session and graph
// stores, suitable for tests and single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string]*domain.Session)}
}

// Save stores a deep copy so later caller mutations cannot leak in.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	copied := sess.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = copied
	return nil
}

// Load returns a copy of the stored session.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// GraphStore implements ports.GraphStore in memory.
type GraphStore struct {
	mu   sync.RWMutex
	data map[string]*graph.Graph
}

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{data: make(map[string]*graph.Graph)}
}

// Save stores the graph. Last write wins.
func (s *GraphStore) Save(ctx context.Context, g *graph.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[g.WorkflowID] = g
	return nil
}

// Load returns the stored graph.
func (s *GraphStore) Load(ctx context.Context, workflowID string) (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.data[workflowID]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return g, nil
}
