package ports

import (
	"context"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// SessionStore persists conversation sessions, enabling stop-and-resume
// execution across turns and replicas.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session. Returns domain.ErrSessionNotFound if the
	// session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// GraphStore is the durable workflow graph storage written by the editor and
// read by the engine.
type GraphStore interface {
	// Load retrieves a workflow graph. Returns domain.ErrWorkflowNotFound if
	// the workflow does not exist.
	Load(ctx context.Context, workflowID string) (*graph.Graph, error)

	// Save commits a workflow graph. Last write wins; conflict resolution
	// against concurrent external edits is out of scope.
	Save(ctx context.Context, g *graph.Graph) error
}
