package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrWorkflowNotFound is returned when a workflow ID cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// GraphStateError means the session cursor or the graph structure is unusable.
// Fatal to the turn: the session is left untouched.
type GraphStateError struct {
	NodeID string
	Reason string
}

func (e *GraphStateError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("graph state error at node %q: %s", e.NodeID, e.Reason)
	}
	return "graph state error: " + e.Reason
}

// LoopGuardError means the per-turn node-hop ceiling was exceeded, which
// protects against cyclic graphs with no input-requiring node.
type LoopGuardError struct {
	Limit  int
	NodeID string
}

func (e *LoopGuardError) Error() string {
	return fmt.Sprintf("loop guard exceeded after %d hops at node %q", e.Limit, e.NodeID)
}
