package domain

import "time"

// SessionStatus defines the current mode of a conversation session.
type SessionStatus string

const (
	// StatusAwaitingInput means the session is paused at a node that needs a
	// new inbound message.
	StatusAwaitingInput SessionStatus = "awaiting_input"
	// StatusRunning means the engine is actively traversing nodes in a turn.
	StatusRunning SessionStatus = "running"
	// StatusTerminated means an end node was reached. The session may still be
	// queried but produces no further transitions.
	StatusTerminated SessionStatus = "terminated"
)

// Role tags a history entry as inbound or outbound.
type Role string

const (
	RoleContact Role = "contact"
	RoleBot     Role = "bot"
)

// HistoryEntry is one message exchanged during the conversation. Recent
// history is handed to the goal judge and to ai nodes.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// maxHistory bounds the stored conversation history per session.
const maxHistory = 50

// Session is one live conversation instance: a cursor into the graph plus the
// session-scoped variable state.
type Session struct {
	ID            string         `json:"id"`
	WorkflowID    string         `json:"workflow_id,omitempty"`
	CurrentNodeID string         `json:"current_node_id"`
	Status        SessionStatus  `json:"status"`
	Variables     map[string]any `json:"variables"`
	History       []HistoryEntry `json:"history,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewSession creates a clean session positioned at the given start node.
func NewSession(id, startNodeID string) *Session {
	return &Session{
		ID:            id,
		CurrentNodeID: startNodeID,
		Status:        StatusAwaitingInput,
		Variables:     make(map[string]any),
		UpdatedAt:     time.Now().UTC(),
	}
}

// Record appends a history entry, dropping the oldest entries beyond the cap.
func (s *Session) Record(role Role, content string) {
	s.History = append(s.History, HistoryEntry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Variables = make(map[string]any, len(s.Variables))
	for k, v := range s.Variables {
		next.Variables[k] = v
	}
	next.History = append([]HistoryEntry(nil), s.History...)
	return &next
}
