package domain

import "time"

// EventType defines the category of a lifecycle event.
type EventType string

const (
	// EventNodeExecution announces that a node is being entered.
	EventNodeExecution EventType = "node_execution"
	// EventMessage carries outbound conversational content.
	EventMessage EventType = "message"
	// EventVariableUpdate reports a variable mutation.
	EventVariableUpdate EventType = "variable_update"
	// EventBackendLog carries observability detail (action results and the
	// like) not meant for the end user.
	EventBackendLog EventType = "backend_log"
	// EventError reports a turn-level failure. Terminal.
	EventError EventType = "error"
	// EventComplete marks the end of a turn. Terminal.
	EventComplete EventType = "complete"
)

// Event is one entry in the ordered per-turn lifecycle stream. Exactly the
// fields relevant to its Type are populated.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// node_execution
	NodeID   string `json:"node_id,omitempty"`
	NodeName string `json:"node_name,omitempty"`

	// message and backend_log
	Content string `json:"content,omitempty"`

	// variable_update
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`

	// backend_log structured payload
	Data any `json:"data,omitempty"`

	// error
	Message string `json:"message,omitempty"`

	// complete: final variables snapshot and session status
	Variables map[string]any `json:"variables,omitempty"`
	Status    SessionStatus  `json:"status,omitempty"`
	// SaveHistory signals that the conversation history should be persisted,
	// set when an end node requests it.
	SaveHistory bool `json:"save_history,omitempty"`
}

func newEvent(t EventType) Event {
	return Event{Type: t, Timestamp: time.Now().UTC()}
}

// NodeExecutionEvent builds a node_execution event.
func NodeExecutionEvent(nodeID, nodeName string) Event {
	ev := newEvent(EventNodeExecution)
	ev.NodeID = nodeID
	ev.NodeName = nodeName
	return ev
}

// MessageEvent builds a message event.
func MessageEvent(content, nodeID string) Event {
	ev := newEvent(EventMessage)
	ev.Content = content
	ev.NodeID = nodeID
	return ev
}

// VariableUpdateEvent builds a variable_update event.
func VariableUpdateEvent(name string, value any) Event {
	ev := newEvent(EventVariableUpdate)
	ev.Name = name
	ev.Value = value
	return ev
}

// BackendLogEvent builds a backend_log event.
func BackendLogEvent(content string, data any) Event {
	ev := newEvent(EventBackendLog)
	ev.Content = content
	ev.Data = data
	return ev
}

// ErrorEvent builds an error event.
func ErrorEvent(message string) Event {
	ev := newEvent(EventError)
	ev.Message = message
	return ev
}

// CompleteEvent builds a complete event carrying the final variables snapshot.
func CompleteEvent(variables map[string]any, status SessionStatus, saveHistory bool) Event {
	ev := newEvent(EventComplete)
	ev.Variables = variables
	ev.Status = status
	ev.SaveHistory = saveHistory
	return ev
}

// Terminal reports whether the event closes the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
