// Package runtime implements the execution engine: the per-session run loop
// that walks the workflow graph one inbound message at a time, dispatching on
// node type and emitting lifecycle events as it goes.
package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/metrics"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/actions"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/variables"
)

// DefaultMaxHops bounds node traversal per turn. A graph cycling through
// standard edges with no input-requiring node trips this guard instead of
// spinning forever.
const DefaultMaxHops = 50

// Sink receives lifecycle events in production order.
type Sink interface {
	Emit(domain.Event) error
}

// Engine walks a workflow graph for one session turn at a time. Node dispatch
// is strictly sequential within a turn; separate sessions may run turns
// concurrently since all mutable state is session-owned.
type Engine struct {
	judge     ports.GoalJudge
	generator ports.TextGenerator
	executor  *actions.Executor

	maxHops int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

// WithMaxHops overrides the per-turn node-hop ceiling.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an execution engine with its collaborators. judge and
// generator may be nil when the graph contains no milestone or ai nodes;
// hitting such a node without the collaborator suspends it like an
// inconclusive evaluation.
func NewEngine(judge ports.GoalJudge, generator ports.TextGenerator, executor *actions.Executor, opts ...Option) *Engine {
	e := &Engine{
		judge:     judge,
		generator: generator,
		executor:  executor,
		maxHops:   DefaultMaxHops,
		logger:    logging.NewNop(),
		metrics:   metrics.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turnState carries the mutable state threaded through one turn.
type turnState struct {
	graph   *graph.Graph
	session *domain.Session
	vars    *variables.Store
	sink    Sink
	message string
}

// Turn processes one inbound message for the session: resolves the current
// node, traverses the graph until a node requires new input, an end node, or
// the loop guard, and emits the ordered event stream. It returns the updated
// session clone; the input session is never mutated. The stream always
// terminates with a complete or error event.
func (e *Engine) Turn(ctx context.Context, g *graph.Graph, session *domain.Session, message string, sink Sink) (*domain.Session, error) {
	started := time.Now()
	next := session.Clone()

	outcome, err := e.runTurn(ctx, g, next, message, sink)
	e.metrics.Turns.WithLabelValues(outcome).Inc()
	e.metrics.TurnDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return next, err
	}
	return next, nil
}

func (e *Engine) runTurn(ctx context.Context, g *graph.Graph, sess *domain.Session, message string, sink Sink) (string, error) {
	if sess.Status == domain.StatusTerminated {
		// Terminated sessions may still be queried but never transition.
		_ = sink.Emit(domain.CompleteEvent(sess.Variables, domain.StatusTerminated, false))
		return "complete", nil
	}

	node, ok := g.Node(sess.CurrentNodeID)
	if !ok {
		stateErr := &domain.GraphStateError{NodeID: sess.CurrentNodeID, Reason: "current node not found in graph"}
		_ = sink.Emit(domain.ErrorEvent(stateErr.Error()))
		return "error", stateErr
	}

	if message != "" {
		sess.Record(domain.RoleContact, message)
	}
	sess.Status = domain.StatusRunning

	ts := &turnState{
		graph:   g,
		session: sess,
		vars:    variables.New(sess.Variables),
		sink:    sink,
		message: message,
	}

	outcome, err := e.walk(ctx, ts, node)

	sess.Variables = ts.vars.Snapshot()
	sess.UpdatedAt = time.Now().UTC()
	return outcome, err
}

// walk is the dispatch loop: emit node_execution, run the handler for the
// node's type, advance along the chosen edge, repeat. Edge resolution is the
// sole control-flow primitive.
func (e *Engine) walk(ctx context.Context, ts *turnState, node *domain.Node) (string, error) {
	sess := ts.session

	for hops := 0; ; hops++ {
		if hops >= e.maxHops {
			e.metrics.LoopGuardHits.Inc()
			guardErr := &domain.LoopGuardError{Limit: e.maxHops, NodeID: sess.CurrentNodeID}
			e.logger.Warn("loop guard exceeded", "session", sess.ID, "node", sess.CurrentNodeID, "limit", e.maxHops)
			sess.Status = domain.StatusAwaitingInput
			_ = ts.sink.Emit(domain.ErrorEvent(guardErr.Error()))
			return "error", guardErr
		}
		if err := ctx.Err(); err != nil {
			// Observer cancelled the turn. Stop emitting; partially executed
			// side effects are not rolled back.
			sess.Status = domain.StatusAwaitingInput
			return "cancelled", err
		}

		sess.CurrentNodeID = node.ID
		e.metrics.NodesExecuted.WithLabelValues(string(node.Type)).Inc()
		e.logger.Debug("executing node", "session", sess.ID, "node", node.ID, "type", node.Type)
		if err := ts.sink.Emit(domain.NodeExecutionEvent(node.ID, node.Name())); err != nil {
			sess.Status = domain.StatusAwaitingInput
			return "cancelled", err
		}

		step, err := e.dispatch(ctx, ts, node)
		if err != nil {
			// Evaluation failures are non-fatal to the session: the node is
			// re-entered on the next inbound message.
			sess.Status = domain.StatusAwaitingInput
			_ = ts.sink.Emit(domain.ErrorEvent(err.Error()))
			return "error", err
		}

		if step.terminate {
			sess.Status = domain.StatusTerminated
			_ = ts.sink.Emit(domain.CompleteEvent(ts.vars.Snapshot(), domain.StatusTerminated, step.saveHistory))
			return "complete", nil
		}
		if step.stay {
			sess.Status = domain.StatusAwaitingInput
			_ = ts.sink.Emit(domain.CompleteEvent(ts.vars.Snapshot(), domain.StatusAwaitingInput, false))
			return "complete", nil
		}

		target, ok := ts.graph.Node(step.next.TargetNodeID)
		if !ok {
			stateErr := &domain.GraphStateError{NodeID: step.next.TargetNodeID, Reason: "edge targets missing node"}
			sess.Status = domain.StatusAwaitingInput
			_ = ts.sink.Emit(domain.ErrorEvent(stateErr.Error()))
			return "error", stateErr
		}
		node = target
	}
}

// evaluationFailure wraps collaborator errors so callers can distinguish them
// from graph-state problems.
type evaluationFailure struct {
	cause error
}

func (e *evaluationFailure) Error() string {
	return "evaluation failed: " + e.cause.Error()
}

func (e *evaluationFailure) Unwrap() error { return e.cause }

// IsEvaluationFailure reports whether err came from the judgment or
// generation collaborator rather than the graph itself.
func IsEvaluationFailure(err error) bool {
	var ef *evaluationFailure
	return errors.As(err, &ef)
}
