package botflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/metrics"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/runtime"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/actions"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/memory"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/autosave"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/session"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/stream"
)

// Engine is the high-level entry point: it wires the execution runtime to the
// graph and session stores, the AI and CRM collaborators, and the autosave
// coordinator, and exposes the per-turn streaming API.
type Engine struct {
	runtime  *runtime.Engine
	graphs   ports.GraphStore
	sessions *session.Manager
	saver    *autosave.Coordinator

	judge     ports.GoalJudge
	generator ports.TextGenerator
	crm       ports.CRMClient
	locker    ports.DistributedLocker

	sessionStore ports.SessionStore
	maxHops      int
	logger       *slog.Logger
	registry     *prometheus.Registry
}

// Option configures the Engine.
type Option func(*Engine)

// WithGraphStore injects the durable graph store. Defaults to in-memory.
func WithGraphStore(store ports.GraphStore) Option {
	return func(e *Engine) { e.graphs = store }
}

// WithSessionStore injects the session store. Defaults to in-memory.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) { e.sessionStore = store }
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithJudge injects the goal judgment collaborator for milestone nodes.
func WithJudge(judge ports.GoalJudge) Option {
	return func(e *Engine) { e.judge = judge }
}

// WithGenerator injects the text generation collaborator for ai nodes.
func WithGenerator(gen ports.TextGenerator) Option {
	return func(e *Engine) { e.generator = gen }
}

// WithCRM injects the CRM collaborator used by action and booking nodes.
func WithCRM(crm ports.CRMClient) Option {
	return func(e *Engine) { e.crm = crm }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxHops overrides the per-turn node-hop ceiling.
func WithMaxHops(n int) Option {
	return func(e *Engine) { e.maxHops = n }
}

// New initializes the engine. All collaborators are optional: missing stores
// default to in-memory, and a graph that never reaches a milestone, ai,
// action, or booking node runs fine without the corresponding collaborator.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		maxHops:  runtime.DefaultMaxHops,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.graphs == nil {
		e.graphs = memory.NewGraphStore()
	}
	if e.sessionStore == nil {
		e.sessionStore = memory.NewSessionStore()
	}
	if e.crm == nil {
		e.crm = unconfiguredCRM{}
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.sessionStore, sessionOpts...)

	m := metrics.New(e.registry)
	executor := actions.NewExecutor(e.crm, actions.WithLogger(e.logger))
	e.runtime = runtime.NewEngine(e.judge, e.generator, executor,
		runtime.WithMaxHops(e.maxHops),
		runtime.WithLogger(e.logger),
		runtime.WithMetrics(m),
	)

	e.saver = autosave.New(e.graphs, autosave.WithLogger(e.logger))

	return e, nil
}

// TurnRequest submits one inbound message to a session.
type TurnRequest struct {
	// WorkflowID selects the stored graph. Ignored when Graph is set.
	WorkflowID string
	// Graph optionally provides the graph directly, bypassing the store.
	Graph *graph.Graph
	// SessionID identifies the conversation. Empty creates a fresh session
	// with a generated ID.
	SessionID string
	// Message is the inbound chat message.
	Message string
	// Variables are merged into the session's variables before execution.
	Variables map[string]any
}

// Turn executes one turn and streams its lifecycle events. The returned
// channel is closed after the terminal complete or error event; the complete
// event carries the final variables snapshot. Cancelling ctx stops event
// delivery without rolling back side effects already performed.
func (e *Engine) Turn(ctx context.Context, req TurnRequest) (<-chan domain.Event, error) {
	g := req.Graph
	if g == nil {
		loaded, err := e.graphs.Load(ctx, req.WorkflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", req.WorkflowID, err)
		}
		g = loaded
	}

	start, err := g.Start()
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	st := stream.New(ctx)
	go func() {
		err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
			sess, err := e.loadOrStart(ctx, sessionID, g.WorkflowID, start.ID)
			if err != nil {
				return err
			}
			for k, v := range req.Variables {
				sess.Variables[k] = v
			}

			next, turnErr := e.runtime.Turn(ctx, g, sess, req.Message, st)
			// Persist progress even when the turn errored: the cursor stays
			// at the last successfully entered node. The save must outlive an
			// observer disconnect, or side effects already fired would re-run
			// on the next turn.
			if saveErr := e.sessionStore.Save(context.WithoutCancel(ctx), next); saveErr != nil {
				e.logger.Error("failed to persist session", "session", sessionID, "error", saveErr)
			}
			return turnErr
		})
		if err != nil {
			e.logger.Warn("turn ended with error", "session", sessionID, "error", err)
		}
		// The runtime already emitted the terminal event; Close is a no-op
		// then, and a safety net when locking itself failed.
		if err != nil {
			_ = st.Emit(domain.ErrorEvent(err.Error()))
		}
		st.Close()
	}()

	return st.Events(), nil
}

// loadOrStart mirrors session.Manager.LoadOrStart but runs inside the lock
// already held by Turn.
func (e *Engine) loadOrStart(ctx context.Context, sessionID, workflowID, startNodeID string) (*domain.Session, error) {
	sess, err := e.sessionStore.Load(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if err != domain.ErrSessionNotFound {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	sess = domain.NewSession(sessionID, startNodeID)
	sess.WorkflowID = workflowID
	return sess, nil
}

// Validate loads a workflow and reports its structural problems.
func (e *Engine) Validate(ctx context.Context, workflowID string) ([]graph.ValidationError, error) {
	g, err := e.graphs.Load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return g.Validate(), nil
}

// LoadGraph retrieves a stored workflow graph.
func (e *Engine) LoadGraph(ctx context.Context, workflowID string) (*graph.Graph, error) {
	return e.graphs.Load(ctx, workflowID)
}

// ScheduleSave registers an edited graph for a debounced commit.
func (e *Engine) ScheduleSave(g *graph.Graph) {
	e.saver.Schedule(g)
}

// SaveNow commits a graph immediately, respecting the single-flight rule.
func (e *Engine) SaveNow(ctx context.Context, g *graph.Graph) error {
	return e.saver.SaveNow(ctx, g)
}

// Sessions exposes the session manager for host-side administration.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// MetricsRegistry exposes the Prometheus registry for the HTTP surface.
func (e *Engine) MetricsRegistry() *prometheus.Registry {
	return e.registry
}

// Close flushes pending autosaves.
func (e *Engine) Close(ctx context.Context) error {
	return e.saver.Close(ctx)
}

// unconfiguredCRM fails every capability with a clear message. Action
// execution stays best-effort, so these failures surface as backend_log
// events instead of aborting turns.
type unconfiguredCRM struct{}

func (unconfiguredCRM) err() error { return fmt.Errorf("no crm client configured") }

func (u unconfiguredCRM) AddTag(context.Context, string, string) error    { return u.err() }
func (u unconfiguredCRM) RemoveTag(context.Context, string, string) error { return u.err() }
func (u unconfiguredCRM) UpdateCustomField(context.Context, ports.FieldUpdate) error {
	return u.err()
}
func (u unconfiguredCRM) SendMessage(context.Context, ports.OutboundMessage) error { return u.err() }
func (u unconfiguredCRM) SendWebhook(context.Context, ports.WebhookRequest) error  { return u.err() }
func (u unconfiguredCRM) CreateOpportunity(context.Context, ports.Opportunity) (string, error) {
	return "", u.err()
}
func (u unconfiguredCRM) CreateBooking(context.Context, ports.BookingRequest) (*ports.Booking, error) {
	return nil, u.err()
}
