package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/eval"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// stepResult tells the walk loop what to do after a node handler ran:
// advance along next, suspend at the current node, or terminate the session.
type stepResult struct {
	next        *domain.Connection
	stay        bool
	terminate   bool
	saveHistory bool
}

func advance(edge *domain.Connection) stepResult { return stepResult{next: edge} }

func staySuspended() stepResult { return stepResult{stay: true} }

// dispatch selects the handler for the node's type. The closed variant set
// keeps this a plain switch; unknown types suspend the session defensively.
func (e *Engine) dispatch(ctx context.Context, ts *turnState, node *domain.Node) (stepResult, error) {
	switch node.Type {
	case domain.NodeTypeStart:
		return e.handleStart(ts, node)
	case domain.NodeTypeMessage:
		return e.handleMessage(ts, node)
	case domain.NodeTypeAI:
		return e.handleAI(ctx, ts, node)
	case domain.NodeTypeBookAppointment:
		return e.handleBooking(ctx, ts, node)
	case domain.NodeTypeVariable:
		return e.handleVariable(ts, node)
	case domain.NodeTypeAction:
		return e.handleAction(ctx, ts, node)
	case domain.NodeTypeCondition:
		return e.handleCondition(ts, node)
	case domain.NodeTypeMilestone:
		return e.handleMilestone(ctx, ts, node)
	case domain.NodeTypeEnd:
		return e.handleEnd(ts, node)
	default:
		e.logger.Warn("unknown node type, suspending", "node", node.ID, "type", node.Type)
		return staySuspended(), nil
	}
}

// followStandard resolves the single standard outgoing edge. A node with no
// outgoing edge suspends the session instead of failing the turn.
func (e *Engine) followStandard(ts *turnState, node *domain.Node) stepResult {
	if edge, ok := ts.graph.StandardEdge(node.ID); ok {
		return advance(edge)
	}
	e.logger.Debug("node has no standard edge, suspending", "node", node.ID)
	return staySuspended()
}

func (e *Engine) handleStart(ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.StartConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if cfg.WelcomeMessage != "" && !cfg.SkipWelcome {
		if err := e.say(ts, node, cfg.WelcomeMessage); err != nil {
			return stepResult{}, err
		}
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleMessage(ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.MessageConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if err := e.say(ts, node, cfg.Text); err != nil {
		return stepResult{}, err
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleAI(ctx context.Context, ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.AIConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if e.generator == nil {
		return stepResult{}, &evaluationFailure{cause: errors.New("no text generator configured")}
	}

	req := ports.GenerateRequest{
		SystemPrompt: ts.vars.Interpolate(cfg.SystemPrompt),
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		UserMessage:  ts.message,
	}
	if cfg.IncludeHistory {
		req.History = ts.session.History
	}
	text, err := e.generator.Generate(ctx, req)
	if err != nil {
		return stepResult{}, &evaluationFailure{cause: err}
	}
	if err := e.say(ts, node, text); err != nil {
		return stepResult{}, err
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleBooking(ctx context.Context, ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.BookingConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}

	booked := false
	if e.executor != nil {
		booking, err := e.executor.CreateBooking(ctx, ts.vars, cfg.CalendarID)
		if err != nil {
			e.emit(ts, domain.BackendLogEvent(fmt.Sprintf("booking failed: %v", err), nil))
		} else {
			booked = true
			ts.vars.Set("booking_id", booking.ID)
			e.emit(ts, domain.BackendLogEvent("booking created", booking))
		}
	}
	if cfg.ConfirmationMessage != "" {
		if err := e.say(ts, node, cfg.ConfirmationMessage); err != nil {
			return stepResult{}, err
		}
	}

	if booked {
		if edge, ok := ts.graph.ConditionalEdge(node.ID, domain.BranchBooked); ok {
			return advance(edge), nil
		}
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleVariable(ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.VariableConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	value := cfg.Value
	if s, ok := value.(string); ok {
		value = ts.vars.Interpolate(s)
	}
	ts.vars.Set(cfg.Name, value)
	if err := ts.sink.Emit(domain.VariableUpdateEvent(cfg.Name, value)); err != nil {
		return stepResult{}, err
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleAction(ctx context.Context, ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.ActionNodeConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if e.executor != nil && len(cfg.Actions) > 0 {
		results := e.executor.Execute(ctx, cfg.Actions, ts.vars, func(ev domain.Event) {
			e.emit(ts, ev)
		})
		for _, r := range results {
			status := "success"
			if !r.Success {
				status = "failure"
			}
			e.metrics.ActionsTotal.WithLabelValues(string(r.Type), status).Inc()
		}
	}
	return e.followStandard(ts, node), nil
}

func (e *Engine) handleCondition(ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.ConditionConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	branch := eval.Branch(cfg, ts.vars)
	e.emit(ts, domain.BackendLogEvent(fmt.Sprintf("condition resolved to branch %q", branch), nil))

	edge, stay := eval.SelectConditionEdge(ts.graph, node.ID, branch)
	if stay {
		return staySuspended(), nil
	}
	return advance(edge), nil
}

func (e *Engine) handleMilestone(ctx context.Context, ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.MilestoneConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if e.judge == nil {
		return stepResult{}, &evaluationFailure{cause: errors.New("no goal judge configured")}
	}

	verdict, err := e.judge.EvaluateGoal(ctx, ports.GoalRequest{
		GoalDescription:   ts.vars.Interpolate(cfg.GoalDescription),
		ExtraInstructions: ts.vars.Interpolate(cfg.ExtraInstructions),
		History:           ts.session.History,
		PossibleOutcomes:  cfg.PossibleOutcomes,
	})
	if err != nil {
		return stepResult{}, &evaluationFailure{cause: err}
	}
	e.emit(ts, domain.BackendLogEvent(fmt.Sprintf("goal judged %s %s", verdict.Result, verdict.Outcome), verdict))

	edge, stay := eval.SelectGoalEdge(ts.graph, node.ID, verdict)
	if stay {
		return staySuspended(), nil
	}
	return advance(edge), nil
}

func (e *Engine) handleEnd(ts *turnState, node *domain.Node) (stepResult, error) {
	var cfg domain.EndConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return stepResult{}, err
	}
	if cfg.Message != "" {
		if err := e.say(ts, node, cfg.Message); err != nil {
			return stepResult{}, err
		}
	}
	return stepResult{terminate: true, saveHistory: cfg.SaveHistory}, nil
}

// say interpolates and emits outbound conversational content, recording it in
// the session history for later judge and ai calls.
func (e *Engine) say(ts *turnState, node *domain.Node, text string) error {
	content := ts.vars.Interpolate(text)
	ts.session.Record(domain.RoleBot, content)
	return ts.sink.Emit(domain.MessageEvent(content, node.ID))
}

// emit sends a non-critical event, tolerating observer disconnects: the walk
// loop notices cancellation on the next critical emit or hop.
func (e *Engine) emit(ts *turnState, ev domain.Event) {
	if err := ts.sink.Emit(ev); err != nil {
		e.logger.Debug("observer gone, event dropped", "type", ev.Type)
	}
}
