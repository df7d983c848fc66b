// Package actions executes the side-effecting instructions attached to workflow
// nodes against the external CRM collaborator.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/variables"
)

// contactIDVariable is the session variable identifying the CRM contact.
const contactIDVariable = "contact_id"

// EmitFunc receives the backend_log event produced for each action result.
type EmitFunc func(domain.Event)

// Executor runs a node's action list in declaration order, best effort: a
// failed action is reported and the next one still runs.
type Executor struct {
	crm    ports.CRMClient
	logger *slog.Logger
}

// Option configures the Executor.
type Option func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor bound to a CRM collaborator.
func NewExecutor(crm ports.CRMClient, opts ...Option) *Executor {
	e := &Executor{
		crm:    crm,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every action, interpolating payloads against the variable
// store first. Results are returned in declaration order and also emitted as
// backend_log events when emit is non-nil.
func (e *Executor) Execute(ctx context.Context, acts []domain.Action, vars *variables.Store, emit EmitFunc) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(acts))
	for _, act := range acts {
		result := e.executeOne(ctx, act, vars)
		results = append(results, result)

		if result.Success {
			e.logger.Debug("action executed", "type", act.Type)
		} else {
			e.logger.Warn("action failed", "type", act.Type, "error", result.Error)
		}
		if emit != nil {
			emit(domain.BackendLogEvent(actionSummary(result), result))
		}
	}
	return results
}

func (e *Executor) executeOne(ctx context.Context, act domain.Action, vars *variables.Store) domain.ActionResult {
	result := domain.ActionResult{Type: act.Type}

	data := vars.InterpolateMap(act.Data)
	contactID := stringField(data, "contact_id")
	if contactID == "" {
		if raw, ok := vars.Get(contactIDVariable); ok {
			contactID = variables.Stringify(raw)
		}
	}

	var err error
	switch act.Type {
	case domain.ActionAddTag:
		err = e.crm.AddTag(ctx, contactID, stringField(data, "tag"))
	case domain.ActionRemoveTag:
		err = e.crm.RemoveTag(ctx, contactID, stringField(data, "tag"))
	case domain.ActionUpdateCustomField:
		err = e.crm.UpdateCustomField(ctx, ports.FieldUpdate{
			ContactID: contactID,
			Field:     stringField(data, "field"),
			Value:     stringField(data, "value"),
		})
	case domain.ActionSendEmail:
		err = e.crm.SendMessage(ctx, ports.OutboundMessage{
			ContactID: contactID,
			Channel:   ports.ChannelEmail,
			Subject:   stringField(data, "subject"),
			Body:      stringField(data, "body"),
		})
	case domain.ActionSendSMS:
		body := stringField(data, "message")
		if body == "" {
			body = stringField(data, "body")
		}
		err = e.crm.SendMessage(ctx, ports.OutboundMessage{
			ContactID: contactID,
			Channel:   ports.ChannelSMS,
			Body:      body,
		})
	case domain.ActionSendWebhook:
		err = e.crm.SendWebhook(ctx, ports.WebhookRequest{
			URL:     stringField(data, "url"),
			Payload: mapField(data, "payload"),
		})
	case domain.ActionCreateOpportunity:
		var id string
		id, err = e.crm.CreateOpportunity(ctx, ports.Opportunity{
			ContactID:  contactID,
			PipelineID: stringField(data, "pipeline_id"),
			StageID:    stringField(data, "stage_id"),
			Name:       stringField(data, "name"),
			Value:      floatField(data, "value"),
		})
		result.Output = id
	case domain.ActionCustom:
		// Custom actions carry opaque data for downstream automation; the
		// interpolated payload is passed through for the observer.
		result.Output = data
	default:
		err = fmt.Errorf("unknown action type %q", act.Type)
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}

func actionSummary(r domain.ActionResult) string {
	if r.Success {
		return fmt.Sprintf("action %s succeeded", r.Type)
	}
	return fmt.Sprintf("action %s failed: %s", r.Type, r.Error)
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key]; ok {
		return variables.Stringify(v)
	}
	return ""
}

func mapField(data map[string]any, key string) map[string]any {
	if data == nil {
		return nil
	}
	if v, ok := data[key].(map[string]any); ok {
		return v
	}
	return nil
}

func floatField(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return 0
}
