// Package httpapi exposes the engine over HTTP: a server-sent-events turn
// endpoint for chat clients and JSON endpoints for the graph editor.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	botflow "github.com/mistermakeithappen/jobconversiontracker-sub000"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// Server wires HTTP routes to the engine.
type Server struct {
	engine *botflow.Engine
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *botflow.Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(engine.MetricsRegistry(), promhttp.HandlerOpts{}))

	r.Route("/workflows/{workflowID}", func(r chi.Router) {
		r.Get("/", s.GetWorkflow)
		r.Put("/", s.PutWorkflow)
		r.Get("/validate", s.ValidateWorkflow)
		r.Post("/turns", s.Turn)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// workflowDoc is the editor's wire shape for a graph.
type workflowDoc struct {
	ID          string              `json:"id"`
	Name        string              `json:"name,omitempty"`
	Nodes       []domain.Node       `json:"nodes"`
	Connections []domain.Connection `json:"connections"`
}

// GetWorkflow handles GET /workflows/{workflowID}.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")

	g, err := s.engine.LoadGraph(r.Context(), workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			http.Error(w, "Workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("failed to load workflow", "workflow", workflowID, "error", err)
		return
	}

	writeJSON(w, workflowDoc{
		ID:          g.WorkflowID,
		Name:        g.Name,
		Nodes:       g.Nodes(),
		Connections: g.Connections(),
	})
}

// PutWorkflow handles PUT /workflows/{workflowID}. The edit is acknowledged
// immediately and committed through the debounced autosave coordinator, so
// rapid editor keystrokes coalesce into one write.
func (s *Server) PutWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")

	var doc workflowDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid workflow body", "error", err)
		return
	}

	g := graph.New(workflowID, doc.Nodes, doc.Connections)
	g.Name = doc.Name
	if r.URL.Query().Get("sync") == "true" {
		if err := s.engine.SaveNow(r.Context(), g); err != nil {
			http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
			s.logger.Error("failed to save workflow", "workflow", workflowID, "error", err)
			return
		}
	} else {
		s.engine.ScheduleSave(g)
	}

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "accepted"})
}

// ValidateWorkflow handles GET /workflows/{workflowID}/validate.
func (s *Server) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")

	problems, err := s.engine.Validate(r.Context(), workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			http.Error(w, "Workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Validate error: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// turnRequest is the body for POST /workflows/{workflowID}/turns.
type turnRequest struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Turn handles POST /workflows/{workflowID}/turns. Events for the turn are
// streamed as SSE in execution order; the stream ends after the terminal
// complete or error event.
func (s *Server) Turn(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")

	var body turnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid turn body", "error", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.engine.Turn(r.Context(), botflow.TurnRequest{
		WorkflowID: workflowID,
		SessionID:  body.SessionID,
		Message:    body.Message,
		Variables:  body.Variables,
	})
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			http.Error(w, "Workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Turn error: %v", err), http.StatusInternalServerError)
		s.logger.Error("turn failed to start", "workflow", workflowID, "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("failed to encode event", "type", ev.Type, "error", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
		flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
