package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// graphDoc is the JSON persistence shape of a workflow graph.
type graphDoc struct {
	WorkflowID  string              `json:"workflow_id"`
	Name        string              `json:"name,omitempty"`
	Nodes       []domain.Node       `json:"nodes"`
	Connections []domain.Connection `json:"connections"`
}

// GraphStore implements ports.GraphStore using Redis.
type GraphStore struct {
	client *backend.Client
	prefix string
}

// NewGraphStoreFromClient creates a Redis graph store over an existing client.
func NewGraphStoreFromClient(client *backend.Client) *GraphStore {
	return &GraphStore{
		client: client,
		prefix: "botflow:workflow:",
	}
}

func (s *GraphStore) key(workflowID string) string {
	return s.prefix + workflowID
}

// Save commits the graph as a JSON document. Last write wins.
func (s *GraphStore) Save(ctx context.Context, g *graph.Graph) error {
	doc := graphDoc{
		WorkflowID:  g.WorkflowID,
		Name:        g.Name,
		Nodes:       g.Nodes(),
		Connections: g.Connections(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := s.client.Set(ctx, s.key(g.WorkflowID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save graph to redis: %w", err)
	}
	return nil
}

// Load retrieves and re-indexes the graph.
func (s *GraphStore) Load(ctx context.Context, workflowID string) (*graph.Graph, error) {
	val, err := s.client.Get(ctx, s.key(workflowID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get graph from redis: %w", err)
	}

	var doc graphDoc
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	g := graph.New(doc.WorkflowID, doc.Nodes, doc.Connections)
	g.Name = doc.Name
	return g, nil
}
