// Package graph provides the workflow graph aggregate: node/edge lookup
// indices and structural validation. All queries are pure; validation reports
// problems instead of failing traversal.
package graph

import (
	"fmt"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// Graph is an immutable view over a workflow's nodes and connections with
// lookup indices built once at construction.
type Graph struct {
	WorkflowID string
	Name       string

	nodes       []domain.Node
	connections []domain.Connection

	byID  map[string]*domain.Node
	bySrc map[string][]domain.Connection
}

// New builds a Graph and its indices. Declaration order of connections is
// preserved in Outgoing, which matters for branch tie-breaks.
func New(workflowID string, nodes []domain.Node, connections []domain.Connection) *Graph {
	g := &Graph{
		WorkflowID:  workflowID,
		nodes:       nodes,
		connections: connections,
		byID:        make(map[string]*domain.Node, len(nodes)),
		bySrc:       make(map[string][]domain.Connection, len(nodes)),
	}
	for i := range g.nodes {
		g.byID[g.nodes[i].ID] = &g.nodes[i]
	}
	for _, c := range connections {
		g.bySrc[c.SourceNodeID] = append(g.bySrc[c.SourceNodeID], c)
	}
	return g
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []domain.Node { return g.nodes }

// Connections returns all connections in declaration order.
func (g *Graph) Connections() []domain.Connection { return g.connections }

// Node looks up a node by ID.
func (g *Graph) Node(id string) (*domain.Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Outgoing returns the ordered outgoing connections of a node.
func (g *Graph) Outgoing(nodeID string) []domain.Connection {
	return g.bySrc[nodeID]
}

// Start returns the unique start node, or an error if it is missing or
// duplicated.
func (g *Graph) Start() (*domain.Node, error) {
	var start *domain.Node
	for i := range g.nodes {
		if g.nodes[i].Type != domain.NodeTypeStart {
			continue
		}
		if start != nil {
			return nil, &domain.GraphStateError{Reason: "multiple start nodes"}
		}
		start = &g.nodes[i]
	}
	if start == nil {
		return nil, &domain.GraphStateError{Reason: "no start node"}
	}
	return start, nil
}

// StandardEdge returns the single standard outgoing edge of a node, if any.
func (g *Graph) StandardEdge(nodeID string) (*domain.Connection, bool) {
	for _, c := range g.bySrc[nodeID] {
		if c.Type == domain.ConnectionStandard {
			return &c, true
		}
	}
	return nil, false
}

// ConditionalEdge returns the conditional outgoing edge matching the given
// branch label. Matching is exact and case-sensitive.
func (g *Graph) ConditionalEdge(nodeID, branch string) (*domain.Connection, bool) {
	for _, c := range g.bySrc[nodeID] {
		if c.Type == domain.ConnectionConditional && c.Condition == branch {
			return &c, true
		}
	}
	return nil, false
}

// TypedEdge returns the first outgoing edge of the given connection type.
func (g *Graph) TypedEdge(nodeID string, t domain.ConnectionType) (*domain.Connection, bool) {
	for _, c := range g.bySrc[nodeID] {
		if c.Type == t {
			return &c, true
		}
	}
	return nil, false
}

// String implements fmt.Stringer for logging.
func (g *Graph) String() string {
	return fmt.Sprintf("graph %s (%d nodes, %d connections)", g.WorkflowID, len(g.nodes), len(g.connections))
}
