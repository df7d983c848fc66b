package graph

import (
	"fmt"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// ValidationError describes one structural problem found in a graph.
type ValidationError struct {
	Code   string `json:"code"`
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
	Detail string `json:"detail"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Validation error codes.
const (
	CodeNoStart         = "no_start"
	CodeMultipleStart   = "multiple_start"
	CodeUnknownNodeType = "unknown_node_type"
	CodeDanglingEdge    = "dangling_edge"
	CodeDuplicateEdge   = "duplicate_edge"
	CodeMissingBranch   = "missing_branch"
)

// Validate checks structural invariants and returns every problem found.
// It never mutates the graph and never panics on malformed input; an empty
// result means the graph is safe to execute.
func (g *Graph) Validate() []ValidationError {
	var errs []ValidationError

	starts := 0
	for _, n := range g.nodes {
		if n.Type == domain.NodeTypeStart {
			starts++
		}
		if !n.Type.Valid() {
			errs = append(errs, ValidationError{
				Code:   CodeUnknownNodeType,
				NodeID: n.ID,
				Detail: fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type),
			})
		}
	}
	switch {
	case starts == 0:
		errs = append(errs, ValidationError{Code: CodeNoStart, Detail: "graph has no start node"})
	case starts > 1:
		errs = append(errs, ValidationError{Code: CodeMultipleStart, Detail: fmt.Sprintf("graph has %d start nodes", starts)})
	}

	for _, c := range g.connections {
		if _, ok := g.byID[c.SourceNodeID]; !ok {
			errs = append(errs, ValidationError{
				Code:   CodeDanglingEdge,
				EdgeID: c.ID,
				Detail: fmt.Sprintf("edge %q references missing source node %q", c.ID, c.SourceNodeID),
			})
		}
		if _, ok := g.byID[c.TargetNodeID]; !ok {
			errs = append(errs, ValidationError{
				Code:   CodeDanglingEdge,
				EdgeID: c.ID,
				Detail: fmt.Sprintf("edge %q references missing target node %q", c.ID, c.TargetNodeID),
			})
		}
	}

	for _, n := range g.nodes {
		errs = append(errs, g.validateOutgoing(&n)...)
	}

	return errs
}

// validateOutgoing enforces the per-node edge multiplicity invariants:
// at most one standard edge, at most one goal_achieved and one
// goal_not_achieved edge, and at most one conditional edge per branch label.
// It also checks that declared outcomes/conditions resolve to an edge or a
// default fallback.
func (g *Graph) validateOutgoing(n *domain.Node) []ValidationError {
	var errs []ValidationError

	seenType := make(map[domain.ConnectionType]string)
	seenBranch := make(map[string]string)
	for _, c := range g.bySrc[n.ID] {
		if c.Type == domain.ConnectionConditional {
			if prev, dup := seenBranch[c.Condition]; dup {
				errs = append(errs, ValidationError{
					Code:   CodeDuplicateEdge,
					NodeID: n.ID,
					EdgeID: c.ID,
					Detail: fmt.Sprintf("node %q has duplicate conditional edges %q and %q for branch %q", n.ID, prev, c.ID, c.Condition),
				})
			}
			seenBranch[c.Condition] = c.ID
			continue
		}
		if prev, dup := seenType[c.Type]; dup {
			errs = append(errs, ValidationError{
				Code:   CodeDuplicateEdge,
				NodeID: n.ID,
				EdgeID: c.ID,
				Detail: fmt.Sprintf("node %q has duplicate %s edges %q and %q", n.ID, c.Type, prev, c.ID),
			})
		}
		seenType[c.Type] = c.ID
	}

	hasFallback := func() bool {
		if _, ok := seenType[domain.ConnectionStandard]; ok {
			return true
		}
		_, ok := seenBranch[domain.BranchDefault]
		return ok
	}

	switch n.Type {
	case domain.NodeTypeCondition:
		var cfg domain.ConditionConfig
		if err := n.DecodeConfig(&cfg); err != nil {
			return errs
		}
		for _, cc := range cfg.Custom {
			if _, ok := seenBranch[cc.Label]; !ok && !hasFallback() {
				errs = append(errs, ValidationError{
					Code:   CodeMissingBranch,
					NodeID: n.ID,
					Detail: fmt.Sprintf("condition node %q declares branch %q with no matching edge and no default", n.ID, cc.Label),
				})
			}
		}
	case domain.NodeTypeMilestone:
		var cfg domain.MilestoneConfig
		if err := n.DecodeConfig(&cfg); err != nil {
			return errs
		}
		// A milestone with an unresolvable outcome legitimately stays on the
		// node, so a missing edge is only flagged when there is no fallback of
		// any kind.
		_, hasAchieved := seenType[domain.ConnectionGoalAchieved]
		_, hasNot := seenType[domain.ConnectionGoalNotAchieved]
		for _, outcome := range cfg.PossibleOutcomes {
			if _, ok := seenBranch[outcome]; !ok && !hasAchieved && !hasNot && !hasFallback() {
				errs = append(errs, ValidationError{
					Code:   CodeMissingBranch,
					NodeID: n.ID,
					Detail: fmt.Sprintf("milestone node %q declares outcome %q with no matching edge and no fallback", n.ID, outcome),
				})
			}
		}
	}

	return errs
}
