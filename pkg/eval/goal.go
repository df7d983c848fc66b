package eval

import (
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// SelectGoalEdge maps a milestone verdict to the outgoing edge to follow.
// Returns (nil, true) for the "stay" case: the milestone remains the current
// node and awaits another inbound message. Staying is deliberate policy for
// inconclusive judgments and unmatched outcomes, not a fallback bug.
//
// Tie-break order when several edges could structurally match: a conditional
// edge for the exact label wins over the typed goal edges, which win over the
// standard edge.
func SelectGoalEdge(g *graph.Graph, nodeID string, verdict ports.GoalVerdict) (*domain.Connection, bool) {
	switch verdict.Result {
	case ports.GoalOutcome:
		// Exact, case-sensitive label match.
		if edge, ok := g.ConditionalEdge(nodeID, verdict.Outcome); ok {
			return edge, false
		}
	case ports.GoalAchieved:
		if edge, ok := g.ConditionalEdge(nodeID, string(domain.ConnectionGoalAchieved)); ok {
			return edge, false
		}
		if edge, ok := g.TypedEdge(nodeID, domain.ConnectionGoalAchieved); ok {
			return edge, false
		}
	case ports.GoalNotAchieved:
		if edge, ok := g.ConditionalEdge(nodeID, string(domain.ConnectionGoalNotAchieved)); ok {
			return edge, false
		}
		if edge, ok := g.TypedEdge(nodeID, domain.ConnectionGoalNotAchieved); ok {
			return edge, false
		}
	case ports.GoalInconclusive:
		return nil, true
	}

	if edge, ok := g.StandardEdge(nodeID); ok {
		return edge, false
	}
	return nil, true
}

// SelectConditionEdge maps a condition branch id to the outgoing edge to
// follow: the conditional edge carrying the branch label, else the "default"
// conditional edge, else the standard edge. Returns (nil, true) when no edge
// resolves, which suspends the node like a milestone stay.
func SelectConditionEdge(g *graph.Graph, nodeID, branch string) (*domain.Connection, bool) {
	if edge, ok := g.ConditionalEdge(nodeID, branch); ok {
		return edge, false
	}
	if branch != domain.BranchDefault {
		if edge, ok := g.ConditionalEdge(nodeID, domain.BranchDefault); ok {
			return edge, false
		}
	}
	if edge, ok := g.StandardEdge(nodeID); ok {
		return edge, false
	}
	return nil, true
}
