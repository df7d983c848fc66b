package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

func linear() *Graph {
	return New("wf",
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "msg", Type: domain.NodeTypeMessage},
			{ID: "end", Type: domain.NodeTypeEnd},
		},
		[]domain.Connection{
			{ID: "e1", SourceNodeID: "start", TargetNodeID: "msg", Type: domain.ConnectionStandard},
			{ID: "e2", SourceNodeID: "msg", TargetNodeID: "end", Type: domain.ConnectionStandard},
		},
	)
}

func TestGraph_Lookup(t *testing.T) {
	g := linear()

	n, ok := g.Node("msg")
	require.True(t, ok)
	assert.Equal(t, domain.NodeTypeMessage, n.Type)

	_, ok = g.Node("missing")
	assert.False(t, ok)

	out := g.Outgoing("start")
	require.Len(t, out, 1)
	assert.Equal(t, "msg", out[0].TargetNodeID)
	assert.Empty(t, g.Outgoing("end"))
}

func TestGraph_Start(t *testing.T) {
	t.Run("Unique", func(t *testing.T) {
		start, err := linear().Start()
		require.NoError(t, err)
		assert.Equal(t, "start", start.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		g := New("wf", []domain.Node{{ID: "a", Type: domain.NodeTypeMessage}}, nil)
		_, err := g.Start()
		assert.Error(t, err)
	})

	t.Run("Duplicate", func(t *testing.T) {
		g := New("wf", []domain.Node{
			{ID: "a", Type: domain.NodeTypeStart},
			{ID: "b", Type: domain.NodeTypeStart},
		}, nil)
		_, err := g.Start()
		assert.Error(t, err)
	})
}

func TestGraph_EdgeSelection(t *testing.T) {
	g := New("wf",
		[]domain.Node{
			{ID: "m", Type: domain.NodeTypeMilestone},
			{ID: "a", Type: domain.NodeTypeMessage},
			{ID: "b", Type: domain.NodeTypeMessage},
			{ID: "c", Type: domain.NodeTypeMessage},
		},
		[]domain.Connection{
			{ID: "e1", SourceNodeID: "m", TargetNodeID: "a", Type: domain.ConnectionConditional, Condition: "booked_call"},
			{ID: "e2", SourceNodeID: "m", TargetNodeID: "b", Type: domain.ConnectionGoalAchieved},
			{ID: "e3", SourceNodeID: "m", TargetNodeID: "c", Type: domain.ConnectionStandard},
		},
	)

	t.Run("ConditionalExactMatch", func(t *testing.T) {
		edge, ok := g.ConditionalEdge("m", "booked_call")
		require.True(t, ok)
		assert.Equal(t, "a", edge.TargetNodeID)
	})

	t.Run("ConditionalCaseSensitive", func(t *testing.T) {
		_, ok := g.ConditionalEdge("m", "Booked_Call")
		assert.False(t, ok)
	})

	t.Run("Typed", func(t *testing.T) {
		edge, ok := g.TypedEdge("m", domain.ConnectionGoalAchieved)
		require.True(t, ok)
		assert.Equal(t, "b", edge.TargetNodeID)

		_, ok = g.TypedEdge("m", domain.ConnectionGoalNotAchieved)
		assert.False(t, ok)
	})

	t.Run("Standard", func(t *testing.T) {
		edge, ok := g.StandardEdge("m")
		require.True(t, ok)
		assert.Equal(t, "c", edge.TargetNodeID)
	})
}
