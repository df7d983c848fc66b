package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres
// to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("SaveAndLoad", func(t *testing.T) {
		sess := domain.NewSession(sessionID, "start")
		sess.Variables["name"] = "Ada"
		sess.Variables["age"] = 42
		sess.Record(domain.RoleContact, "hello")

		require.NoError(t, store.Save(ctx, sess))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sess.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, sess.Status, loaded.Status)
		assert.Equal(t, "Ada", loaded.Variables["name"])
		// JSON round-trips may widen ints to float64; only require presence.
		assert.NotNil(t, loaded.Variables["age"])
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "hello", loaded.History[0].Content)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "start")))
		require.NoError(t, store.Delete(ctx, sessionID))
		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, "start")))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, "start")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunGraphStoreContract verifies that a GraphStore implementation adheres to
// the interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	workflowID := "contract-workflow-" + time.Now().Format("20060102150405")

	g := graph.New(workflowID,
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "end", Type: domain.NodeTypeEnd, Title: "Done", Config: map[string]any{"message": "bye"}},
		},
		[]domain.Connection{
			{ID: "e1", SourceNodeID: "start", TargetNodeID: "end", Type: domain.ConnectionStandard},
		},
	)

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, g))

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		assert.Equal(t, workflowID, loaded.WorkflowID)
		require.Len(t, loaded.Nodes(), 2)
		require.Len(t, loaded.Connections(), 1)

		end, ok := loaded.Node("end")
		require.True(t, ok)
		assert.Equal(t, "Done", end.Title)
		assert.Equal(t, "bye", end.Config["message"])

		edge, ok := loaded.StandardEdge("start")
		require.True(t, ok)
		assert.Equal(t, "end", edge.TargetNodeID)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		updated := graph.New(workflowID,
			[]domain.Node{{ID: "start", Type: domain.NodeTypeStart, Title: "Renamed"}},
			nil,
		)
		require.NoError(t, store.Save(ctx, updated))

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		require.Len(t, loaded.Nodes(), 1)
		start, ok := loaded.Node("start")
		require.True(t, ok)
		assert.Equal(t, "Renamed", start.Title)
	})
}
