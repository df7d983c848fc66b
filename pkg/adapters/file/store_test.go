package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/file"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

const sampleYAML = `
id: onboarding
name: Onboarding flow
nodes:
  - id: start
    type: start
    config:
      welcome_message: "Hi {{name}}!"
  - id: check
    type: condition
    config:
      field: age
      operator: greater
      value: "18"
  - id: done
    type: end
connections:
  - id: e1
    source: start
    target: check
    type: standard
  - id: e2
    source: check
    target: done
    type: conditional
    condition: "true"
`

func TestFileStore_Contract(t *testing.T) {
	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	ports.RunGraphStoreContract(t, store)
}

func TestParse(t *testing.T) {
	g, err := file.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "onboarding", g.WorkflowID)
	assert.Equal(t, "Onboarding flow", g.Name)
	require.Len(t, g.Nodes(), 3)

	start, ok := g.Node("start")
	require.True(t, ok)
	assert.Equal(t, domain.NodeTypeStart, start.Type)
	assert.Equal(t, "Hi {{name}}!", start.Config["welcome_message"])

	edge, ok := g.ConditionalEdge("check", "true")
	require.True(t, ok)
	assert.Equal(t, "done", edge.TargetNodeID)

	assert.Empty(t, g.Validate())
}

func TestParse_Malformed(t *testing.T) {
	_, err := file.Parse([]byte("nodes: {not: [valid"))
	assert.Error(t, err)
}

func TestLoadFile_DerivesIDFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales-flow.yaml")

	noID := `
nodes:
  - id: start
    type: start
`
	require.NoError(t, os.WriteFile(path, []byte(noID), 0o644))

	g, err := file.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sales-flow", g.WorkflowID)
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestStore_RoundTripPreservesConfig(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	g, err := file.Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, g))

	loaded, err := store.Load(ctx, "onboarding")
	require.NoError(t, err)
	assert.Equal(t, "Onboarding flow", loaded.Name)

	check, ok := loaded.Node("check")
	require.True(t, ok)
	assert.Equal(t, "age", check.Config["field"])

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "onboarding.yaml", entries[0].Name())
}
