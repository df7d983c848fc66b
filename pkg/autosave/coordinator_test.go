package autosave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// recordingStore counts saves and remembers the last graph written per
// workflow. An optional gate blocks Save until released, to simulate a slow
// backend.
type recordingStore struct {
	mu    sync.Mutex
	saves map[string]int
	last  map[string]*graph.Graph
	gate  chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		saves: make(map[string]int),
		last:  make(map[string]*graph.Graph),
	}
}

func (s *recordingStore) Save(_ context.Context, g *graph.Graph) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[g.WorkflowID]++
	s.last[g.WorkflowID] = g
	return nil
}

func (s *recordingStore) Load(_ context.Context, workflowID string) (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.last[workflowID]; ok {
		return g, nil
	}
	return nil, domain.ErrWorkflowNotFound
}

func (s *recordingStore) count(workflowID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[workflowID]
}

func editedGraph(name string) *graph.Graph {
	g := graph.New("wf", []domain.Node{{ID: "start", Type: domain.NodeTypeStart}}, nil)
	g.Name = name
	return g
}

func TestCoordinator_DebounceCoalescesEdits(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(30*time.Millisecond))
	defer c.Close(context.Background())

	// A burst of edits within the quiet period collapses into one save.
	c.Schedule(editedGraph("v1"))
	c.Schedule(editedGraph("v2"))
	c.Schedule(editedGraph("v3"))

	require.Eventually(t, func() bool {
		return store.count("wf") == 1
	}, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	name := store.last["wf"].Name
	store.mu.Unlock()
	assert.Equal(t, "v3", name, "last write wins")
}

func TestCoordinator_EditResetsQuietPeriod(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(50*time.Millisecond))
	defer c.Close(context.Background())

	c.Schedule(editedGraph("v1"))
	time.Sleep(30 * time.Millisecond)
	c.Schedule(editedGraph("v2"))
	time.Sleep(30 * time.Millisecond)
	// 60ms elapsed, but no quiet window has passed yet.
	assert.Equal(t, 0, store.count("wf"))

	require.Eventually(t, func() bool {
		return store.count("wf") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCoordinator_SaveNowBypassesDebounce(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(time.Hour))
	defer c.Close(context.Background())

	require.NoError(t, c.SaveNow(context.Background(), editedGraph("now")))
	assert.Equal(t, 1, store.count("wf"))
}

func TestCoordinator_EditDuringInflightSaveIsQueued(t *testing.T) {
	store := newRecordingStore()
	store.gate = make(chan struct{})
	c := New(store, WithDelay(10*time.Millisecond))
	defer c.Close(context.Background())

	// First edit commits and blocks inside Save.
	c.Schedule(editedGraph("v1"))
	time.Sleep(30 * time.Millisecond)

	// Edits arriving while the save is stuck must not open a second write.
	c.Schedule(editedGraph("v2"))
	c.Schedule(editedGraph("v3"))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, store.count("wf"))

	// Release the backend: the first save lands, then the queued edit.
	close(store.gate)
	require.Eventually(t, func() bool {
		return store.count("wf") == 2
	}, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	name := store.last["wf"].Name
	store.mu.Unlock()
	assert.Equal(t, "v3", name)
}

func TestCoordinator_CloseCommitsEditQueuedBehindInflightSave(t *testing.T) {
	store := newRecordingStore()
	store.gate = make(chan struct{})
	c := New(store, WithDelay(10*time.Millisecond))

	// First edit commits and blocks inside Save.
	c.Schedule(editedGraph("v1"))
	time.Sleep(30 * time.Millisecond)

	// This edit ends up queued behind the stuck save.
	c.Schedule(editedGraph("v2"))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 0, store.count("wf"))

	// Shutdown while the save is still stuck: release the backend once Close
	// is waiting on it.
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(store.gate)
	}()
	require.NoError(t, c.Close(context.Background()))

	assert.Equal(t, 2, store.count("wf"))
	store.mu.Lock()
	name := store.last["wf"].Name
	store.mu.Unlock()
	assert.Equal(t, "v2", name, "edit queued behind the in-flight save must survive shutdown")
}

func TestCoordinator_IndependentWorkflows(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(20*time.Millisecond))
	defer c.Close(context.Background())

	a := graph.New("wf-a", []domain.Node{{ID: "start", Type: domain.NodeTypeStart}}, nil)
	b := graph.New("wf-b", []domain.Node{{ID: "start", Type: domain.NodeTypeStart}}, nil)
	c.Schedule(a)
	c.Schedule(b)

	require.Eventually(t, func() bool {
		return store.count("wf-a") == 1 && store.count("wf-b") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCoordinator_FlushCommitsPending(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(time.Hour))

	c.Schedule(editedGraph("pending"))
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 1, store.count("wf"))
}

func TestCoordinator_CloseRejectsNewEdits(t *testing.T) {
	store := newRecordingStore()
	c := New(store, WithDelay(10*time.Millisecond))
	require.NoError(t, c.Close(context.Background()))

	c.Schedule(editedGraph("late"))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, store.count("wf"))
}
