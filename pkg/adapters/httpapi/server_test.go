package httpapi_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	botflow "github.com/mistermakeithappen/jobconversiontracker-sub000"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/httpapi"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/memory"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

func newServer(t *testing.T) (*httptest.Server, *botflow.Engine) {
	t.Helper()

	graphs := memory.NewGraphStore()
	engine, err := botflow.New(botflow.WithGraphStore(graphs))
	require.NoError(t, err)

	g := graph.New("onboarding",
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart, Config: map[string]any{
				"welcome_message": "Hello {{name}}!",
			}},
			{ID: "done", Type: domain.NodeTypeEnd, Config: map[string]any{"message": "Bye."}},
		},
		[]domain.Connection{
			{ID: "e1", SourceNodeID: "start", TargetNodeID: "done", Type: domain.ConnectionStandard},
		},
	)
	require.NoError(t, engine.SaveNow(context.Background(), g))

	srv := httptest.NewServer(httpapi.NewHandler(engine))
	t.Cleanup(srv.Close)
	return srv, engine
}

type sseEvent struct {
	Name string
	Data domain.Event
}

func readSSE(t *testing.T, body *bufio.Scanner) []sseEvent {
	t.Helper()
	var events []sseEvent
	var name string
	for body.Scan() {
		line := body.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var ev domain.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			events = append(events, sseEvent{Name: name, Data: ev})
		}
	}
	return events
}

func TestServer_Health(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_TurnStreamsEvents(t *testing.T) {
	srv, _ := newServer(t)

	body, _ := json.Marshal(map[string]any{
		"session_id": "s1",
		"message":    "",
		"variables":  map[string]any{"name": "Ada"},
	})
	resp, err := http.Post(srv.URL+"/workflows/onboarding/turns", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readSSE(t, bufio.NewScanner(resp.Body))
	require.NotEmpty(t, events)

	var messages []string
	for _, ev := range events {
		assert.Equal(t, string(ev.Data.Type), ev.Name)
		if ev.Data.Type == domain.EventMessage {
			messages = append(messages, ev.Data.Content)
		}
	}
	assert.Equal(t, []string{"Hello Ada!", "Bye."}, messages)

	last := events[len(events)-1].Data
	assert.Equal(t, domain.EventComplete, last.Type)
	assert.Equal(t, domain.StatusTerminated, last.Status)
}

func TestServer_TurnUnknownWorkflow(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/workflows/nope/turns", "application/json",
		strings.NewReader(`{"session_id":"s1","message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_GetWorkflow(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/workflows/onboarding/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		ID    string        `json:"id"`
		Nodes []domain.Node `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "onboarding", doc.ID)
	assert.Len(t, doc.Nodes, 2)
}

func TestServer_PutWorkflowSync(t *testing.T) {
	srv, engine := newServer(t)

	payload := `{
		"name": "Edited",
		"nodes": [{"id": "start", "type": "start"}],
		"connections": []
	}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/workflows/edited/?sync=true", strings.NewReader(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	g, err := engine.LoadGraph(context.Background(), "edited")
	require.NoError(t, err)
	assert.Equal(t, "Edited", g.Name)
	require.Len(t, g.Nodes(), 1)
}

func TestServer_ValidateWorkflow(t *testing.T) {
	srv, engine := newServer(t)

	// A graph with no start node validates with problems.
	bad := graph.New("bad", []domain.Node{{ID: "x", Type: domain.NodeTypeMessage}}, nil)
	require.NoError(t, engine.SaveNow(context.Background(), bad))

	resp, err := http.Get(srv.URL + "/workflows/bad/validate")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Valid    bool              `json:"valid"`
		Problems []json.RawMessage `json:"problems"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Valid)
	assert.NotEmpty(t, out.Problems)
}
