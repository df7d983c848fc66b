package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

func TestStream_DeliversInOrder(t *testing.T) {
	s := New(context.Background())

	require.NoError(t, s.Emit(domain.NodeExecutionEvent("n1", "First")))
	require.NoError(t, s.Emit(domain.MessageEvent("hello", "n1")))
	require.NoError(t, s.Emit(domain.CompleteEvent(nil, domain.StatusAwaitingInput, false)))

	var got []domain.EventType
	for ev := range s.Events() {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventNodeExecution,
		domain.EventMessage,
		domain.EventComplete,
	}, got)
}

func TestStream_ClosesOnTerminalEvent(t *testing.T) {
	s := New(context.Background())
	require.NoError(t, s.Emit(domain.ErrorEvent("boom")))

	// A post-terminal emit is rejected without panicking.
	err := s.Emit(domain.MessageEvent("late", "n1"))
	assert.Error(t, err)

	ev, ok := <-s.Events()
	require.True(t, ok)
	assert.Equal(t, domain.EventError, ev.Type)
	_, ok = <-s.Events()
	assert.False(t, ok)
}

func TestStream_ObserverDisconnectUnblocksEmit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, WithBuffer(1))

	require.NoError(t, s.Emit(domain.MessageEvent("one", "n1")))

	done := make(chan error, 1)
	go func() {
		// Buffer is full and nobody reads; this blocks until cancel.
		done <- s.Emit(domain.MessageEvent("two", "n1"))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Emit did not unblock after cancellation")
	}
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	s := New(context.Background())
	s.Close()
	s.Close()

	_, ok := <-s.Events()
	assert.False(t, ok)
}
