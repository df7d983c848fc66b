// Package stream provides the ordered per-turn event channel between the
// execution engine (producer) and a single observer (consumer). Events are
// delivered in production order, never reordered or dropped, and the stream
// closes after the terminal complete or error event.
package stream

import (
	"context"
	"sync"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// defaultBuffer absorbs short bursts without blocking the engine while the
// observer catches up.
const defaultBuffer = 32

// Stream is a single-producer, single-observer event channel.
type Stream struct {
	ctx context.Context
	ch  chan domain.Event

	mu     sync.Mutex
	closed bool
}

// Option configures a Stream.
type Option func(*config)

type config struct {
	buffer int
}

// WithBuffer overrides the channel buffer size.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// New creates a stream bound to the observer's context. Cancelling the
// context (observer disconnect) unblocks any pending Emit.
func New(ctx context.Context, opts ...Option) *Stream {
	cfg := config{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Stream{
		ctx: ctx,
		ch:  make(chan domain.Event, cfg.buffer),
	}
}

// Events returns the receive side for the observer. The channel is closed
// after the terminal event, or when the producer abandons the turn.
func (s *Stream) Events() <-chan domain.Event {
	return s.ch
}

// Emit delivers an event in order. It blocks when the buffer is full rather
// than dropping, and returns the context error once the observer is gone so
// the engine stops producing. Emitting a terminal event closes the stream.
func (s *Stream) Emit(ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return context.Canceled
	}

	select {
	case s.ch <- ev:
	case <-s.ctx.Done():
		s.closeLocked()
		return s.ctx.Err()
	}

	if ev.Terminal() {
		s.closeLocked()
	}
	return nil
}

// Close closes the stream without a terminal event. Used when the producer
// abandons the turn (e.g., cancellation before any event could be emitted).
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Stream) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
