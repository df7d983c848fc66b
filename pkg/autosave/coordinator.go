// Package autosave debounces and commits graph edits from the external editor
// into the durable graph store, guaranteeing at most one in-flight write per
// workflow.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// DefaultDelay is the quiet period after the last edit before a commit.
const DefaultDelay = 2 * time.Second

// entry is the single-slot pending write for one workflow.
type entry struct {
	timer    *time.Timer
	latest   *graph.Graph
	inflight bool
	queued   *graph.Graph
}

// Coordinator coalesces rapid successive Schedule calls into one commit per
// quiet period. A save in flight is never duplicated; an edit arriving
// mid-save is queued for the next commit. Last write wins.
type Coordinator struct {
	store       ports.GraphStore
	delay       time.Duration
	saveTimeout time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	wg      sync.WaitGroup
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithDelay overrides the debounce quiet period.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithSaveTimeout bounds each background commit.
func WithSaveTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.saveTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New creates a Coordinator committing to the given store.
func New(store ports.GraphStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		delay:       DefaultDelay,
		saveTimeout: 30 * time.Second,
		logger:      logging.NewNop(),
		entries:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schedule registers an edited graph for a debounced commit. Repeated calls
// within the quiet period coalesce into a single save of the latest graph.
func (c *Coordinator) Schedule(g *graph.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	ent, ok := c.entries[g.WorkflowID]
	if !ok {
		ent = &entry{}
		c.entries[g.WorkflowID] = ent
	}
	ent.latest = g

	if ent.timer != nil {
		ent.timer.Stop()
	}
	workflowID := g.WorkflowID
	ent.timer = time.AfterFunc(c.delay, func() {
		c.commit(workflowID)
	})
}

// SaveNow commits the graph immediately, bypassing the quiet period. If a
// save for the workflow is already in flight the graph is queued for the next
// commit instead of duplicating the write.
func (c *Coordinator) SaveNow(ctx context.Context, g *graph.Graph) error {
	c.mu.Lock()
	ent, ok := c.entries[g.WorkflowID]
	if !ok {
		ent = &entry{}
		c.entries[g.WorkflowID] = ent
	}
	if ent.timer != nil {
		ent.timer.Stop()
		ent.timer = nil
	}
	if ent.inflight {
		ent.queued = g
		c.mu.Unlock()
		return nil
	}
	ent.inflight = true
	ent.latest = nil
	c.mu.Unlock()

	err := c.store.Save(ctx, g)
	c.finish(g.WorkflowID)
	return err
}

// commit is the timer callback: takes the latest pending graph and writes it
// in the background, respecting the single-flight rule.
func (c *Coordinator) commit(workflowID string) {
	c.mu.Lock()
	ent, ok := c.entries[workflowID]
	if !ok || ent.latest == nil {
		c.mu.Unlock()
		return
	}
	if ent.inflight {
		// Will be picked up when the in-flight save finishes.
		ent.queued = ent.latest
		ent.latest = nil
		c.mu.Unlock()
		return
	}
	g := ent.latest
	ent.latest = nil
	ent.inflight = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
		defer cancel()
		err := c.store.Save(ctx, g)
		if err != nil {
			c.logger.Error("autosave failed", "workflow", workflowID, "error", err)
		} else {
			c.logger.Debug("autosave committed", "workflow", workflowID)
		}
		c.finish(workflowID)
	}()
}

// finish releases the in-flight slot and promotes any edit queued during the
// save back to the pending slot. The queued graph moves to latest directly
// rather than through Schedule, so it survives Close; after Close the timer is
// not re-armed and Flush picks the edit up instead.
func (c *Coordinator) finish(workflowID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[workflowID]
	if !ok {
		return
	}
	ent.inflight = false
	if ent.queued == nil {
		return
	}
	ent.latest = ent.queued
	ent.queued = nil
	if c.closed {
		return
	}
	if ent.timer != nil {
		ent.timer.Stop()
	}
	ent.timer = time.AfterFunc(c.delay, func() {
		c.commit(workflowID)
	})
}

// Flush synchronously commits every pending graph. An in-flight save may leave
// a queued edit behind while we wait, so the scan repeats until no entry has
// pending work. Meant for shutdown.
func (c *Coordinator) Flush(ctx context.Context) error {
	var firstErr error
	for {
		c.mu.Lock()
		var pending []*graph.Graph
		for _, ent := range c.entries {
			if ent.timer != nil {
				ent.timer.Stop()
				ent.timer = nil
			}
			if ent.latest != nil {
				pending = append(pending, ent.latest)
				ent.latest = nil
			}
		}
		c.mu.Unlock()

		for _, g := range pending {
			if err := c.store.Save(ctx, g); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		c.wg.Wait()

		c.mu.Lock()
		done := true
		for _, ent := range c.entries {
			if ent.inflight || ent.latest != nil || ent.queued != nil {
				done = false
				break
			}
		}
		c.mu.Unlock()
		if done {
			return firstErr
		}
	}
}

// Close stops all timers and waits for in-flight saves. Pending edits not yet
// committed are flushed with the given context.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.Flush(ctx)
}
