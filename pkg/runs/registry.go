// Package runs tracks the workflow runs currently in flight and owns their
// cancellation switches.
package runs

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// RunContext is the in-memory state of one in-flight run. It is never persisted.
type RunContext struct {
	ID         string
	WorkflowID string
	StartedAt  time.Time

	cancelled atomic.Bool
}

// Cancel flips the run's cancellation switch. The run observes it before
// starting its next node; a node already running is not interrupted.
func (c *RunContext) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (c *RunContext) Cancelled() bool {
	return c.cancelled.Load()
}

// Registry is a concurrency safe table of in-flight runs. The lock is held
// only for map access.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*RunContext
}

func NewRegistry() *Registry {
	return &Registry{
		runs: make(map[string]*RunContext),
	}
}

// Register stores a fresh context for id, replacing any previous one.
func (r *Registry) Register(id, workflowID string) *RunContext {
	runCtx := &RunContext{
		ID:         id,
		WorkflowID: workflowID,
		StartedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.runs[id] = runCtx
	r.mu.Unlock()

	return runCtx
}

// Cancel requests cancellation of id and reports whether the run was known.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	runCtx, ok := r.runs[id]
	r.mu.Unlock()

	if !ok {
		return false
	}

	runCtx.Cancel()

	return true
}

// Remove drops the entry for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.runs, id)
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*RunContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, ok := r.runs[id]

	return runCtx, ok
}

// IsRunning reports whether id is registered.
func (r *Registry) IsRunning(id string) bool {
	_, ok := r.Get(id)

	return ok
}

// ListRunning returns the ids of all registered runs in sorted order.
func (r *Registry) ListRunning() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.runs))

	for id := range r.runs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Strings(ids)

	return ids
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.runs)
}
