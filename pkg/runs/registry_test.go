package runs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	registry := NewRegistry()

	runCtx := registry.Register("run-1", "wf-1")
	assert.Equal(t, "run-1", runCtx.ID)
	assert.Equal(t, "wf-1", runCtx.WorkflowID)
	assert.False(t, runCtx.StartedAt.IsZero())
	assert.False(t, runCtx.Cancelled())

	got, ok := registry.Get("run-1")
	require.True(t, ok)
	assert.Same(t, runCtx, got)
	assert.True(t, registry.IsRunning("run-1"))
	assert.Equal(t, 1, registry.Count())

	registry.Remove("run-1")

	_, ok = registry.Get("run-1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	runCtx := registry.Register("run-1", "wf-1")

	assert.True(t, registry.Cancel("run-1"))
	assert.True(t, runCtx.Cancelled())

	assert.True(t, registry.Cancel("run-1"))
	assert.True(t, runCtx.Cancelled())
	assert.Equal(t, 1, registry.Count())

	assert.False(t, registry.Cancel("unknown"))
}

func TestRegistry_ReRegisterOverwrites(t *testing.T) {
	registry := NewRegistry()

	first := registry.Register("run-1", "wf-1")
	first.Cancel()

	second := registry.Register("run-1", "wf-2")
	assert.NotSame(t, first, second)
	assert.False(t, second.Cancelled())

	got, _ := registry.Get("run-1")
	assert.Equal(t, "wf-2", got.WorkflowID)
}

func TestRegistry_ListRunningSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("c", "wf")
	registry.Register("a", "wf")
	registry.Register("b", "wf")

	assert.Equal(t, []string{"a", "b", "c"}, registry.ListRunning())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			id := fmt.Sprintf("run-%d", i)
			registry.Register(id, "wf")
			registry.Cancel(id)
			_ = registry.ListRunning()
			registry.Remove(id)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, registry.Count())
}
