package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeCompleted_JSONSerialization(t *testing.T) {
	original := &NodeCompleted{
		BaseEvent:  NewBaseEvent(NodeCompletedEvent, "run-1", "wf-1"),
		NodeID:     "fetch",
		Outputs:    map[string]any{"status": 200.0},
		DurationMs: 12,
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"execution.node.completed"`)
	assert.Contains(t, string(jsonData), `"run_id":"run-1"`)
	assert.Contains(t, string(jsonData), `"duration_ms":12`)

	decoded, ok := New(NodeCompletedEvent)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(jsonData, decoded))

	event := decoded.(*NodeCompleted)
	assert.Equal(t, original.NodeID, event.NodeID)
	assert.Equal(t, original.Outputs, event.Outputs)
	assert.Equal(t, "run-1", event.Key())
}

func TestExecutionProgress_OmitsMissingCurrentNode(t *testing.T) {
	jsonData, err := json.Marshal(ExecutionProgress{
		BaseEvent: NewBaseEvent(ExecutionProgressEvent, "run-1", "wf-1"),
		Completed: 1,
		Total:     3,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), "current_node")
}

func TestNew_CoversEveryType(t *testing.T) {
	types := []EventType{
		ExecutionStartedEvent,
		NodeStartedEvent,
		NodeCompletedEvent,
		NodeFailedEvent,
		ExecutionProgressEvent,
		ExecutionCompletedEvent,
		ExecutionFailedEvent,
		ExecutionCancelledEvent,
	}

	for _, eventType := range types {
		event, ok := New(eventType)
		require.True(t, ok, eventType)

		typed, ok := event.(interface{ GetType() EventType })
		require.True(t, ok)
		assert.Equal(t, eventType, typed.GetType())
	}

	_, ok := New("unknown")
	assert.False(t, ok)
}
