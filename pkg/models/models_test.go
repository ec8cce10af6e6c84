package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requiredTag = "required"
	minTag      = "min"
)

func validWorkflow() *Workflow {
	return &Workflow{
		ID:   "wf-123",
		Name: "Summarize Order",
		Nodes: []*WorkflowNode{
			{ID: "start", Type: NodeTypeStart},
			{ID: "fetch", Type: NodeTypeHTTP, Config: map[string]any{"url": "https://example.com"}},
			{ID: "end", Type: NodeTypeEnd},
		},
		Connections: []*Connection{
			{ID: "c1", SourceID: "start", TargetID: "fetch"},
			{ID: "c2", SourceID: "fetch", TargetID: "end"},
		},
	}
}

func TestWorkflow_Validation_ValidWorkflow(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, validate.Struct(validWorkflow()))
}

func TestWorkflow_Validation_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Workflow)
		field  string
		tag    string
	}{
		{
			name:   "missing name",
			mutate: func(w *Workflow) { w.Name = "" },
			field:  "Name",
			tag:    requiredTag,
		},
		{
			name:   "no nodes",
			mutate: func(w *Workflow) { w.Nodes = []*WorkflowNode{} },
			field:  "Nodes",
			tag:    minTag,
		},
		{
			name:   "node without type",
			mutate: func(w *Workflow) { w.Nodes[1].Type = "" },
			field:  "Type",
			tag:    requiredTag,
		},
		{
			name:   "connection without target",
			mutate: func(w *Workflow) { w.Connections[0].TargetID = "" },
			field:  "TargetID",
			tag:    requiredTag,
		},
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			workflow := validWorkflow()
			tc.mutate(workflow)

			err := validate.Struct(workflow)
			require.Error(t, err)

			var validationErrors validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrors))
			assert.Equal(t, tc.field, validationErrors[0].Field())
			assert.Equal(t, tc.tag, validationErrors[0].Tag())
		})
	}
}

func TestWorkflow_NodeByID(t *testing.T) {
	workflow := validWorkflow()

	node := workflow.NodeByID("fetch")
	require.NotNil(t, node)
	assert.Equal(t, NodeTypeHTTP, node.Type)

	assert.Nil(t, workflow.NodeByID("ghost"))
}

func TestWorkflowNode_DisplayName(t *testing.T) {
	assert.Equal(t, "fetch", (&WorkflowNode{ID: "fetch"}).DisplayName())
	assert.Equal(t, "Fetch Order", (&WorkflowNode{ID: "fetch", Name: "Fetch Order"}).DisplayName())
}

func TestWorkflow_JSONFieldNames(t *testing.T) {
	port := "body"
	workflow := validWorkflow()
	workflow.Connections[0].SourcePort = &port

	data, err := json.Marshal(workflow)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "is_favorite")
	assert.Contains(t, raw, "created_at")

	connection := raw["connections"].([]any)[0].(map[string]any)
	assert.Equal(t, "start", connection["source_id"])
	assert.Equal(t, "body", connection["source_port"])
	assert.NotContains(t, connection, "target_port")
}

func TestExecutionStatus_IsTerminal(t *testing.T) {
	assert.False(t, ExecutionStatusPending.IsTerminal())
	assert.False(t, ExecutionStatusRunning.IsTerminal())
	assert.True(t, ExecutionStatusCompleted.IsTerminal())
	assert.True(t, ExecutionStatusFailed.IsTerminal())
	assert.True(t, ExecutionStatusCancelled.IsTerminal())
}

func TestSnapshotHeader_Size(t *testing.T) {
	compressed := int64(120)

	assert.Equal(t, int64(1000), (&SnapshotHeader{OriginalSize: 1000}).Size())
	assert.Equal(t, int64(120), (&SnapshotHeader{OriginalSize: 1000, CompressedSize: &compressed}).Size())
}
