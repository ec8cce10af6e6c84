// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(id, nodeType string, overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:        id,
		Type:      nodeType,
		Name:      "Test " + nodeType,
		Config:    map[string]any{},
		PositionX: 100,
		PositionY: 200,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Config = config
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Name = name
	}
}

// Connect creates an edge from source to target.
func Connect(sourceID, targetID string) *models.Connection {
	return &models.Connection{
		ID:       uuid.New().String(),
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// ConnectPort creates an edge whose output reaches the target under port.
func ConnectPort(sourceID, port, targetID string) *models.Connection {
	conn := Connect(sourceID, targetID)
	conn.SourcePort = &port

	return conn
}

// CreateTestWorkflow creates a workflow from nodes and connections.
func CreateTestWorkflow(id string, nodes []*models.WorkflowNode, connections ...*models.Connection) *models.Workflow {
	now := time.Now().UTC()

	return &models.Workflow{
		ID:          id,
		Name:        "Test Workflow " + id,
		Description: "workflow used in tests",
		Nodes:       nodes,
		Connections: connections,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateLinearWorkflow chains start, the given nodes and end in that order.
func CreateLinearWorkflow(id string, middle ...*models.WorkflowNode) *models.Workflow {
	nodes := []*models.WorkflowNode{CreateTestNode("start", models.NodeTypeStart)}
	nodes = append(nodes, middle...)
	nodes = append(nodes, CreateTestNode("end", models.NodeTypeEnd))

	connections := make([]*models.Connection, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		connections = append(connections, Connect(nodes[i-1].ID, nodes[i].ID))
	}

	return CreateTestWorkflow(id, nodes, connections...)
}

// CreateTestSnapshot creates a finished snapshot with a single start node.
func CreateTestSnapshot(executionID, workflowID string, status models.ExecutionStatus, startedAt time.Time) *models.ExecutionSnapshot {
	completedAt := startedAt.Add(1500 * time.Millisecond)
	duration := int64(1500)

	return &models.ExecutionSnapshot{
		ExecutionID:  executionID,
		WorkflowID:   workflowID,
		WorkflowName: "Workflow " + workflowID,
		Status:       status,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
		DurationMs:   &duration,
		NodeSnapshots: map[string]*models.NodeSnapshot{
			"start": {
				NodeID:      "start",
				NodeName:    "Start",
				NodeType:    models.NodeTypeStart,
				Status:      models.NodeStatusCompleted,
				StartedAt:   startedAt,
				CompletedAt: &completedAt,
				DurationMs:  duration,
				Inputs:      map[string]any{"id": "42"},
				Outputs:     map[string]any{"id": "42"},
			},
		},
		ExecutionOrder: []string{"start"},
		Inputs:         map[string]any{"id": "42"},
		Outputs:        map[string]any{"start": map[string]any{"id": "42"}},
		Variables:      map[string]any{},
		Summary: models.ExecutionSummary{
			TotalNodes:     1,
			CompletedNodes: 1,
		},
		Metadata: models.SnapshotMetadata{
			CreatedAt: startedAt,
			Version:   models.SnapshotVersion,
			Source:    models.SnapshotSource,
		},
	}
}
