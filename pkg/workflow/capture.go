package workflow

import (
	"maps"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
)

// runState accumulates per node results while a run progresses.
type runState struct {
	outputs   map[string]any
	order     []string
	nodes     map[string]*models.NodeSnapshot
	results   []models.NodeResult
	variables map[string]any
	current   *string
}

func newRunState() *runState {
	return &runState{
		outputs:   make(map[string]any),
		nodes:     make(map[string]*models.NodeSnapshot),
		results:   []models.NodeResult{},
		variables: make(map[string]any),
	}
}

func (s *runState) recordSuccess(node *models.WorkflowNode, inputs any, output *models.NodeOutput, startedAt time.Time, elapsed time.Duration) {
	s.outputs[node.ID] = output.Data

	if node.Type == models.NodeTypeVariable {
		if vars, ok := output.Data.(map[string]any); ok {
			maps.Copy(s.variables, vars)
		}
	}

	completedAt := startedAt.Add(elapsed)
	s.record(&models.NodeSnapshot{
		NodeID:         node.ID,
		NodeName:       node.DisplayName(),
		NodeType:       node.Type,
		Status:         models.NodeStatusCompleted,
		StartedAt:      startedAt,
		CompletedAt:    &completedAt,
		DurationMs:     elapsed.Milliseconds(),
		Inputs:         inputs,
		Outputs:        output.Data,
		ResolvedConfig: output.ResolvedConfig,
		Metadata:       output.Metadata,
		Logs:           output.Logs,
	})
}

func (s *runState) recordFailure(node *models.WorkflowNode, inputs any, err error, startedAt time.Time, elapsed time.Duration) {
	completedAt := startedAt.Add(elapsed)
	s.record(&models.NodeSnapshot{
		NodeID:      node.ID,
		NodeName:    node.DisplayName(),
		NodeType:    node.Type,
		Status:      models.NodeStatusFailed,
		StartedAt:   startedAt,
		CompletedAt: &completedAt,
		DurationMs:  elapsed.Milliseconds(),
		Inputs:      inputs,
		Error:       &models.NodeError{Message: err.Error()},
	})
}

func (s *runState) record(snapshot *models.NodeSnapshot) {
	s.order = append(s.order, snapshot.NodeID)
	s.nodes[snapshot.NodeID] = snapshot

	id := snapshot.NodeID
	s.current = &id

	result := models.NodeResult{
		NodeID:     snapshot.NodeID,
		NodeType:   snapshot.NodeType,
		Status:     snapshot.Status,
		StartedAt:  snapshot.StartedAt,
		DurationMs: snapshot.DurationMs,
	}
	if snapshot.Error != nil {
		result.Error = snapshot.Error.Message
	} else {
		result.Output = snapshot.Outputs
	}

	s.results = append(s.results, result)
}

// snapshot builds the execution snapshot of a finished run.
func (s *runState) snapshot(wf *models.Workflow, execution *models.Execution, failedNode *string, now time.Time) *models.ExecutionSnapshot {
	summary := models.ExecutionSummary{TotalNodes: len(wf.Nodes)}

	var tokens int64

	for _, node := range s.nodes {
		switch node.Status {
		case models.NodeStatusCompleted:
			summary.CompletedNodes++
		case models.NodeStatusFailed:
			summary.FailedNodes++
		}

		if node.Metadata != nil && node.Metadata.TokensUsed != nil {
			tokens += *node.Metadata.TokensUsed
		}
	}

	summary.SkippedNodes = summary.TotalNodes - len(s.nodes)
	if tokens > 0 {
		summary.TotalTokensUsed = &tokens
	}

	snapshot := &models.ExecutionSnapshot{
		ExecutionID:    execution.ID,
		WorkflowID:     wf.ID,
		WorkflowName:   wf.Name,
		Status:         execution.Status,
		StartedAt:      execution.StartedAt,
		CompletedAt:    execution.CompletedAt,
		DurationMs:     execution.DurationMs,
		NodeSnapshots:  s.nodes,
		ExecutionOrder: append([]string{}, s.order...),
		CurrentNodeID:  s.current,
		Inputs:         execution.Inputs,
		Outputs:        execution.Outputs,
		Variables:      s.variables,
		Summary:        summary,
		Metadata: models.SnapshotMetadata{
			CreatedAt: now,
			Version:   models.SnapshotVersion,
			Source:    models.SnapshotSource,
		},
	}

	if execution.Error != nil {
		snapshot.Error = &models.SnapshotError{
			Message: *execution.Error,
			NodeID:  failedNode,
		}
	}

	return snapshot
}
