// Package persistencetest holds the behavior every persistence backend must
// show, as a reusable test suite.
package persistencetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens an empty backend for one test.
type Factory func(t *testing.T) persistence.Persistence

// Run executes the full suite against backends produced by factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("workflows", func(t *testing.T) { testWorkflows(t, factory(t)) })
	t.Run("executions", func(t *testing.T) { testExecutions(t, factory(t)) })
	t.Run("execution listing", func(t *testing.T) { testExecutionListing(t, factory(t)) })
	t.Run("snapshots", func(t *testing.T) { testSnapshots(t, factory(t)) })
	t.Run("snapshot listing", func(t *testing.T) { testSnapshotListing(t, factory(t)) })
	t.Run("health", func(t *testing.T) {
		require.NoError(t, factory(t).HealthCheck(context.Background()))
	})
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testWorkflows(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.WorkflowRepository()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	port := "payload"
	wf := testutil.CreateTestWorkflow("wf-1",
		[]*models.WorkflowNode{
			testutil.CreateTestNode("start", models.NodeTypeStart),
			testutil.CreateTestNode("http", models.NodeTypeHTTP, testutil.WithConfig(map[string]any{
				"url":     "https://example.com/{{id}}",
				"headers": map[string]any{"X-Trace": "1"},
			})),
		},
		&models.Connection{ID: "c1", SourceID: "start", TargetID: "http", SourcePort: &port},
	)
	wf.CreatedAt = base
	wf.UpdatedAt = base

	require.NoError(t, repo.Save(ctx, wf))

	loaded, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, wf, loaded)

	wf.Name = "renamed"
	wf.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, wf))

	loaded, err = repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Name)

	second := testutil.CreateLinearWorkflow("wf-2")
	second.CreatedAt = base.Add(time.Minute)
	second.UpdatedAt = second.CreatedAt
	require.NoError(t, repo.Save(ctx, second))

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, "wf-1"))
	require.ErrorIs(t, repo.Delete(ctx, "wf-1"), persistence.ErrWorkflowNotFound)

	_, err = repo.GetByID(ctx, "wf-1")
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func newExecution(id, workflowID string, status models.ExecutionStatus, startedAt time.Time) *models.Execution {
	return &models.Execution{
		ID:          id,
		WorkflowID:  workflowID,
		Status:      status,
		Inputs:      map[string]any{"id": "42"},
		StartedAt:   startedAt,
		NodeResults: []models.NodeResult{},
	}
}

func testExecutions(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.ExecutionRepository()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)

	execution := newExecution("exec-1", "wf-1", models.ExecutionStatusRunning, base)
	require.NoError(t, repo.Save(ctx, execution))

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, execution, loaded)

	completedAt := base.Add(2 * time.Second)
	duration := int64(2000)
	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &completedAt
	execution.DurationMs = &duration
	execution.Outputs = map[string]any{"http": map[string]any{"status": 200.0}}
	execution.NodeResults = []models.NodeResult{{
		NodeID:     "http",
		NodeType:   models.NodeTypeHTTP,
		Status:     models.NodeStatusCompleted,
		Output:     map[string]any{"status": 200.0},
		StartedAt:  base,
		DurationMs: 2000,
	}}
	require.NoError(t, repo.Save(ctx, execution))

	loaded, err = repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, execution, loaded)

	require.NoError(t, repo.Delete(ctx, "exec-1"))
	require.ErrorIs(t, repo.Delete(ctx, "exec-1"), persistence.ErrExecutionNotFound)
}

func testExecutionListing(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.ExecutionRepository()

	statuses := []models.ExecutionStatus{
		models.ExecutionStatusCompleted,
		models.ExecutionStatusFailed,
		models.ExecutionStatusCompleted,
		models.ExecutionStatusCancelled,
		models.ExecutionStatusRunning,
	}

	for i, status := range statuses {
		workflowID := "wf-a"
		if i%2 == 1 {
			workflowID = "wf-b"
		}

		id := fmt.Sprintf("exec-%d", i)
		require.NoError(t, repo.Save(ctx, newExecution(id, workflowID, status, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := repo.ListByWorkflow(ctx, "", 50)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "exec-4", all[0].ID)
	assert.Equal(t, "exec-0", all[4].ID)

	limited, err := repo.ListByWorkflow(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, []string{"exec-4", "exec-3"}, []string{limited[0].ID, limited[1].ID})

	byWorkflow, err := repo.ListByWorkflow(ctx, "wf-b", 50)
	require.NoError(t, err)
	require.Len(t, byWorkflow, 2)
	assert.Equal(t, []string{"exec-3", "exec-1"}, []string{byWorkflow[0].ID, byWorkflow[1].ID})

	none, err := repo.ListByWorkflow(ctx, "wf-none", 50)
	require.NoError(t, err)
	assert.Empty(t, none)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.ExecutionStatusCompleted])
	assert.Equal(t, int64(1), counts[models.ExecutionStatusFailed])
	assert.Equal(t, int64(1), counts[models.ExecutionStatusCancelled])
	assert.Equal(t, int64(1), counts[models.ExecutionStatusRunning])
}

func newRecord(id, workflowID string, startedAt time.Time, data []byte, compressed bool) *models.SnapshotRecord {
	completedAt := startedAt.Add(time.Second)
	duration := int64(1000)

	header := models.SnapshotHeader{
		ExecutionID:  id,
		WorkflowID:   workflowID,
		WorkflowName: "Workflow " + workflowID,
		Status:       models.ExecutionStatusCompleted,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
		DurationMs:   &duration,
		Compressed:   compressed,
		OriginalSize: int64(len(data)) * 3,
		CreatedAt:    completedAt,
		Summary:      models.ExecutionSummary{TotalNodes: 2, CompletedNodes: 2},
	}

	if compressed {
		size := int64(len(data))
		header.CompressedSize = &size
	} else {
		header.OriginalSize = int64(len(data))
	}

	return &models.SnapshotRecord{Header: header, Data: data}
}

func testSnapshots(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.SnapshotRepository()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrSnapshotNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "missing"), persistence.ErrSnapshotNotFound)

	record := newRecord("exec-1", "wf-1", base, []byte{0x1f, 0x8b, 0x00, 0xff, 0x10}, true)
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	replacement := newRecord("exec-1", "wf-1", base, []byte(`{"execution_id":"exec-1"}`), false)
	require.NoError(t, repo.Save(ctx, replacement))

	loaded, err = repo.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, replacement, loaded)

	catalogue, err := repo.Catalogue(ctx)
	require.NoError(t, err)
	require.Len(t, catalogue, 1)
	assert.Equal(t, replacement.Header, catalogue[0])

	require.NoError(t, repo.Delete(ctx, "exec-1"))

	_, err = repo.Get(ctx, "exec-1")
	require.ErrorIs(t, err, persistence.ErrSnapshotNotFound)

	catalogue, err = repo.Catalogue(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalogue)
}

func testSnapshotListing(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.SnapshotRepository()

	for i := range 5 {
		workflowID := "wf-a"
		if i%2 == 1 {
			workflowID = "wf-b"
		}

		id := fmt.Sprintf("exec-%d", i)
		require.NoError(t, repo.Save(ctx, newRecord(id, workflowID, base.Add(time.Duration(i)*time.Hour), []byte("data"), false)))
	}

	ids := func(headers []models.SnapshotHeader) []string {
		out := make([]string, 0, len(headers))
		for _, h := range headers {
			out = append(out, h.ExecutionID)
		}

		return out
	}

	page, err := repo.List(ctx, models.SnapshotFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-4", "exec-3"}, ids(page))

	page, err = repo.List(ctx, models.SnapshotFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-2", "exec-1"}, ids(page))

	page, err = repo.List(ctx, models.SnapshotFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = repo.List(ctx, models.SnapshotFilter{WorkflowID: "wf-a", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-4", "exec-2", "exec-0"}, ids(page))

	catalogue, err := repo.Catalogue(ctx)
	require.NoError(t, err)
	assert.Len(t, catalogue, 5)
}
