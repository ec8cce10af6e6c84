package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/runs"
)

// DefaultListLimit applies when List is called without a positive limit.
const DefaultListLimit = 50

// Starter launches a workflow run in the background.
type Starter interface {
	Start(ctx context.Context, wf *models.Workflow, inputs any) (*models.Execution, error)
}

type Execution struct {
	persistence persistence.Persistence
	starter     Starter
	runs        *runs.Registry
	logger      *slog.Logger
}

// NewExecution creates the run history service. runs must be the registry
// starter registers its runs in.
func NewExecution(logger *slog.Logger, persistence persistence.Persistence, starter Starter, runs *runs.Registry) *Execution {
	return &Execution{
		persistence: persistence,
		starter:     starter,
		runs:        runs,
		logger:      logger.With("module", "execution_service"),
	}
}

// Start launches a run of the stored workflow and returns its running record.
func (e *Execution) Start(ctx context.Context, workflowID string, inputs any) (*models.Execution, error) {
	wf, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	execution, err := e.starter.Start(ctx, wf, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow %s: %w", workflowID, err)
	}

	return execution, nil
}

// Stop requests cancellation of a running execution. The run records the
// cancelled status itself once it reaches its next node boundary.
func (e *Execution) Stop(_ context.Context, id string) error {
	if !e.runs.Cancel(id) {
		return &ServiceError{Op: "Stop", Message: fmt.Sprintf("execution %s is not running", id), Err: ErrExecutionNotRunning}
	}

	e.logger.Info("Cancellation requested", "execution_id", id)

	return nil
}

func (e *Execution) Get(ctx context.Context, id string) (*models.ExecutionInfo, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ExecutionInfo{Execution: execution, IsRunning: e.runs.IsRunning(id)}, nil
}

// List returns the newest executions, optionally of one workflow only.
func (e *Execution) List(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionInfo, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	executions, err := e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	infos := make([]*models.ExecutionInfo, 0, len(executions))
	for _, execution := range executions {
		infos = append(infos, &models.ExecutionInfo{Execution: execution, IsRunning: e.runs.IsRunning(execution.ID)})
	}

	return infos, nil
}

// Running lists the ids of the runs in flight in this process.
func (e *Execution) Running() []string {
	return e.runs.ListRunning()
}

func (e *Execution) Stats(ctx context.Context) (*models.ExecutionStats, error) {
	counts, err := e.persistence.ExecutionRepository().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	stats := &models.ExecutionStats{
		Completed: counts[models.ExecutionStatusCompleted],
		Failed:    counts[models.ExecutionStatusFailed],
		Running:   e.runs.Count(),
	}

	for _, count := range counts {
		stats.Total += count
	}

	return stats, nil
}

// Delete removes a finished execution record.
func (e *Execution) Delete(ctx context.Context, id string) error {
	if e.runs.IsRunning(id) {
		return &ServiceError{Op: "Delete", Message: fmt.Sprintf("execution %s is still running", id), Err: ErrExecutionRunning}
	}

	return e.persistence.ExecutionRepository().Delete(ctx, id)
}
