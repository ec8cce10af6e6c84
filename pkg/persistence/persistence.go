// Package persistence provides the storage abstraction for workflows, run
// history and execution snapshots.
package persistence

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
)

// Persistence bundles the repositories of one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	SnapshotRepository() SnapshotRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns ErrWorkflowNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete returns ErrWorkflowNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records. Save is an upsert keyed by
// execution id.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	// GetByID returns ErrExecutionNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	// ListByWorkflow returns at most limit records, newest first. An empty
	// workflowID lists every workflow's executions.
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
	CountByStatus(ctx context.Context) (map[models.ExecutionStatus]int64, error)
	// Delete returns ErrExecutionNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}

// SnapshotRepository stores encoded snapshot blobs with their headers.
type SnapshotRepository interface {
	// Save overwrites any record with the same execution id.
	Save(ctx context.Context, record *models.SnapshotRecord) error
	// Get returns ErrSnapshotNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.SnapshotRecord, error)
	// Delete returns ErrSnapshotNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
	// List returns headers newest first by start time.
	List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotHeader, error)
	// Catalogue returns the header of every stored snapshot, in no particular order.
	Catalogue(ctx context.Context) ([]models.SnapshotHeader, error)
}
