package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
)

// ExecutionRepository stores execution records. started_at is kept as unix
// nanoseconds so ordering is identical on every dialect.
type ExecutionRepository struct {
	q querier
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, fmt.Errorf("failed to marshal execution: %w", err))
	}

	_, err = r.q.exec(ctx, `
		INSERT INTO executions (id, workflow_id, status, started_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			workflow_id = excluded.workflow_id,
			status = excluded.status,
			started_at = excluded.started_at,
			data = excluded.data`,
		execution.ID, execution.WorkflowID, string(execution.Status), execution.StartedAt.UnixNano(), string(data),
	)
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	var data string

	err := r.q.queryRow(ctx, `SELECT data FROM executions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	execution, err := decodeExecution(data)
	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	if limit <= 0 {
		limit = -1
	}

	var (
		rows *sql.Rows
		err  error
	)

	if workflowID == "" {
		rows, err = r.q.query(ctx, `
			SELECT data FROM executions
			ORDER BY started_at DESC, id DESC
			LIMIT ?`, limitArg(limit))
	} else {
		rows, err = r.q.query(ctx, `
			SELECT data FROM executions
			WHERE workflow_id = ?
			ORDER BY started_at DESC, id DESC
			LIMIT ?`, workflowID, limitArg(limit))
	}

	if err != nil {
		return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
	}
	defer func() { _ = rows.Close() }()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		var data string

		err := rows.Scan(&data)
		if err != nil {
			return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
		}

		execution, err := decodeExecution(data)
		if err != nil {
			return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
	}

	return executions, nil
}

func (r *ExecutionRepository) CountByStatus(ctx context.Context) (map[models.ExecutionStatus]int64, error) {
	rows, err := r.q.query(ctx, `SELECT status, COUNT(*) FROM executions GROUP BY status`)
	if err != nil {
		return nil, persistence.NewStorageError("CountByStatus", "", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[models.ExecutionStatus]int64)

	for rows.Next() {
		var (
			status string
			count  int64
		)

		err := rows.Scan(&status, &count)
		if err != nil {
			return nil, persistence.NewStorageError("CountByStatus", "", err)
		}

		counts[models.ExecutionStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStorageError("CountByStatus", "", err)
	}

	return counts, nil
}

func (r *ExecutionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.exec(ctx, `DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	err = deleted(result, persistence.ErrExecutionNotFound)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

func decodeExecution(data string) (*models.Execution, error) {
	var execution models.Execution

	err := json.Unmarshal([]byte(data), &execution)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution: %w", err)
	}

	return &execution, nil
}

// limitArg turns "no limit" into a value every dialect accepts in LIMIT.
func limitArg(limit int) int64 {
	if limit < 0 {
		return 1<<62 - 1
	}

	return int64(limit)
}
