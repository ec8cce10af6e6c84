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

// WorkflowRepository stores workflow definitions as JSON documents with
// their id, name and timestamps broken out into columns.
type WorkflowRepository struct {
	q querier
}

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := r.q.query(ctx, `SELECT data FROM workflows ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, persistence.NewStorageError("GetAll", "", err)
	}
	defer func() { _ = rows.Close() }()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		var data string

		err := rows.Scan(&data)
		if err != nil {
			return nil, persistence.NewStorageError("GetAll", "", err)
		}

		var workflow models.Workflow

		err = json.Unmarshal([]byte(data), &workflow)
		if err != nil {
			return nil, persistence.NewStorageError("GetAll", "", fmt.Errorf("failed to unmarshal workflow: %w", err))
		}

		workflows = append(workflows, &workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStorageError("GetAll", "", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var data string

	err := r.q.queryRow(ctx, `SELECT data FROM workflows WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal([]byte(data), &workflow)
	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, fmt.Errorf("failed to unmarshal workflow: %w", err))
	}

	return &workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewStorageError("Save", workflow.ID, fmt.Errorf("failed to marshal workflow: %w", err))
	}

	_, err = r.q.exec(ctx, `
		INSERT INTO workflows (id, name, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			data = excluded.data`,
		workflow.ID, workflow.Name, workflow.CreatedAt.UnixNano(), workflow.UpdatedAt.UnixNano(), string(data),
	)
	if err != nil {
		return persistence.NewStorageError("Save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.exec(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	err = deleted(result, persistence.ErrWorkflowNotFound)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}
