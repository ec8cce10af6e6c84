package file

import (
	"context"
	"errors"
	"os"
	"sort"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
)

const executionsDir = "executions"

// ExecutionRepository keeps one JSON document per execution record.
type ExecutionRepository struct {
	store *Persistence
}

func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	err := validateID(execution.ID)
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, err)
	}

	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	err = er.store.writeJSON(executionsDir, execution.ID+".json", execution)
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	if validateID(id) != nil {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	var execution models.Execution

	err := er.store.readJSON(executionsDir, id+".json", &execution)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	return &execution, nil
}

func (er *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	all, err := er.loadAll()
	if err != nil {
		return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
	}

	executions := make([]*models.Execution, 0, len(all))

	for _, execution := range all {
		if workflowID == "" || execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		if executions[i].StartedAt.Equal(executions[j].StartedAt) {
			return executions[i].ID > executions[j].ID
		}

		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}

func (er *ExecutionRepository) CountByStatus(_ context.Context) (map[models.ExecutionStatus]int64, error) {
	all, err := er.loadAll()
	if err != nil {
		return nil, persistence.NewStorageError("CountByStatus", "", err)
	}

	counts := make(map[models.ExecutionStatus]int64)
	for _, execution := range all {
		counts[execution.Status]++
	}

	return counts, nil
}

func (er *ExecutionRepository) Delete(_ context.Context, id string) error {
	if validateID(id) != nil {
		return persistence.NewStorageError("Delete", id, persistence.ErrExecutionNotFound)
	}

	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	err := er.store.remove(executionsDir, id+".json")
	if errors.Is(err, os.ErrNotExist) {
		return persistence.NewStorageError("Delete", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

func (er *ExecutionRepository) loadAll() ([]*models.Execution, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	ids, err := er.store.listJSON(executionsDir, ".json")
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		var execution models.Execution

		err := er.store.readJSON(executionsDir, id+".json", &execution)
		if err != nil {
			return nil, err
		}

		executions = append(executions, &execution)
	}

	return executions, nil
}
