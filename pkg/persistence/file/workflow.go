package file

import (
	"context"
	"errors"
	"os"
	"sort"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
)

const workflowsDir = "workflows"

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	store *Persistence
}

// GetAll returns every stored workflow ordered by creation time.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	wr.store.mu.RLock()
	defer wr.store.mu.RUnlock()

	ids, err := wr.store.listJSON(workflowsDir, ".json")
	if err != nil {
		return nil, persistence.NewStorageError("GetAll", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow

		err := wr.store.readJSON(workflowsDir, id+".json", &workflow)
		if err != nil {
			return nil, persistence.NewStorageError("GetAll", id, err)
		}

		workflows = append(workflows, &workflow)
	}

	sort.SliceStable(workflows, func(i, j int) bool {
		if workflows[i].CreatedAt.Equal(workflows[j].CreatedAt) {
			return workflows[i].ID < workflows[j].ID
		}

		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	err := validateID(id)
	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	wr.store.mu.RLock()
	defer wr.store.mu.RUnlock()

	var workflow models.Workflow

	err = wr.store.readJSON(workflowsDir, id+".json", &workflow)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	return &workflow, nil
}

// Save writes a workflow to the file system, replacing any previous version.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	err := validateID(workflow.ID)
	if err != nil {
		return persistence.NewStorageError("Save", workflow.ID, err)
	}

	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	err = wr.store.writeJSON(workflowsDir, workflow.ID+".json", workflow)
	if err != nil {
		return persistence.NewStorageError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := validateID(id)
	if err != nil {
		return persistence.NewStorageError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	err = wr.store.remove(workflowsDir, id+".json")
	if errors.Is(err, os.ErrNotExist) {
		return persistence.NewStorageError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}
