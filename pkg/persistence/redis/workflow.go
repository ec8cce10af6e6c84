package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// WorkflowRepository keeps workflows as JSON strings indexed by creation time.
type WorkflowRepository struct {
	client redis.UniversalClient
	keys   keys
}

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := r.client.ZRange(ctx, r.keys.workflows(), 0, -1).Result()
	if err != nil {
		return nil, persistence.NewStorageError("GetAll", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))
	if len(ids) == 0 {
		return workflows, nil
	}

	docs, err := r.client.MGet(ctx, mapKeys(ids, r.keys.workflow)...).Result()
	if err != nil {
		return nil, persistence.NewStorageError("GetAll", "", err)
	}

	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}

		var workflow models.Workflow

		err := json.Unmarshal([]byte(raw), &workflow)
		if err != nil {
			return nil, persistence.NewStorageError("GetAll", ids[i], fmt.Errorf("failed to unmarshal workflow: %w", err))
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	raw, err := r.client.Get(ctx, r.keys.workflow(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal([]byte(raw), &workflow)
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

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.workflow(workflow.ID), data, 0)
		pipe.ZAdd(ctx, r.keys.workflows(), redis.Z{
			Score:  float64(workflow.CreatedAt.UnixMilli()),
			Member: workflow.ID,
		})

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, r.keys.workflow(id))
		pipe.ZRem(ctx, r.keys.workflows(), id)

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	if removed.Val() == 0 {
		return persistence.NewStorageError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func mapKeys(ids []string, key func(string) string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = key(id)
	}

	return out
}
