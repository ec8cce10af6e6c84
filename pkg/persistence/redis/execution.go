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

// ExecutionRepository keeps execution records indexed globally and per workflow.
type ExecutionRepository struct {
	client redis.UniversalClient
	keys   keys
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, fmt.Errorf("failed to marshal execution: %w", err))
	}

	score := float64(execution.StartedAt.UnixMilli())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.execution(execution.ID), data, 0)
		pipe.ZAdd(ctx, r.keys.executions(), redis.Z{Score: score, Member: execution.ID})
		pipe.ZAdd(ctx, r.keys.workflowExecutions(execution.WorkflowID), redis.Z{Score: score, Member: execution.ID})

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	raw, err := r.client.Get(ctx, r.keys.execution(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewStorageError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, err)
	}

	var execution models.Execution

	err = json.Unmarshal([]byte(raw), &execution)
	if err != nil {
		return nil, persistence.NewStorageError("GetByID", id, fmt.Errorf("failed to unmarshal execution: %w", err))
	}

	return &execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	index := r.keys.executions()
	if workflowID != "" {
		index = r.keys.workflowExecutions(workflowID)
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := r.client.ZRevRange(ctx, index, 0, stop).Result()
	if err != nil {
		return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
	}

	executions, err := r.load(ctx, ids)
	if err != nil {
		return nil, persistence.NewStorageError("ListByWorkflow", workflowID, err)
	}

	return executions, nil
}

func (r *ExecutionRepository) CountByStatus(ctx context.Context) (map[models.ExecutionStatus]int64, error) {
	ids, err := r.client.ZRange(ctx, r.keys.executions(), 0, -1).Result()
	if err != nil {
		return nil, persistence.NewStorageError("CountByStatus", "", err)
	}

	executions, err := r.load(ctx, ids)
	if err != nil {
		return nil, persistence.NewStorageError("CountByStatus", "", err)
	}

	counts := make(map[models.ExecutionStatus]int64)
	for _, execution := range executions {
		counts[execution.Status]++
	}

	return counts, nil
}

func (r *ExecutionRepository) Delete(ctx context.Context, id string) error {
	execution, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys.execution(id))
		pipe.ZRem(ctx, r.keys.executions(), id)
		pipe.ZRem(ctx, r.keys.workflowExecutions(execution.WorkflowID), id)

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

// load fetches records in ids order, skipping ids whose record is gone.
func (r *ExecutionRepository) load(ctx context.Context, ids []string) ([]*models.Execution, error) {
	executions := make([]*models.Execution, 0, len(ids))
	if len(ids) == 0 {
		return executions, nil
	}

	docs, err := r.client.MGet(ctx, mapKeys(ids, r.keys.execution)...).Result()
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}

		var execution models.Execution

		err := json.Unmarshal([]byte(raw), &execution)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution: %w", err)
		}

		executions = append(executions, &execution)
	}

	return executions, nil
}
