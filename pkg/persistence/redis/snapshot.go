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

// SnapshotRepository stores header and blob under separate keys so listing
// never transfers snapshot data.
type SnapshotRepository struct {
	client redis.UniversalClient
	keys   keys
}

func (r *SnapshotRepository) Save(ctx context.Context, record *models.SnapshotRecord) error {
	id := record.Header.ExecutionID

	header, err := json.Marshal(record.Header)
	if err != nil {
		return persistence.NewStorageError("Save", id, fmt.Errorf("failed to marshal snapshot header: %w", err))
	}

	previous, err := r.header(ctx, id)
	if err != nil && !errors.Is(err, persistence.ErrSnapshotNotFound) {
		return persistence.NewStorageError("Save", id, err)
	}

	score := float64(record.Header.StartedAt.UnixMilli())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.WorkflowID != record.Header.WorkflowID {
			pipe.ZRem(ctx, r.keys.workflowSnapshots(previous.WorkflowID), id)
		}

		pipe.Set(ctx, r.keys.snapshotData(id), record.Data, 0)
		pipe.Set(ctx, r.keys.snapshotHeader(id), header, 0)
		pipe.ZAdd(ctx, r.keys.snapshots(), redis.Z{Score: score, Member: id})
		pipe.ZAdd(ctx, r.keys.workflowSnapshots(record.Header.WorkflowID), redis.Z{Score: score, Member: id})

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Save", id, err)
	}

	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.SnapshotRecord, error) {
	header, err := r.header(ctx, id)
	if err != nil {
		return nil, persistence.NewStorageError("Get", id, err)
	}

	data, err := r.client.Get(ctx, r.keys.snapshotData(id)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, persistence.NewStorageError("Get", id, err)
	}

	return &models.SnapshotRecord{Header: *header, Data: data}, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	header, err := r.header(ctx, id)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys.snapshotHeader(id), r.keys.snapshotData(id))
		pipe.ZRem(ctx, r.keys.snapshots(), id)
		pipe.ZRem(ctx, r.keys.workflowSnapshots(header.WorkflowID), id)

		return nil
	})
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

func (r *SnapshotRepository) List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotHeader, error) {
	index := r.keys.snapshots()
	if filter.WorkflowID != "" {
		index = r.keys.workflowSnapshots(filter.WorkflowID)
	}

	start := int64(max(filter.Offset, 0))

	stop := int64(-1)
	if filter.Limit > 0 {
		stop = start + int64(filter.Limit) - 1
	}

	ids, err := r.client.ZRevRange(ctx, index, start, stop).Result()
	if err != nil {
		return nil, persistence.NewStorageError("List", filter.WorkflowID, err)
	}

	headers, err := r.headers(ctx, ids)
	if err != nil {
		return nil, persistence.NewStorageError("List", filter.WorkflowID, err)
	}

	return headers, nil
}

func (r *SnapshotRepository) Catalogue(ctx context.Context) ([]models.SnapshotHeader, error) {
	ids, err := r.client.ZRange(ctx, r.keys.snapshots(), 0, -1).Result()
	if err != nil {
		return nil, persistence.NewStorageError("Catalogue", "", err)
	}

	headers, err := r.headers(ctx, ids)
	if err != nil {
		return nil, persistence.NewStorageError("Catalogue", "", err)
	}

	return headers, nil
}

func (r *SnapshotRepository) header(ctx context.Context, id string) (*models.SnapshotHeader, error) {
	raw, err := r.client.Get(ctx, r.keys.snapshotHeader(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.ErrSnapshotNotFound
	}

	if err != nil {
		return nil, err
	}

	var header models.SnapshotHeader

	err = json.Unmarshal([]byte(raw), &header)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot header: %w", err)
	}

	return &header, nil
}

func (r *SnapshotRepository) headers(ctx context.Context, ids []string) ([]models.SnapshotHeader, error) {
	headers := make([]models.SnapshotHeader, 0, len(ids))
	if len(ids) == 0 {
		return headers, nil
	}

	docs, err := r.client.MGet(ctx, mapKeys(ids, r.keys.snapshotHeader)...).Result()
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}

		var header models.SnapshotHeader

		err := json.Unmarshal([]byte(raw), &header)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot header: %w", err)
		}

		headers = append(headers, header)
	}

	return headers, nil
}
