package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
)

const (
	snapshotsDir = "snapshots"
	metaSuffix   = ".meta.json"
	blobSuffix   = ".blob"
)

// SnapshotRepository stores each snapshot as a header document next to its blob.
type SnapshotRepository struct {
	store *Persistence
}

func (sr *SnapshotRepository) Save(_ context.Context, record *models.SnapshotRecord) error {
	id := record.Header.ExecutionID

	err := validateID(id)
	if err != nil {
		return persistence.NewStorageError("Save", id, err)
	}

	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	// Blob first: a header is only visible once its data is in place.
	err = sr.store.writeFile(snapshotsDir, id+blobSuffix, record.Data)
	if err != nil {
		return persistence.NewStorageError("Save", id, err)
	}

	err = sr.store.writeJSON(snapshotsDir, id+metaSuffix, record.Header)
	if err != nil {
		return persistence.NewStorageError("Save", id, err)
	}

	return nil
}

func (sr *SnapshotRepository) Get(_ context.Context, id string) (*models.SnapshotRecord, error) {
	if validateID(id) != nil {
		return nil, persistence.NewStorageError("Get", id, persistence.ErrSnapshotNotFound)
	}

	sr.store.mu.RLock()
	defer sr.store.mu.RUnlock()

	var header models.SnapshotHeader

	err := sr.store.readJSON(snapshotsDir, id+metaSuffix, &header)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.NewStorageError("Get", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("Get", id, err)
	}

	data, err := os.ReadFile(filepath.Clean(sr.store.path(snapshotsDir, id+blobSuffix)))
	if err != nil {
		return nil, persistence.NewStorageError("Get", id, err)
	}

	return &models.SnapshotRecord{Header: header, Data: data}, nil
}

func (sr *SnapshotRepository) Delete(_ context.Context, id string) error {
	if validateID(id) != nil {
		return persistence.NewStorageError("Delete", id, persistence.ErrSnapshotNotFound)
	}

	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	err := sr.store.remove(snapshotsDir, id+metaSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return persistence.NewStorageError("Delete", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	err = sr.store.remove(snapshotsDir, id+blobSuffix)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

func (sr *SnapshotRepository) List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotHeader, error) {
	headers, err := sr.Catalogue(ctx)
	if err != nil {
		return nil, err
	}

	filtered := headers[:0]

	for _, header := range headers {
		if filter.WorkflowID == "" || header.WorkflowID == filter.WorkflowID {
			filtered = append(filtered, header)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].StartedAt.Equal(filtered[j].StartedAt) {
			return filtered[i].ExecutionID > filtered[j].ExecutionID
		}

		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})

	return page(filtered, filter.Offset, filter.Limit), nil
}

func (sr *SnapshotRepository) Catalogue(_ context.Context) ([]models.SnapshotHeader, error) {
	sr.store.mu.RLock()
	defer sr.store.mu.RUnlock()

	ids, err := sr.store.listJSON(snapshotsDir, metaSuffix)
	if err != nil {
		return nil, persistence.NewStorageError("Catalogue", "", err)
	}

	headers := make([]models.SnapshotHeader, 0, len(ids))

	for _, id := range ids {
		var header models.SnapshotHeader

		err := sr.store.readJSON(snapshotsDir, id+metaSuffix, &header)
		if err != nil {
			return nil, persistence.NewStorageError("Catalogue", id, err)
		}

		headers = append(headers, header)
	}

	return headers, nil
}

func page(headers []models.SnapshotHeader, offset, limit int) []models.SnapshotHeader {
	if offset >= len(headers) {
		return []models.SnapshotHeader{}
	}

	headers = headers[offset:]
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}

	return headers
}
