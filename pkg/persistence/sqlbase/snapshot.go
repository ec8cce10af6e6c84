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

// SnapshotRepository stores encoded snapshots in the snapshots table; the
// header is kept as JSON next to the indexed columns used for listing.
type SnapshotRepository struct {
	q querier
}

func (r *SnapshotRepository) Save(ctx context.Context, record *models.SnapshotRecord) error {
	id := record.Header.ExecutionID

	header, err := json.Marshal(record.Header)
	if err != nil {
		return persistence.NewStorageError("Save", id, fmt.Errorf("failed to marshal snapshot header: %w", err))
	}

	data := record.Data
	if data == nil {
		data = []byte{}
	}

	_, err = r.q.exec(ctx, `
		INSERT INTO snapshots (execution_id, workflow_id, status, started_at, stored_size, header, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (execution_id) DO UPDATE SET
			workflow_id = excluded.workflow_id,
			status = excluded.status,
			started_at = excluded.started_at,
			stored_size = excluded.stored_size,
			header = excluded.header,
			data = excluded.data`,
		id,
		record.Header.WorkflowID,
		string(record.Header.Status),
		record.Header.StartedAt.UnixNano(),
		record.Header.Size(),
		string(header),
		data,
	)
	if err != nil {
		return persistence.NewStorageError("Save", id, err)
	}

	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.SnapshotRecord, error) {
	var (
		header string
		data   []byte
	)

	err := r.q.queryRow(ctx, `SELECT header, data FROM snapshots WHERE execution_id = ?`, id).Scan(&header, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStorageError("Get", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return nil, persistence.NewStorageError("Get", id, err)
	}

	record := &models.SnapshotRecord{Data: data}

	err = json.Unmarshal([]byte(header), &record.Header)
	if err != nil {
		return nil, persistence.NewStorageError("Get", id, fmt.Errorf("failed to unmarshal snapshot header: %w", err))
	}

	return record, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.exec(ctx, `DELETE FROM snapshots WHERE execution_id = ?`, id)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	err = deleted(result, persistence.ErrSnapshotNotFound)
	if err != nil {
		return persistence.NewStorageError("Delete", id, err)
	}

	return nil
}

func (r *SnapshotRepository) List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotHeader, error) {
	limit := int64(filter.Limit)
	if limit <= 0 {
		limit = limitArg(-1)
	}

	offset := max(filter.Offset, 0)

	var (
		rows *sql.Rows
		err  error
	)

	if filter.WorkflowID == "" {
		rows, err = r.q.query(ctx, `
			SELECT header FROM snapshots
			ORDER BY started_at DESC, execution_id DESC
			LIMIT ? OFFSET ?`, limit, offset)
	} else {
		rows, err = r.q.query(ctx, `
			SELECT header FROM snapshots
			WHERE workflow_id = ?
			ORDER BY started_at DESC, execution_id DESC
			LIMIT ? OFFSET ?`, filter.WorkflowID, limit, offset)
	}

	if err != nil {
		return nil, persistence.NewStorageError("List", filter.WorkflowID, err)
	}

	return scanHeaders(rows, "List")
}

func (r *SnapshotRepository) Catalogue(ctx context.Context) ([]models.SnapshotHeader, error) {
	rows, err := r.q.query(ctx, `SELECT header FROM snapshots`)
	if err != nil {
		return nil, persistence.NewStorageError("Catalogue", "", err)
	}

	return scanHeaders(rows, "Catalogue")
}

func scanHeaders(rows *sql.Rows, op string) ([]models.SnapshotHeader, error) {
	defer func() { _ = rows.Close() }()

	headers := make([]models.SnapshotHeader, 0)

	for rows.Next() {
		var raw string

		err := rows.Scan(&raw)
		if err != nil {
			return nil, persistence.NewStorageError(op, "", err)
		}

		var header models.SnapshotHeader

		err = json.Unmarshal([]byte(raw), &header)
		if err != nil {
			return nil, persistence.NewStorageError(op, "", fmt.Errorf("failed to unmarshal snapshot header: %w", err))
		}

		headers = append(headers, header)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStorageError(op, "", err)
	}

	return headers, nil
}
