// Package snapshot persists compressed execution snapshots and reconstructs
// step by step views of past runs from them.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/flowdeck/pkg/metrics"
	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
)

// RecompressResult reports the sizes of a snapshot after recompression.
type RecompressResult struct {
	ExecutionID      string  `json:"execution_id"`
	OriginalSize     int64   `json:"original_size"`
	CompressedSize   int64   `json:"compressed_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Store encodes snapshots on top of a persistence.SnapshotRepository.
type Store struct {
	repo    persistence.SnapshotRepository
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStore(logger *slog.Logger, repo persistence.SnapshotRepository, m *metrics.Metrics) *Store {
	return &Store{
		repo:    repo,
		logger:  logger.With("module", "snapshot"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save serializes, optionally redacts and compresses snap, then stores it
// under its execution id, replacing any earlier snapshot. snap is not modified.
func (s *Store) Save(ctx context.Context, snap *models.ExecutionSnapshot, opts models.SnapshotStorageOptions) error {
	_, err := s.save(ctx, snap, opts)

	return err
}

func (s *Store) save(ctx context.Context, snap *models.ExecutionSnapshot, opts models.SnapshotStorageOptions) (*models.SnapshotHeader, error) {
	if opts.ExcludeSensitiveData {
		snap = redact(snap, opts.SensitiveFields)
	}

	record, err := encode(snap, opts)
	if err != nil {
		return nil, err
	}

	record.Header.CreatedAt = s.now()

	err = s.repo.Save(ctx, record)
	if err != nil {
		return nil, err
	}

	s.metrics.SnapshotWritten(record.Header.OriginalSize, record.Header.Size())
	s.logger.InfoContext(ctx, "snapshot saved",
		"execution_id", snap.ExecutionID,
		"original_size", record.Header.OriginalSize,
		"stored_size", record.Header.Size(),
	)

	return &record.Header, nil
}

// Get loads and decodes the snapshot of an execution.
func (s *Store) Get(ctx context.Context, executionID string) (*models.ExecutionSnapshot, error) {
	record, err := s.repo.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}

	snap, err := decode(record)
	if err != nil {
		return nil, err
	}

	snap.Metadata.Compressed = record.Header.Compressed
	snap.Metadata.OriginalSize = record.Header.OriginalSize
	snap.Metadata.CompressedSize = record.Header.CompressedSize

	return snap, nil
}

func (s *Store) Delete(ctx context.Context, executionID string) error {
	return s.repo.Delete(ctx, executionID)
}

// Recompress decodes a stored snapshot and stores it again compressed at
// level; a level of 0 selects RecompressLevel.
func (s *Store) Recompress(ctx context.Context, executionID string, level int) (*RecompressResult, error) {
	if level == 0 {
		level = RecompressLevel
	}

	snap, err := s.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}

	// Storage fields are derived from the record header on Get.
	snap.Metadata.Compressed = false
	snap.Metadata.OriginalSize = 0
	snap.Metadata.CompressedSize = nil

	header, err := s.save(ctx, snap, models.SnapshotStorageOptions{Compress: true, CompressionLevel: level})
	if err != nil {
		return nil, err
	}

	result := &RecompressResult{
		ExecutionID:    executionID,
		OriginalSize:   header.OriginalSize,
		CompressedSize: header.Size(),
	}

	if header.CompressedSize != nil && header.OriginalSize > 0 {
		result.CompressionRatio = (1 - float64(*header.CompressedSize)/float64(header.OriginalSize)) * 100
	}

	return result, nil
}

// List returns a page of snapshot summaries, newest first.
func (s *Store) List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotListItem, error) {
	headers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]models.SnapshotListItem, 0, len(headers))
	for _, h := range headers {
		items = append(items, models.SnapshotListItem{
			ExecutionID:  h.ExecutionID,
			WorkflowID:   h.WorkflowID,
			WorkflowName: h.WorkflowName,
			Status:       h.Status,
			StartedAt:    h.StartedAt,
			CompletedAt:  h.CompletedAt,
			DurationMs:   h.DurationMs,
			Summary:      h.Summary,
		})
	}

	return items, nil
}

// Stats aggregates sizes over every stored snapshot.
func (s *Store) Stats(ctx context.Context) (*models.StorageStats, error) {
	headers, err := s.repo.Catalogue(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.StorageStats{TotalCount: len(headers)}

	for i := range headers {
		h := &headers[i]

		stats.TotalOriginalSize += h.OriginalSize
		stats.TotalCompressedSize += h.Size()

		startedAt := h.StartedAt
		if stats.Oldest == nil || startedAt.Before(*stats.Oldest) {
			stats.Oldest = &startedAt
		}

		if stats.Newest == nil || startedAt.After(*stats.Newest) {
			stats.Newest = &startedAt
		}
	}

	if stats.TotalOriginalSize > 0 {
		stats.CompressionRatio = (1 - float64(stats.TotalCompressedSize)/float64(stats.TotalOriginalSize)) * 100
	}

	return stats, nil
}

// Timeline reconstructs the ordered step view of a stored run.
func (s *Store) Timeline(ctx context.Context, executionID string) (*models.TimelineView, error) {
	snap, err := s.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}

	return BuildTimeline(snap), nil
}

// NodeDetails returns the captured state of one node of a stored run.
func (s *Store) NodeDetails(ctx context.Context, executionID, nodeID string) (*models.NodeSnapshot, error) {
	snap, err := s.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}

	node, ok := snap.NodeSnapshots[nodeID]
	if !ok || node == nil {
		return nil, ErrNodeNotFound
	}

	return node, nil
}
