package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/flowdeck/pkg/metrics"
	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidOptions indicates negative cleanup criteria.
var ErrInvalidOptions = errors.New("invalid cleanup options")

// Catalogue is the part of the snapshot storage the engine works on.
type Catalogue interface {
	Catalogue(ctx context.Context) ([]models.SnapshotHeader, error)
	Delete(ctx context.Context, executionID string) error
}

type CleanupResult struct {
	DeletedCount int      `json:"deleted_count"`
	FreedBytes   int64    `json:"freed_bytes"`
	DeletedIDs   []string `json:"deleted_ids"`
}

// Engine plans and applies cleanups. Cleanups on one Engine never overlap.
type Engine struct {
	catalogue Catalogue
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validate  *validator.Validate
	now       func() time.Time
	mu        sync.Mutex
}

func NewEngine(logger *slog.Logger, catalogue Catalogue, m *metrics.Metrics) *Engine {
	return &Engine{
		catalogue: catalogue,
		logger:    logger.With("module", "retention"),
		metrics:   m,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Cleanup computes the plan for opts over the current catalogue and, unless
// opts.DryRun is set, deletes every planned snapshot. A dry run reports the
// same result without touching storage. If a delete fails, the returned
// result lists the snapshots removed before the failure.
func (e *Engine) Cleanup(ctx context.Context, opts CleanupOptions) (*CleanupResult, error) {
	err := e.validate.Struct(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries, err := e.catalogue.Catalogue(ctx)
	if err != nil {
		return nil, err
	}

	plan := NewPlan(entries, opts, e.now())

	if !opts.DryRun {
		result, err := e.apply(ctx, entries, plan)
		if err != nil {
			return result, err
		}
	}

	e.logger.InfoContext(ctx, "cleanup complete",
		"deleted", len(plan.IDs),
		"freed_bytes", plan.FreedBytes,
		"dry_run", opts.DryRun,
	)

	return &CleanupResult{
		DeletedCount: len(plan.IDs),
		FreedBytes:   plan.FreedBytes,
		DeletedIDs:   plan.IDs,
	}, nil
}

// apply deletes the planned snapshots in order. When a delete fails it stops
// and returns what was removed so far along with the error.
func (e *Engine) apply(ctx context.Context, entries []models.SnapshotHeader, plan Plan) (*CleanupResult, error) {
	sizes := make(map[string]int64, len(entries))
	for i := range entries {
		sizes[entries[i].ExecutionID] = entries[i].Size()
	}

	partial := &CleanupResult{DeletedIDs: []string{}}

	for _, id := range plan.IDs {
		err := e.catalogue.Delete(ctx, id)
		if err != nil && !persistence.IsSnapshotNotFound(err) {
			e.metrics.SnapshotsDeleted(partial.DeletedCount)
			e.logger.ErrorContext(ctx, "cleanup aborted",
				"failed_id", id,
				"deleted", partial.DeletedCount,
				"deleted_ids", partial.DeletedIDs,
				"freed_bytes", partial.FreedBytes,
				"error", err,
			)

			return partial, fmt.Errorf("failed to delete snapshot %s: %w", id, err)
		}

		partial.DeletedIDs = append(partial.DeletedIDs, id)
		partial.DeletedCount++
		partial.FreedBytes += sizes[id]
	}

	e.metrics.SnapshotsDeleted(partial.DeletedCount)

	return partial, nil
}
