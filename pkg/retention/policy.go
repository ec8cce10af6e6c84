// Package retention bounds snapshot storage by age, count, total size and
// failure status.
package retention

import (
	"sort"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
)

const bytesPerMB = 1024 * 1024

// CleanupOptions select which snapshots a cleanup removes. Nil criteria are
// skipped.
type CleanupOptions struct {
	MaxCount       *int   `json:"max_count,omitempty"         validate:"omitempty,min=0"`
	MaxAgeDays     *int   `json:"max_age_days,omitempty"      validate:"omitempty,min=0"`
	MaxTotalSizeMB *int64 `json:"max_total_size_mb,omitempty" validate:"omitempty,min=0"`
	FailedOnly     bool   `json:"failed_only"`
	DryRun         bool   `json:"dry_run"`
}

// Plan is the set of snapshots a cleanup removes, in selection order.
type Plan struct {
	IDs        []string
	FreedBytes int64
}

// SelectByAge returns the entries started more than days before now.
func SelectByAge(entries []models.SnapshotHeader, now time.Time, days int) []models.SnapshotHeader {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var selected []models.SnapshotHeader

	for _, entry := range entries {
		if entry.StartedAt.Before(cutoff) {
			selected = append(selected, entry)
		}
	}

	return selected
}

// SelectByCount keeps the keep most recent entries and returns the rest,
// newest first.
func SelectByCount(entries []models.SnapshotHeader, keep int) []models.SnapshotHeader {
	if keep < 0 {
		keep = 0
	}

	if len(entries) <= keep {
		return nil
	}

	return newestFirst(entries)[keep:]
}

// SelectBySize walks entries oldest first, selecting unmarked ones until the
// bytes they free cover the excess of the total size over budget. The total
// is taken over all entries, including those already marked.
func SelectBySize(entries []models.SnapshotHeader, budget int64, marked map[string]bool) []models.SnapshotHeader {
	var total int64
	for i := range entries {
		total += entries[i].Size()
	}

	if total <= budget {
		return nil
	}

	excess := total - budget

	var (
		freed    int64
		selected []models.SnapshotHeader
	)

	for _, entry := range oldestFirst(entries) {
		if freed >= excess {
			break
		}

		if marked[entry.ExecutionID] {
			continue
		}

		selected = append(selected, entry)
		freed += entry.Size()
	}

	return selected
}

// SelectFailed returns the entries of failed runs.
func SelectFailed(entries []models.SnapshotHeader) []models.SnapshotHeader {
	var selected []models.SnapshotHeader

	for _, entry := range entries {
		if entry.Status == models.ExecutionStatusFailed {
			selected = append(selected, entry)
		}
	}

	return selected
}

// NewPlan applies age, count, size and failure criteria in that order. Every
// id appears once and its size is counted once, whichever criteria chose it.
func NewPlan(entries []models.SnapshotHeader, opts CleanupOptions, now time.Time) Plan {
	entries = oldestFirst(entries)

	plan := Plan{IDs: []string{}}
	marked := make(map[string]bool)

	mark := func(selected []models.SnapshotHeader) {
		for i := range selected {
			if marked[selected[i].ExecutionID] {
				continue
			}

			marked[selected[i].ExecutionID] = true
			plan.IDs = append(plan.IDs, selected[i].ExecutionID)
			plan.FreedBytes += selected[i].Size()
		}
	}

	if opts.MaxAgeDays != nil {
		mark(SelectByAge(entries, now, *opts.MaxAgeDays))
	}

	if opts.MaxCount != nil {
		mark(SelectByCount(entries, *opts.MaxCount))
	}

	if opts.MaxTotalSizeMB != nil {
		mark(SelectBySize(entries, *opts.MaxTotalSizeMB*bytesPerMB, marked))
	}

	if opts.FailedOnly {
		mark(SelectFailed(entries))
	}

	return plan
}

func oldestFirst(entries []models.SnapshotHeader) []models.SnapshotHeader {
	sorted := append([]models.SnapshotHeader(nil), entries...)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartedAt.Equal(sorted[j].StartedAt) {
			return sorted[i].ExecutionID < sorted[j].ExecutionID
		}

		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	return sorted
}

func newestFirst(entries []models.SnapshotHeader) []models.SnapshotHeader {
	sorted := append([]models.SnapshotHeader(nil), entries...)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartedAt.Equal(sorted[j].StartedAt) {
			return sorted[i].ExecutionID > sorted[j].ExecutionID
		}

		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})

	return sorted
}
