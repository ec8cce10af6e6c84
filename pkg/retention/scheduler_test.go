package retention

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RejectsInvalidSchedule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewScheduler(logger, newTestEngine(newMemoryCatalogue()), "every tuesday", CleanupOptions{})
	require.Error(t, err)

	_, err = NewScheduler(logger, newTestEngine(newMemoryCatalogue()), "@daily", CleanupOptions{})
	require.NoError(t, err)

	_, err = NewScheduler(logger, newTestEngine(newMemoryCatalogue()), "0 3 * * *", CleanupOptions{})
	require.NoError(t, err)
}

func TestScheduler_RunAppliesOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalogue := newMemoryCatalogue(
		entry("old", 40*day, 10, models.ExecutionStatusCompleted),
		entry("new", day, 10, models.ExecutionStatusCompleted),
	)

	scheduler, err := NewScheduler(logger, newTestEngine(catalogue), "@hourly", CleanupOptions{MaxAgeDays: ptr(30)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, scheduler.Start(ctx))
	scheduler.run()
	scheduler.Stop()

	assert.Equal(t, []string{"new"}, catalogue.ids())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	scheduler, err := NewScheduler(logger, newTestEngine(newMemoryCatalogue()), "@daily", CleanupOptions{})
	require.NoError(t, err)

	assert.NotPanics(t, scheduler.Stop)
}
