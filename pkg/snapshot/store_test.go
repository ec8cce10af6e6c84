package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/persistence/file"
	"github.com/dukex/flowdeck/pkg/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startedAt = time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, persistence.SnapshotRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := file.NewPersistence(t.TempDir()).SnapshotRepository()

	return NewStore(logger, repo, nil), repo
}

func largeSnapshot(id string) *models.ExecutionSnapshot {
	snap := testutil.CreateTestSnapshot(id, "wf-1", models.ExecutionStatusCompleted, startedAt)
	snap.NodeSnapshots["start"].Outputs = map[string]any{"text": strings.Repeat("lorem ipsum ", 500)}

	return snap
}

func TestStore_RoundTrip(t *testing.T) {
	for _, opts := range []models.SnapshotStorageOptions{
		DefaultStorageOptions(),
		{Compress: false},
		{Compress: true, CompressionLevel: 1},
		{Compress: true, CompressionLevel: 9},
		{Compress: true, CompressionLevel: 42},
	} {
		t.Run(fmt.Sprintf("compress=%v level=%d", opts.Compress, opts.CompressionLevel), func(t *testing.T) {
			store, repo := newTestStore(t)
			ctx := context.Background()
			snap := largeSnapshot("exec-1")

			require.NoError(t, store.Save(ctx, snap, opts))

			record, err := repo.Get(ctx, "exec-1")
			require.NoError(t, err)
			assert.Equal(t, opts.Compress, record.Header.Compressed)

			expected := *snap
			expected.Metadata.Compressed = record.Header.Compressed
			expected.Metadata.OriginalSize = record.Header.OriginalSize
			expected.Metadata.CompressedSize = record.Header.CompressedSize

			loaded, err := store.Get(ctx, "exec-1")
			require.NoError(t, err)
			assert.Equal(t, &expected, loaded)
			assert.Equal(t, opts.Compress, loaded.Metadata.Compressed)
			assert.Positive(t, loaded.Metadata.OriginalSize)

			if opts.Compress {
				require.NotNil(t, record.Header.CompressedSize)
				assert.Less(t, *record.Header.CompressedSize, record.Header.OriginalSize)
			} else {
				assert.Nil(t, record.Header.CompressedSize)
				assert.Equal(t, record.Header.OriginalSize, int64(len(record.Data)))
			}
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := testutil.CreateTestSnapshot("exec-1", "wf-1", models.ExecutionStatusFailed, startedAt)
	require.NoError(t, store.Save(ctx, first, DefaultStorageOptions()))

	second := testutil.CreateTestSnapshot("exec-1", "wf-1", models.ExecutionStatusCompleted, startedAt)
	require.NoError(t, store.Save(ctx, second, DefaultStorageOptions()))

	loaded, err := store.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
}

func TestStore_RedactsWithoutMutating(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	snap := testutil.CreateTestSnapshot("exec-1", "wf-1", models.ExecutionStatusCompleted, startedAt)
	snap.NodeSnapshots["start"].Inputs = map[string]any{
		"user":     "ada",
		"Password": "hunter2",
		"nested":   []any{map[string]any{"token": "abc", "keep": 1.0}},
	}
	snap.NodeSnapshots["start"].ResolvedConfig = map[string]any{"apiKey": "sk-1", "model": "gpt"}

	opts := DefaultStorageOptions()
	opts.ExcludeSensitiveData = true

	require.NoError(t, store.Save(ctx, snap, opts))

	assert.Equal(t, "hunter2", snap.NodeSnapshots["start"].Inputs.(map[string]any)["Password"])

	loaded, err := store.Get(ctx, "exec-1")
	require.NoError(t, err)

	node := loaded.NodeSnapshots["start"]
	assert.Equal(t, map[string]any{
		"user":     "ada",
		"Password": Redacted,
		"nested":   []any{map[string]any{"token": Redacted, "keep": 1.0}},
	}, node.Inputs)
	assert.Equal(t, map[string]any{"apiKey": Redacted, "model": "gpt"}, node.ResolvedConfig)
}

func TestStore_RedactsCustomFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	snap := testutil.CreateTestSnapshot("exec-1", "wf-1", models.ExecutionStatusCompleted, startedAt)
	snap.NodeSnapshots["start"].Outputs = map[string]any{"ssn": "123", "password": "kept"}

	opts := models.SnapshotStorageOptions{ExcludeSensitiveData: true, SensitiveFields: []string{"SSN"}}
	require.NoError(t, store.Save(ctx, snap, opts))

	node, err := store.NodeDetails(ctx, "exec-1", "start")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ssn": Redacted, "password": "kept"}, node.Outputs)
}

func TestStore_GetErrors(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrSnapshotNotFound)

	require.NoError(t, repo.Save(ctx, &models.SnapshotRecord{
		Header: models.SnapshotHeader{ExecutionID: "corrupt-gzip", Compressed: true},
		Data:   []byte("definitely not gzip"),
	}))

	_, err = store.Get(ctx, "corrupt-gzip")
	require.ErrorIs(t, err, ErrCompression)

	require.NoError(t, repo.Save(ctx, &models.SnapshotRecord{
		Header: models.SnapshotHeader{ExecutionID: "bad-json"},
		Data:   []byte("{not json"),
	}))

	_, err = store.Get(ctx, "bad-json")
	require.ErrorIs(t, err, ErrSerialization)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, largeSnapshot("exec-1"), DefaultStorageOptions()))
	require.NoError(t, store.Delete(ctx, "exec-1"))
	require.ErrorIs(t, store.Delete(ctx, "exec-1"), persistence.ErrSnapshotNotFound)
}

func TestStore_Recompress(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	snap := largeSnapshot("exec-1")
	require.NoError(t, store.Save(ctx, snap, models.SnapshotStorageOptions{Compress: false}))

	result, err := store.Recompress(ctx, "exec-1", 0)
	require.NoError(t, err)

	assert.Equal(t, "exec-1", result.ExecutionID)
	assert.Less(t, result.CompressedSize, result.OriginalSize)
	assert.InDelta(t, (1-float64(result.CompressedSize)/float64(result.OriginalSize))*100, result.CompressionRatio, 1e-9)
	assert.Greater(t, result.CompressionRatio, 50.0)

	loaded, err := store.Get(ctx, "exec-1")
	require.NoError(t, err)

	expected := *snap
	expected.Metadata.Compressed = true
	expected.Metadata.OriginalSize = result.OriginalSize
	expected.Metadata.CompressedSize = &result.CompressedSize
	assert.Equal(t, &expected, loaded)

	_, err = store.Recompress(ctx, "missing", 9)
	require.ErrorIs(t, err, persistence.ErrSnapshotNotFound)
}

func TestStore_ListAndStats(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.StorageStats{}, stats)

	for i := range 3 {
		snap := largeSnapshot(fmt.Sprintf("exec-%d", i))
		snap.StartedAt = startedAt.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, snap, DefaultStorageOptions()))
	}

	items, err := store.List(ctx, models.SnapshotFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "exec-2", items[0].ExecutionID)
	assert.Equal(t, "wf-1", items[0].WorkflowID)
	assert.Equal(t, 1, items[0].Summary.TotalNodes)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Greater(t, stats.TotalOriginalSize, stats.TotalCompressedSize)
	assert.InDelta(t, (1-float64(stats.TotalCompressedSize)/float64(stats.TotalOriginalSize))*100, stats.CompressionRatio, 1e-9)
	require.NotNil(t, stats.Oldest)
	require.NotNil(t, stats.Newest)
	assert.Equal(t, startedAt, *stats.Oldest)
	assert.Equal(t, startedAt.Add(2*time.Hour), *stats.Newest)
}

func TestStore_NodeDetailsUnknownNode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, largeSnapshot("exec-1"), DefaultStorageOptions()))

	_, err := store.NodeDetails(ctx, "exec-1", "nope")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGzipLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected int
	}{
		{0, gzip.DefaultCompression},
		{1, gzip.BestSpeed},
		{3, gzip.BestSpeed},
		{4, gzip.DefaultCompression},
		{6, gzip.DefaultCompression},
		{7, gzip.BestCompression},
		{9, gzip.BestCompression},
		{10, gzip.DefaultCompression},
		{-1, gzip.DefaultCompression},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, gzipLevel(tt.level), "level %d", tt.level)
	}
}
