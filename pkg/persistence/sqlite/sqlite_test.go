package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/persistence/persistencetest"
	"github.com/dukex/flowdeck/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPersistenceSuite(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Persistence {
		p, err := NewPersistence(context.Background(), testLogger(), ":memory:")
		require.NoError(t, err)

		t.Cleanup(func() { _ = p.Close(context.Background()) })

		return p
	})
}

func TestNewPersistence_ReopensFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flowdeck.db")

	p, err := NewPersistence(ctx, testLogger(), "sqlite://"+path)
	require.NoError(t, err)

	require.NoError(t, p.WorkflowRepository().Save(ctx, testutil.CreateLinearWorkflow("wf-1")))
	require.NoError(t, p.Close(ctx))

	reopened, err := NewPersistence(ctx, testLogger(), "sqlite://"+path)
	require.NoError(t, err)

	defer func() { _ = reopened.Close(ctx) }()

	wf, err := reopened.WorkflowRepository().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", wf.ID)

	var version int

	err = reopened.DB().QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}
