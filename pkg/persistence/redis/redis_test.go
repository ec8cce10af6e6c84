package redis

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/persistence/persistencetest"
	"github.com/dukex/flowdeck/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Persistence) {
	t.Helper()

	mr := miniredis.RunT(t)

	p, err := NewPersistence(context.Background(), testLogger(), "redis://"+mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Close(context.Background()) })

	return mr, p
}

func TestPersistenceSuite(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Persistence {
		_, p := setupTestRedis(t)

		return p
	})
}

func TestPersistence_KeyLayout(t *testing.T) {
	mr, p := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, p.WorkflowRepository().Save(ctx, testutil.CreateLinearWorkflow("wf-1")))

	assert.True(t, mr.Exists("flowdeck:workflow:wf-1"))

	members, err := mr.ZMembers("flowdeck:workflows")
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-1"}, members)
}

func TestPersistence_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	p := NewPersistenceWithClient(testLogger(), client, "tenant-a:")

	defer func() { _ = p.Close(context.Background()) }()

	require.NoError(t, p.WorkflowRepository().Save(context.Background(), testutil.CreateLinearWorkflow("wf-1")))
	assert.True(t, mr.Exists("tenant-a:workflow:wf-1"))
}

func TestNewPersistence_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewPersistence(context.Background(), testLogger(), "redis://"+addr)
	require.Error(t, err)

	_, err = NewPersistence(context.Background(), testLogger(), "not a url")
	require.Error(t, err)
}

func TestPersistence_HealthCheckAfterServerStops(t *testing.T) {
	mr, p := setupTestRedis(t)

	require.NoError(t, p.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, p.HealthCheck(context.Background()))
}
