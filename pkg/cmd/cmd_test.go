package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukex/flowdeck/pkg/persistence/file"
	"github.com/dukex/flowdeck/pkg/persistence/redis"
	"github.com/dukex/flowdeck/pkg/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	tests := map[string]string{
		"./data":                        "file",
		"file:///var/lib/flowdeck":      "file",
		"postgres://u:p@localhost/db":   "postgres",
		"postgresql://u:p@localhost/db": "postgresql",
		"sqlite://flowdeck.db":          "sqlite",
		"redis://localhost:6379/0":      "redis",
		"mongodb://localhost":           "file",
	}

	for url, expected := range tests {
		assert.Equal(t, expected, parsePersistenceProvider(url), url)
	}
}

func TestNewPersistence(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	p, err := NewPersistence(ctx, logger, "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)

	p, err = NewPersistence(ctx, logger, "sqlite://:memory:")
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Persistence{}, p)
	require.NoError(t, p.Close(ctx))

	server := miniredis.RunT(t)

	p, err = NewPersistence(ctx, logger, "redis://"+server.Addr())
	require.NoError(t, err)
	assert.IsType(t, &redis.Persistence{}, p)
	require.NoError(t, p.Close(ctx))

	_, err = NewPersistence(ctx, logger, "")
	require.Error(t, err)
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("gochannel", "", slog.Default())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", "", slog.Default())
	require.Error(t, err)

	_, err = NewEventBus("nats", "", slog.Default())
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	collaborators := NewCollaborators(CollaboratorConfig{OllamaURL: "http://localhost:11434"}, slog.Default())
	assert.NotNil(t, collaborators.LocalModel)
	assert.Nil(t, collaborators.RemoteModel)
	assert.Nil(t, collaborators.Vault)

	reg, err := NewRegistry(slog.Default(), t.TempDir(), collaborators)
	require.NoError(t, err)

	_, ok := reg.Factory("llm")
	assert.True(t, ok)
}
