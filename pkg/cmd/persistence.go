package cmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/persistence/file"
	"github.com/dukex/flowdeck/pkg/persistence/postgresql"
	"github.com/dukex/flowdeck/pkg/persistence/redis"
	"github.com/dukex/flowdeck/pkg/persistence/sqlite"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "sqlite", "redis", "rediss"}

// NewPersistence opens the backend named by the scheme of databaseURL. A URL
// without a known scheme is taken as a directory for file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	var (
		p   persistence.Persistence
		err error
	)

	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err = postgresql.NewPersistence(ctx, logger, databaseURL)
	case "sqlite":
		p, err = sqlite.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		p, err = redis.NewPersistence(ctx, logger, databaseURL)
	default:
		root := strings.TrimPrefix(databaseURL, "file://")
		if root == "" {
			return nil, errors.New("database url is empty")
		}

		return file.NewPersistence(root), nil
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
