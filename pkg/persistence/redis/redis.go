// Package redis provides Redis persistence. Records are JSON strings; sorted
// sets scored by start time in milliseconds index them for listing.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "flowdeck"

// Persistence implements the persistence layer on Redis.
type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
	keys   keys

	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	snapshotRepo  *SnapshotRepository
}

// NewPersistence connects to the redis:// URL and verifies the connection.
func NewPersistence(ctx context.Context, logger *slog.Logger, url string) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewPersistenceWithClient(logger, client, defaultPrefix), nil
}

// NewPersistenceWithClient wraps an existing client; every key starts with prefix.
func NewPersistenceWithClient(logger *slog.Logger, client redis.UniversalClient, prefix string) *Persistence {
	k := keys{prefix: strings.TrimSuffix(prefix, ":")}

	return &Persistence{
		client:        client,
		logger:        logger.With("module", "redis"),
		keys:          k,
		workflowRepo:  &WorkflowRepository{client: client, keys: k},
		executionRepo: &ExecutionRepository{client: client, keys: k},
		snapshotRepo:  &SnapshotRepository{client: client, keys: k},
	}
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) SnapshotRepository() persistence.SnapshotRepository {
	return p.snapshotRepo
}

type keys struct {
	prefix string
}

func (k keys) workflow(id string) string {
	return k.prefix + ":workflow:" + id
}

func (k keys) workflows() string {
	return k.prefix + ":workflows"
}

func (k keys) execution(id string) string {
	return k.prefix + ":execution:" + id
}

func (k keys) executions() string {
	return k.prefix + ":executions"
}

func (k keys) workflowExecutions(workflowID string) string {
	return k.prefix + ":executions:workflow:" + workflowID
}

func (k keys) snapshotHeader(id string) string {
	return k.prefix + ":snapshot:" + id + ":header"
}

func (k keys) snapshotData(id string) string {
	return k.prefix + ":snapshot:" + id + ":data"
}

func (k keys) snapshots() string {
	return k.prefix + ":snapshots"
}

func (k keys) workflowSnapshots(workflowID string) string {
	return k.prefix + ":snapshots:workflow:" + workflowID
}
