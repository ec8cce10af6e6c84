package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowdeck/pkg/cmd"
	"github.com/dukex/flowdeck/pkg/eventbus"
	"github.com/dukex/flowdeck/pkg/log"
	"github.com/dukex/flowdeck/pkg/metrics"
	"github.com/dukex/flowdeck/pkg/otelhelper"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/registry"
	"github.com/dukex/flowdeck/pkg/retention"
	"github.com/dukex/flowdeck/pkg/runs"
	"github.com/dukex/flowdeck/pkg/snapshot"
	"github.com/dukex/flowdeck/pkg/workflow"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

const (
	serviceName  = "flowdeck"
	secretPrefix = "FLOWDECK_SECRET_"
)

// stack holds the components shared by every subcommand.
type stack struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	registry    *registry.Registry
	runs        *runs.Registry
	prometheus  *prometheus.Registry
	metrics     *metrics.Metrics
	snapshots   *snapshot.Store
	retention   *retention.Engine
	executor    *workflow.Executor

	closers []func(context.Context) error
}

func newStack(ctx context.Context, command *cli.Command, module string) (*stack, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	s := &stack{
		logger:     log.WithModule(module),
		runs:       runs.NewRegistry(),
		prometheus: prometheus.NewRegistry(),
	}

	s.metrics = metrics.New(s.prometheus)

	p, err := cmd.NewPersistence(ctx, s.logger, command.String("database-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to open persistence: %w", err)
	}

	s.persistence = p
	s.closers = append(s.closers, p.Close)

	bus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), s.logger)
	if err != nil {
		s.Close(ctx)

		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	s.eventBus = bus
	s.closers = append(s.closers, func(context.Context) error { return bus.Close() })

	collaborators := cmd.NewCollaborators(cmd.CollaboratorConfig{
		OllamaURL:     command.String("ollama-url"),
		OpenAIBaseURL: command.String("openai-base-url"),
		OpenAIAPIKey:  command.String("openai-api-key"),
		SecretKeyVar:  command.String("secret-key-var"),
		SecretPrefix:  secretPrefix,
	}, s.logger)

	s.registry, err = cmd.NewRegistry(s.logger, command.String("plugins-path"), collaborators)
	if err != nil {
		s.Close(ctx)

		return nil, err
	}

	s.snapshots = snapshot.NewStore(s.logger, p.SnapshotRepository(), s.metrics)
	s.retention = retention.NewEngine(s.logger, p.SnapshotRepository(), s.metrics)

	opts := []workflow.Option{workflow.WithMetrics(s.metrics)}

	if command.Bool("capture-snapshots") {
		storageOptions := snapshot.DefaultStorageOptions()
		storageOptions.ExcludeSensitiveData = command.Bool("redact-snapshots")
		opts = append(opts, workflow.WithSnapshots(s.snapshots, storageOptions))
	}

	if command.Bool("otel-enabled") {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			s.Close(ctx)

			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		s.closers = append(s.closers, shutdown)
		opts = append(opts, workflow.WithTracer(tracer))
	}

	s.executor = workflow.NewExecutor(
		s.logger,
		workflow.NewDispatcher(s.logger, s.registry),
		s.runs,
		p.ExecutionRepository(),
		bus,
		opts...,
	)

	return s, nil
}

// Close releases the components in reverse order of creation.
func (s *stack) Close(ctx context.Context) {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to close resources", "error", err)
	}
}
