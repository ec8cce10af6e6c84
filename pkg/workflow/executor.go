// Package workflow schedules and runs workflows node by node.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowdeck/pkg/eventbus"
	"github.com/dukex/flowdeck/pkg/events"
	"github.com/dukex/flowdeck/pkg/metrics"
	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/otelhelper"
	"github.com/dukex/flowdeck/pkg/runs"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecutionStore persists execution records.
type ExecutionStore interface {
	Save(ctx context.Context, execution *models.Execution) error
}

// SnapshotSaver stores the snapshot of a finished run.
type SnapshotSaver interface {
	Save(ctx context.Context, snapshot *models.ExecutionSnapshot, opts models.SnapshotStorageOptions) error
}

// Executor drives runs: it orders the graph, dispatches every node, keeps the
// execution record current and publishes lifecycle events.
type Executor struct {
	logger     *slog.Logger
	dispatcher *Dispatcher
	runs       *runs.Registry
	executions ExecutionStore
	publisher  eventbus.EventPublisher

	snapshots       SnapshotSaver
	snapshotOptions models.SnapshotStorageOptions

	tracer  trace.Tracer
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Executor)

type keyedEvent interface {
	eventbus.Event
	Key() string
}

// WithSnapshots captures a snapshot of every finished run.
func WithSnapshots(saver SnapshotSaver, opts models.SnapshotStorageOptions) Option {
	return func(e *Executor) {
		e.snapshots = saver
		e.snapshotOptions = opts
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

func NewExecutor(
	logger *slog.Logger,
	dispatcher *Dispatcher,
	registry *runs.Registry,
	executions ExecutionStore,
	publisher eventbus.EventPublisher,
	opts ...Option,
) *Executor {
	e := &Executor{
		logger:     logger.With("module", "executor"),
		dispatcher: dispatcher,
		runs:       registry,
		executions: executions,
		publisher:  publisher,
		tracer:     otelhelper.DefaultTracer(),
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start registers a new run, persists its running record, publishes the
// started event and executes the graph in the background. It returns once the
// run is registered; cancelling ctx afterwards does not stop the run.
func (e *Executor) Start(ctx context.Context, wf *models.Workflow, inputs any) (*models.Execution, error) {
	execution, runCtx, err := e.begin(ctx, wf, inputs)
	if err != nil {
		return nil, err
	}

	started := *execution
	started.NodeResults = []models.NodeResult{}

	go e.Run(context.WithoutCancel(ctx), wf, execution, runCtx)

	return &started, nil
}

// Execute runs the workflow to completion on the calling goroutine.
func (e *Executor) Execute(ctx context.Context, wf *models.Workflow, inputs any) (*models.Execution, error) {
	execution, runCtx, err := e.begin(ctx, wf, inputs)
	if err != nil {
		return nil, err
	}

	return e.Run(ctx, wf, execution, runCtx), nil
}

func (e *Executor) begin(ctx context.Context, wf *models.Workflow, inputs any) (*models.Execution, *runs.RunContext, error) {
	if inputs == nil {
		inputs = map[string]any{}
	}

	id := uuid.NewString()
	runCtx := e.runs.Register(id, wf.ID)

	execution := &models.Execution{
		ID:          id,
		WorkflowID:  wf.ID,
		Status:      models.ExecutionStatusRunning,
		Inputs:      inputs,
		StartedAt:   runCtx.StartedAt,
		NodeResults: []models.NodeResult{},
	}

	if err := e.executions.Save(ctx, execution); err != nil {
		e.runs.Remove(id)

		return nil, nil, fmt.Errorf("failed to record execution start: %w", err)
	}

	e.metrics.RunStarted()
	e.publish(ctx, events.ExecutionStarted{
		BaseEvent: events.NewBaseEvent(events.ExecutionStartedEvent, id, wf.ID),
	})

	e.logger.InfoContext(ctx, "execution started", "execution_id", id, "workflow_id", wf.ID)

	return execution, runCtx, nil
}

// Run walks the graph in topological order and finalizes execution. The run
// is removed from the registry on return, whatever the outcome.
func (e *Executor) Run(ctx context.Context, wf *models.Workflow, execution *models.Execution, runCtx *runs.RunContext) *models.Execution {
	defer e.runs.Remove(execution.ID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	logger := e.logger.With("execution_id", execution.ID, "workflow_id", wf.ID)

	order := ExecutionOrder(wf)
	if omitted := DetectCycle(wf); len(omitted) > 0 {
		logger.WarnContext(ctx, "nodes on a cycle will not run", "nodes", omitted)
	}

	state := newRunState()

	for _, node := range wf.Nodes {
		if node.Type == models.NodeTypeStart {
			state.outputs[node.ID] = execution.Inputs
		}
	}

	var (
		runErr     error
		failedNode *string
		outputs    any = map[string]any{}
		completed  int
		total      = len(wf.Nodes)
	)

	for _, nodeID := range order {
		if runCtx.Cancelled() {
			runErr = ErrCancelled

			break
		}

		node := wf.NodeByID(nodeID)

		if node.Type == models.NodeTypeStart {
			state.recordSuccess(node, execution.Inputs, &models.NodeOutput{Data: execution.Inputs}, e.now(), 0)
			completed++

			continue
		}

		inputs := GatherInputs(wf, nodeID, state.outputs)

		e.publish(ctx, events.NodeStarted{
			BaseEvent: events.NewBaseEvent(events.NodeStartedEvent, execution.ID, wf.ID),
			NodeID:    nodeID,
			NodeType:  node.Type,
		})

		startedAt := e.now()
		output, err := e.dispatch(ctx, node, inputs)
		elapsed := e.now().Sub(startedAt)

		if err != nil {
			state.recordFailure(node, inputs, err, startedAt, elapsed)
			e.metrics.NodeFinished(node.Type, string(models.NodeStatusFailed), elapsed)

			e.publish(ctx, events.NodeFailed{
				BaseEvent: events.NewBaseEvent(events.NodeFailedEvent, execution.ID, wf.ID),
				NodeID:    nodeID,
				Error:     err.Error(),
			})

			logger.ErrorContext(ctx, "node failed", "node_id", nodeID, "node_type", node.Type, "error", err)

			runErr = &NodeExecutionError{NodeID: nodeID, NodeType: node.Type, Err: err}
			failedNode = &nodeID

			break
		}

		state.recordSuccess(node, inputs, output, startedAt, elapsed)
		e.metrics.NodeFinished(node.Type, string(models.NodeStatusCompleted), elapsed)
		completed++

		e.publish(ctx, events.NodeCompleted{
			BaseEvent:  events.NewBaseEvent(events.NodeCompletedEvent, execution.ID, wf.ID),
			NodeID:     nodeID,
			Outputs:    output.Data,
			DurationMs: elapsed.Milliseconds(),
		})

		current := nodeID
		e.publish(ctx, events.ExecutionProgress{
			BaseEvent:   events.NewBaseEvent(events.ExecutionProgressEvent, execution.ID, wf.ID),
			Completed:   completed,
			Total:       total,
			CurrentNode: &current,
		})

		if node.Type == models.NodeTypeEnd {
			outputs = inputs
		}
	}

	e.finish(ctx, wf, execution, state, runCtx, outputs, runErr, failedNode)

	spanErr := runErr
	if errors.Is(runErr, ErrCancelled) {
		spanErr = nil
	}

	otelhelper.SetOutcome(span, string(execution.Status), spanErr)

	return execution
}

func (e *Executor) finish(
	ctx context.Context,
	wf *models.Workflow,
	execution *models.Execution,
	state *runState,
	runCtx *runs.RunContext,
	outputs any,
	runErr error,
	failedNode *string,
) {
	completedAt := e.now()
	elapsed := completedAt.Sub(execution.StartedAt)
	durationMs := elapsed.Milliseconds()

	execution.CompletedAt = &completedAt
	execution.DurationMs = &durationMs
	execution.NodeResults = state.results

	base := func(eventType events.EventType) events.BaseEvent {
		return events.NewBaseEvent(eventType, execution.ID, wf.ID)
	}

	var terminal keyedEvent

	switch {
	case runErr == nil:
		execution.Status = models.ExecutionStatusCompleted
		execution.Outputs = outputs
		terminal = events.ExecutionCompleted{
			BaseEvent:  base(events.ExecutionCompletedEvent),
			Outputs:    outputs,
			DurationMs: durationMs,
		}
	case errors.Is(runErr, ErrCancelled) || runCtx.Cancelled():
		message := ErrCancelled.Error()
		execution.Status = models.ExecutionStatusCancelled
		execution.Error = &message
		terminal = events.ExecutionCancelled{BaseEvent: base(events.ExecutionCancelledEvent)}
	default:
		message := runErr.Error()
		execution.Status = models.ExecutionStatusFailed
		execution.Error = &message
		terminal = events.ExecutionFailed{
			BaseEvent:  base(events.ExecutionFailedEvent),
			Error:      message,
			FailedNode: failedNode,
		}
	}

	logger := e.logger.With("execution_id", execution.ID, "workflow_id", wf.ID)

	if err := e.executions.Save(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "failed to record execution result", "status", execution.Status, "error", err)
	}

	e.publish(ctx, terminal)
	e.metrics.RunFinished(string(execution.Status), elapsed)

	logger.InfoContext(ctx, "execution finished", "status", execution.Status, "duration_ms", durationMs)

	if e.snapshots == nil {
		return
	}

	snapshot := state.snapshot(wf, execution, failedNode, e.now())
	if err := e.snapshots.Save(ctx, snapshot, e.snapshotOptions); err != nil {
		logger.ErrorContext(ctx, "failed to save execution snapshot", "error", err)
	}
}

func (e *Executor) dispatch(ctx context.Context, node *models.WorkflowNode, inputs map[string]any) (*models.NodeOutput, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	output, err := e.dispatcher.Dispatch(ctx, node, inputs)
	if err != nil {
		otelhelper.SetOutcome(span, string(models.NodeStatusFailed), err)

		return nil, err
	}

	otelhelper.SetOutcome(span, string(models.NodeStatusCompleted), nil)

	return output, nil
}

// publish is fire and forget: a failed publish never affects the run.
func (e *Executor) publish(ctx context.Context, event keyedEvent) {
	if err := e.publisher.Publish(ctx, event.Key(), event); err != nil {
		e.metrics.PublishFailed(string(event.GetType()))
		e.logger.WarnContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
