package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes/passthrough"
	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/dukex/flowdeck/pkg/registry"
)

// Dispatcher turns a workflow node into a running node instance and executes it.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, registry *registry.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger.With("module", "dispatcher"),
	}
}

// Dispatch runs node against inputs. Unregistered types pass their inputs
// through unchanged. A panicking node is reported as a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, node *models.WorkflowNode, inputs map[string]any) (output *models.NodeOutput, err error) {
	instance, err := d.instance(ctx, node)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()

	output, err = instance.Execute(ctx, inputs)
	if err != nil {
		return nil, err
	}

	if output == nil {
		output = &models.NodeOutput{}
	}

	return output, nil
}

// nolint:ireturn
func (d *Dispatcher) instance(ctx context.Context, node *models.WorkflowNode) (protocol.Node, error) {
	if _, ok := d.registry.Factory(node.Type); !ok {
		d.logger.WarnContext(ctx, "unknown node type, passing inputs through",
			"node_id", node.ID,
			"node_type", node.Type,
		)

		return passthrough.New(node.ID, node.Type), nil
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	return d.registry.CreateNode(ctx, node.Type, node.ID, config)
}
