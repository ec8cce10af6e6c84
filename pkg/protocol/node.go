// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
)

// Node is a configured node instance ready to run against resolved inputs.
type Node interface {
	ID() string
	Type() string

	// Execute runs the node once. Inputs are the outputs of upstream nodes
	// keyed by source port or source node id.
	Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error)
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the type tag handled by this factory
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}
