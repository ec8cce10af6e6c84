// Package passthrough provides nodes that hand their inputs on unchanged,
// used for the start and end markers of a workflow.
package passthrough

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/protocol"
)

type PassthroughNodeFactory struct {
	nodeType    string
	name        string
	description string
}

func NewStartNodeFactory() *PassthroughNodeFactory {
	return &PassthroughNodeFactory{
		nodeType:    models.NodeTypeStart,
		name:        "Start",
		description: "Entry point; receives the run inputs",
	}
}

func NewEndNodeFactory() *PassthroughNodeFactory {
	return &PassthroughNodeFactory{
		nodeType:    models.NodeTypeEnd,
		name:        "End",
		description: "Collects its inputs as the run outputs",
	}
}

func (f *PassthroughNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return &PassthroughNode{id: id, nodeType: f.nodeType}, nil
}

func (f *PassthroughNodeFactory) ID() string {
	return f.nodeType
}

func (f *PassthroughNodeFactory) Name() string {
	return f.name
}

func (f *PassthroughNodeFactory) Description() string {
	return f.description
}

func (f *PassthroughNodeFactory) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

type PassthroughNode struct {
	id       string
	nodeType string
}

// New creates a pass-through node for any type tag.
func New(id, nodeType string) *PassthroughNode {
	return &PassthroughNode{id: id, nodeType: nodeType}
}

func (n *PassthroughNode) ID() string {
	return n.id
}

func (n *PassthroughNode) Type() string {
	return n.nodeType
}

func (n *PassthroughNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	return &models.NodeOutput{Data: inputs}, nil
}
