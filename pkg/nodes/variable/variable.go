// Package variable provides the variable node, which assigns named values
// rendered against its inputs.
package variable

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes"
	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/dukex/flowdeck/pkg/template"
)

type VariableNodeFactory struct{}

func NewVariableNodeFactory() *VariableNodeFactory {
	return &VariableNodeFactory{}
}

func (f *VariableNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewVariableNode(id, config)
}

func (f *VariableNodeFactory) ID() string {
	return models.NodeTypeVariable
}

func (f *VariableNodeFactory) Name() string {
	return "Variable"
}

func (f *VariableNodeFactory) Description() string {
	return "Sets named variables; string values support {{path}} placeholders"
}

func (f *VariableNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variables": map[string]any{"type": "object"},
		},
	}
}

type VariableConfig struct {
	Variables map[string]any `json:"variables"`
}

type VariableNode struct {
	id     string
	config VariableConfig
}

func NewVariableNode(id string, config map[string]any) (*VariableNode, error) {
	var variableConfig VariableConfig

	err := nodes.Decode(id, models.NodeTypeVariable, config, &variableConfig)
	if err != nil {
		return nil, err
	}

	return &VariableNode{id: id, config: variableConfig}, nil
}

func (n *VariableNode) ID() string {
	return n.id
}

func (n *VariableNode) Type() string {
	return models.NodeTypeVariable
}

func (n *VariableNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	return &models.NodeOutput{
		Data: template.RenderAll(n.config.Variables, inputs),
	}, nil
}
