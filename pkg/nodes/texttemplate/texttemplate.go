// Package texttemplate provides the template node, which renders a text
// with {{path}} placeholders against its inputs.
package texttemplate

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes"
	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/dukex/flowdeck/pkg/template"
)

type TemplateNodeFactory struct{}

func NewTemplateNodeFactory() *TemplateNodeFactory {
	return &TemplateNodeFactory{}
}

func (f *TemplateNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewTemplateNode(id, config)
}

func (f *TemplateNodeFactory) ID() string {
	return models.NodeTypeTemplate
}

func (f *TemplateNodeFactory) Name() string {
	return "Template"
}

func (f *TemplateNodeFactory) Description() string {
	return "Renders a text template against the node inputs"
}

func (f *TemplateNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":     "string",
				"examples": []string{"Hello {{user.name}}"},
			},
		},
	}
}

type TemplateConfig struct {
	Template string `json:"template"`
}

type TemplateNode struct {
	id     string
	config TemplateConfig
}

func NewTemplateNode(id string, config map[string]any) (*TemplateNode, error) {
	var templateConfig TemplateConfig

	err := nodes.Decode(id, models.NodeTypeTemplate, config, &templateConfig)
	if err != nil {
		return nil, err
	}

	return &TemplateNode{id: id, config: templateConfig}, nil
}

func (n *TemplateNode) ID() string {
	return n.id
}

func (n *TemplateNode) Type() string {
	return models.NodeTypeTemplate
}

func (n *TemplateNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	text := template.Render(n.config.Template, inputs)

	return &models.NodeOutput{
		Data:           map[string]any{"text": text},
		ResolvedConfig: map[string]any{"template": n.config.Template},
	}, nil
}
