// Package conditional provides conditional branching node factory for registry integration.
package conditional

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/protocol"
)

// ConditionalNodeFactory creates ConditionalNode instances.
type ConditionalNodeFactory struct{}

func NewConditionalNodeFactory() *ConditionalNodeFactory {
	return &ConditionalNodeFactory{}
}

// Create creates a new ConditionalNode instance.
func (f *ConditionalNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewConditionalNode(id, config)
}

// ID returns the factory ID.
func (f *ConditionalNodeFactory) ID() string {
	return models.NodeTypeCondition
}

// Name returns the factory name.
func (f *ConditionalNodeFactory) Name() string {
	return "Condition"
}

// Description returns the factory description.
func (f *ConditionalNodeFactory) Description() string {
	return "Compares a field of the node inputs against a value and reports the chosen branch"
}

// Schema returns the JSON schema for conditional node configuration.
func (f *ConditionalNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "Dot separated path into the node inputs",
				"examples":    []string{"score", "fetch.body.items.0.id"},
			},
			"operator": map[string]any{
				"type":        "string",
				"description": "Comparison operator",
				"default":     OperatorEquals,
				"enum":        Operators,
			},
			"value": map[string]any{
				"description": "Value compared against the field",
			},
		},
	}
}
