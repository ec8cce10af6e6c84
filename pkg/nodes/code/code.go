// Package code provides the code node. Scripts are not interpreted; the node
// hands its inputs on unchanged.
package code

import (
	"context"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/protocol"
)

type CodeNodeFactory struct{}

func NewCodeNodeFactory() *CodeNodeFactory {
	return &CodeNodeFactory{}
}

func (f *CodeNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	language, _ := config["language"].(string)

	return &CodeNode{id: id, language: language}, nil
}

func (f *CodeNodeFactory) ID() string {
	return models.NodeTypeCode
}

func (f *CodeNodeFactory) Name() string {
	return "Code"
}

func (f *CodeNodeFactory) Description() string {
	return "Placeholder for custom code; passes its inputs through"
}

func (f *CodeNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"language": map[string]any{"type": "string"},
			"code":     map[string]any{"type": "string"},
		},
	}
}

type CodeNode struct {
	id       string
	language string
}

func (n *CodeNode) ID() string {
	return n.id
}

func (n *CodeNode) Type() string {
	return models.NodeTypeCode
}

func (n *CodeNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	return &models.NodeOutput{
		Data: inputs,
		Logs: []models.NodeLogEntry{{
			Level:     "info",
			Message:   "code is not executed, inputs passed through",
			Timestamp: time.Now().UTC(),
			Data:      map[string]any{"language": n.language},
		}},
	}, nil
}
