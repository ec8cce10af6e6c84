// Package chat provides the llm node, a single chat exchange with a model.
package chat

import (
	"context"

	"github.com/dukex/flowdeck/pkg/llm"
	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/dukex/flowdeck/pkg/secrets"
)

// LLMNodeFactory creates LLMNode instances bound to the configured clients.
// Any collaborator may be nil; nodes needing it fail at execution time.
type LLMNodeFactory struct {
	local  llm.ChatClient
	remote llm.ChatClient
	vault  secrets.Vault
}

func NewLLMNodeFactory(local, remote llm.ChatClient, vault secrets.Vault) *LLMNodeFactory {
	return &LLMNodeFactory{
		local:  local,
		remote: remote,
		vault:  vault,
	}
}

func (f *LLMNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewLLMNode(id, config, f.local, f.remote, f.vault)
}

func (f *LLMNodeFactory) ID() string {
	return models.NodeTypeLLM
}

func (f *LLMNodeFactory) Name() string {
	return "LLM"
}

func (f *LLMNodeFactory) Description() string {
	return "Sends a system and user prompt to a local or remote chat model"
}

func (f *LLMNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model": map[string]any{
				"type":        "string",
				"description": "Model name. Names prefixed with ollama: or naming a llama or mistral model run locally",
				"default":     DefaultModel,
			},
			"systemPrompt": map[string]any{"type": "string"},
			"userPrompt": map[string]any{
				"type":        "string",
				"description": "User prompt. Supports {{path}} placeholders resolved against the node inputs",
			},
			"temperature":    map[string]any{"type": "number", "minimum": 0, "maximum": 2},
			"maxTokens":      map[string]any{"type": "integer", "minimum": 1},
			"apiKeySecretId": map[string]any{"type": "string"},
		},
	}
}
