package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/flowdeck/pkg/llm"
	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes"
	"github.com/dukex/flowdeck/pkg/secrets"
	"github.com/dukex/flowdeck/pkg/template"
)

const (
	DefaultModel = "gpt-4o-mini"
	localPrefix  = "ollama:"
)

type LLMConfig struct {
	Model          string   `json:"model"`
	SystemPrompt   string   `json:"systemPrompt"`
	UserPrompt     string   `json:"userPrompt"`
	Temperature    *float64 `json:"temperature,omitempty"    validate:"omitempty,gte=0,lte=2"`
	MaxTokens      *int     `json:"maxTokens,omitempty"      validate:"omitempty,gte=1"`
	APIKeySecretID string   `json:"apiKeySecretId,omitempty"`
}

type LLMNode struct {
	id     string
	config LLMConfig
	local  llm.ChatClient
	remote llm.ChatClient
	vault  secrets.Vault
}

func NewLLMNode(id string, config map[string]any, local, remote llm.ChatClient, vault secrets.Vault) (*LLMNode, error) {
	var llmConfig LLMConfig

	err := nodes.Decode(id, models.NodeTypeLLM, config, &llmConfig)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(llmConfig.Model) == "" {
		llmConfig.Model = DefaultModel
	}

	err = nodes.Validate(id, models.NodeTypeLLM, &llmConfig)
	if err != nil {
		return nil, err
	}

	return &LLMNode{
		id:     id,
		config: llmConfig,
		local:  local,
		remote: remote,
		vault:  vault,
	}, nil
}

func (n *LLMNode) ID() string {
	return n.id
}

func (n *LLMNode) Type() string {
	return models.NodeTypeLLM
}

// IsLocalModel reports whether model runs on the local inference server and
// the name to send it under.
func IsLocalModel(model string) (string, bool) {
	if name, ok := strings.CutPrefix(model, localPrefix); ok {
		return name, true
	}

	lower := strings.ToLower(model)
	if strings.Contains(lower, "llama") || strings.Contains(lower, "mistral") {
		return model, true
	}

	return model, false
}

func (n *LLMNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	userPrompt := template.Render(n.config.UserPrompt, inputs)

	request := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: n.config.SystemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Options: n.options(),
	}

	model, local := IsLocalModel(n.config.Model)
	request.Model = model

	client := n.remote
	provider := "remote"

	if local {
		client = n.local
		provider = "local"
	}

	if client == nil {
		return nil, fmt.Errorf("%w: %s model %s", llm.ErrNoProvider, provider, n.config.Model)
	}

	if !local && n.config.APIKeySecretID != "" {
		if n.vault == nil {
			return nil, fmt.Errorf("no secret vault configured for secret %s", n.config.APIKeySecretID)
		}

		apiKey, err := n.vault.Decrypt(ctx, n.config.APIKeySecretID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt api key: %w", err)
		}

		request.APIKey = apiKey
	}

	response, err := client.Chat(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%s model call failed: %w", provider, err)
	}

	metadata := &models.NodeMetadata{Model: &response.Model}

	if total := response.TotalTokens(); total > 0 {
		prompt := response.PromptTokens
		completion := response.CompletionTokens
		metadata.TokensUsed = &total
		metadata.PromptTokens = &prompt
		metadata.CompletionTokens = &completion
	}

	return &models.NodeOutput{
		Data: map[string]any{
			"text":  response.Text,
			"model": response.Model,
		},
		ResolvedConfig: map[string]any{
			"model":        model,
			"provider":     provider,
			"systemPrompt": n.config.SystemPrompt,
			"userPrompt":   userPrompt,
		},
		Metadata: metadata,
	}, nil
}

func (n *LLMNode) options() map[string]any {
	options := map[string]any{}

	if n.config.Temperature != nil {
		options["temperature"] = *n.config.Temperature
	}

	if n.config.MaxTokens != nil {
		options["maxTokens"] = float64(*n.config.MaxTokens)
	}

	return options
}
