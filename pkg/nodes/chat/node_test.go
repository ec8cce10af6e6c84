package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/flowdeck/pkg/llm"
	"github.com/dukex/flowdeck/pkg/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	requests []llm.ChatRequest
	response *llm.ChatResponse
	err      error
}

func (c *recordingClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}

	return c.response, nil
}

type staticVault map[string]string

func (v staticVault) Decrypt(ctx context.Context, id string) (string, error) {
	value, ok := v[id]
	if !ok {
		return "", secrets.ErrSecretNotFound
	}

	return value, nil
}

func TestIsLocalModel(t *testing.T) {
	tests := []struct {
		model string
		name  string
		local bool
	}{
		{"ollama:qwen2", "qwen2", true},
		{"llama3.1", "llama3.1", true},
		{"Mistral-7B", "Mistral-7B", true},
		{"codellama:7b", "codellama:7b", true},
		{"gpt-4o-mini", "gpt-4o-mini", false},
		{"claude-3-haiku", "claude-3-haiku", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			name, local := IsLocalModel(tt.model)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.local, local)
		})
	}
}

func TestLLMNode_LocalModelGetsTwoMessages(t *testing.T) {
	local := &recordingClient{response: &llm.ChatResponse{Text: "bonjour", Model: "qwen2", PromptTokens: 3, CompletionTokens: 1}}
	remote := &recordingClient{}

	node, err := NewLLMNode("ask", map[string]any{
		"model":        "ollama:qwen2",
		"systemPrompt": "translate",
		"userPrompt":   "say {{word}}",
	}, local, remote, nil)
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"start": map[string]any{"word": "hello"}})
	require.NoError(t, err)

	require.Len(t, local.requests, 1)
	assert.Empty(t, remote.requests)
	assert.Equal(t, "qwen2", local.requests[0].Model)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleSystem, Content: "translate"},
		{Role: llm.RoleUser, Content: "say hello"},
	}, local.requests[0].Messages)

	assert.Equal(t, map[string]any{"text": "bonjour", "model": "qwen2"}, output.Data)
	assert.Equal(t, "qwen2", *output.Metadata.Model)
	assert.Equal(t, int64(4), *output.Metadata.TokensUsed)
}

func TestLLMNode_DefaultsToRemoteModelWithSecret(t *testing.T) {
	remote := &recordingClient{response: &llm.ChatResponse{Text: "ok", Model: DefaultModel}}

	node, err := NewLLMNode("ask", map[string]any{
		"userPrompt":     "hi",
		"apiKeySecretId": "openai",
	}, nil, remote, staticVault{"openai": "sk-test"})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)

	require.Len(t, remote.requests, 1)
	assert.Equal(t, DefaultModel, remote.requests[0].Model)
	assert.Equal(t, "sk-test", remote.requests[0].APIKey)
}

func TestLLMNode_Failures(t *testing.T) {
	node, err := NewLLMNode("ask", map[string]any{"model": "llama3"}, nil, nil, nil)
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.ErrorIs(t, err, llm.ErrNoProvider)

	remote := &recordingClient{err: errors.New("rate limited")}
	node, err = NewLLMNode("ask", map[string]any{"apiKeySecretId": "missing"}, nil, remote, staticVault{})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.ErrorIs(t, err, secrets.ErrSecretNotFound)

	node, err = NewLLMNode("ask", map[string]any{}, nil, remote, nil)
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.ErrorContains(t, err, "rate limited")
}
