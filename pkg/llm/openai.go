package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI talks to any OpenAI compatible /chat/completions endpoint.
type OpenAI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAI(baseURL, apiKey string, httpClient *http.Client) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}

	return &OpenAI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: defaultHTTPClient(httpClient),
	}
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int64    `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = o.apiKey
	}

	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key for model %s", ErrNoProvider, req.Model)
	}

	payload := openAIChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
	}

	if temperature, ok := req.Options["temperature"].(float64); ok {
		payload.Temperature = &temperature
	}

	if maxTokens, ok := req.Options["maxTokens"].(float64); ok {
		tokens := int64(maxTokens)
		payload.MaxTokens = &tokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)

		return nil, &APIError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var chatResp openAIChatResponse

	err = json.NewDecoder(resp.Body).Decode(&chatResp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, errors.New("openai response has no choices")
	}

	model := chatResp.Model
	if model == "" {
		model = req.Model
	}

	return &ChatResponse{
		Text:             chatResp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}
