// Package llm provides chat clients for local and remote model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoProvider is returned when no client is configured for the requested model.
var ErrNoProvider = errors.New("no model provider configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string
	Messages []Message
	Options  map[string]any

	// APIKey overrides the key the client was configured with.
	APIKey string
}

type ChatResponse struct {
	Text             string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// TotalTokens is the sum of prompt and completion tokens.
func (r *ChatResponse) TotalTokens() int64 {
	return r.PromptTokens + r.CompletionTokens
}

// ChatClient sends a chat exchange to a model and returns its reply.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// APIError is a non 2xx reply from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func defaultHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}

	return &http.Client{Timeout: 5 * time.Minute}
}
