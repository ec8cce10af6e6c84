// Package httprequest provides HTTP request node factory for the registry system.
package httprequest

import (
	"context"
	"net/http"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/protocol"
)

const defaultTimeout = 30 * time.Second

// HTTPRequestNodeFactory creates HTTPRequestNode instances sharing one client.
type HTTPRequestNodeFactory struct {
	client *http.Client
}

// NewHTTPRequestNodeFactory creates a new HTTP request node factory. A nil
// client is replaced by one with a 30 second timeout.
func NewHTTPRequestNodeFactory(client *http.Client) *HTTPRequestNodeFactory {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &HTTPRequestNodeFactory{client: client}
}

// Create creates a new HTTPRequestNode instance.
func (f *HTTPRequestNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewHTTPRequestNode(id, config, f.client)
}

// ID returns the factory ID.
func (f *HTTPRequestNodeFactory) ID() string {
	return models.NodeTypeHTTP
}

// Name returns the factory name.
func (f *HTTPRequestNodeFactory) Name() string {
	return "HTTP Request"
}

// Description returns the factory description.
func (f *HTTPRequestNodeFactory) Description() string {
	return "Performs an HTTP request and returns the status code with the JSON decoded body"
}

// Schema returns the JSON schema for HTTP request node configuration.
func (f *HTTPRequestNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "HTTP URL to request. Supports {{path}} placeholders resolved against the node inputs",
				"examples": []string{
					"https://api.example.com/users",
					"https://api.example.com/users/{{id}}",
				},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"default":     "GET",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "HTTP headers. Only string values are sent",
			},
			"body": map[string]any{
				"description": "JSON body sent with POST, PUT and PATCH requests",
			},
		},
		"required": []string{"url"},
	}
}
