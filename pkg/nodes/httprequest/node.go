// Package httprequest provides HTTP request node implementation for workflow graph execution.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes"
	"github.com/dukex/flowdeck/pkg/template"
)

// HTTPRequestNode issues a single HTTP request per run.
type HTTPRequestNode struct {
	id     string
	config HTTPRequestConfig
	client *http.Client
}

// HTTPRequestConfig defines the configuration for HTTP request nodes.
type HTTPRequestConfig struct {
	URL     string         `json:"url"     validate:"required"`
	Method  string         `json:"method"  validate:"oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Headers map[string]any `json:"headers"`
	Body    any            `json:"body,omitempty"`
}

// NewHTTPRequestNode creates a new HTTP request node.
func NewHTTPRequestNode(id string, config map[string]any, client *http.Client) (*HTTPRequestNode, error) {
	var httpConfig HTTPRequestConfig

	err := nodes.Decode(id, models.NodeTypeHTTP, config, &httpConfig)
	if err != nil {
		return nil, err
	}

	httpConfig.Method = strings.ToUpper(strings.TrimSpace(httpConfig.Method))
	if httpConfig.Method == "" {
		httpConfig.Method = http.MethodGet
	}

	err = nodes.Validate(id, models.NodeTypeHTTP, &httpConfig)
	if err != nil {
		return nil, err
	}

	return &HTTPRequestNode{
		id:     id,
		config: httpConfig,
		client: client,
	}, nil
}

// ID returns the node ID.
func (n *HTTPRequestNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *HTTPRequestNode) Type() string {
	return models.NodeTypeHTTP
}

// Execute performs the request. Transport failures fail the node; a body
// that cannot be read or decoded as JSON is reported as null.
func (n *HTTPRequestNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	url := template.Render(n.config.URL, inputs)
	method := n.config.Method

	headers := make(map[string]string, len(n.config.Headers))
	for key, value := range n.config.Headers {
		if str, ok := value.(string); ok {
			headers[key] = str
		}
	}

	body, err := n.requestBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	var responseBody any

	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		if json.Unmarshal(raw, &responseBody) != nil {
			responseBody = nil
		}
	}

	status := resp.StatusCode

	return &models.NodeOutput{
		Data: map[string]any{
			"status": status,
			"body":   responseBody,
		},
		ResolvedConfig: map[string]any{
			"url":     url,
			"method":  method,
			"headers": headers,
		},
		Metadata: &models.NodeMetadata{
			HTTPURL:        &url,
			HTTPMethod:     &method,
			HTTPStatusCode: &status,
		},
	}, nil
}

// requestBody encodes the JSON body for methods that carry one. POST and PUT
// send an empty object when no body is configured.
func (n *HTTPRequestNode) requestBody() (io.Reader, error) {
	switch n.config.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, nil
	}

	payload := n.config.Body
	if payload == nil {
		if n.config.Method == http.MethodPatch {
			return nil, nil
		}

		payload = map[string]any{}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return bytes.NewReader(raw), nil
}
