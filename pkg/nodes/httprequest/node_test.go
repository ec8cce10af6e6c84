package httprequest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequestNode_ResolvesURLFromUpstreamOutput(t *testing.T) {
	var gotPath, gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": server.URL + "/items/{{id}}"}, server.Client())
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{
		"start-1": map[string]any{"id": "42"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/items/42", gotPath)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, map[string]any{
		"status": http.StatusOK,
		"body":   map[string]any{"message": "success"},
	}, output.Data)

	require.NotNil(t, output.Metadata)
	assert.Equal(t, server.URL+"/items/42", *output.Metadata.HTTPURL)
	assert.Equal(t, http.MethodGet, *output.Metadata.HTTPMethod)
	assert.Equal(t, http.StatusOK, *output.Metadata.HTTPStatusCode)
	assert.Equal(t, server.URL+"/items/42", output.ResolvedConfig["url"])
}

func TestHTTPRequestNode_NonJSONBodyDegradesToNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": server.URL}, server.Client())
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)

	data := output.Data.(map[string]any)
	assert.Equal(t, http.StatusInternalServerError, data["status"])
	assert.Nil(t, data["body"])
}

func TestHTTPRequestNode_PostSendsJSONBodyAndStringHeaders(t *testing.T) {
	var (
		gotBody    map[string]any
		gotHeaders http.Header
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()

		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("create", map[string]any{
		"url":    server.URL,
		"method": "post",
		"headers": map[string]any{
			"X-Token":  "secret",
			"X-Number": 12.0,
		},
		"body": map[string]any{"name": "flowdeck"},
	}, server.Client())
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "flowdeck"}, gotBody)
	assert.Equal(t, "secret", gotHeaders.Get("X-Token"))
	assert.Empty(t, gotHeaders.Get("X-Number"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, output.Data.(map[string]any)["status"])
}

func TestHTTPRequestNode_PostWithoutBodySendsEmptyObject(t *testing.T) {
	var raw []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("create", map[string]any{"url": server.URL, "method": "PUT"}, server.Client())
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestHTTPRequestNode_ConfigValidation(t *testing.T) {
	_, err := NewHTTPRequestNode("fetch", map[string]any{}, http.DefaultClient)
	require.Error(t, err)
	assert.True(t, protocol.IsValidation(err))
	assert.Contains(t, err.Error(), "missing required field 'url'")

	_, err = NewHTTPRequestNode("fetch", map[string]any{"url": "http://x", "method": "BREW"}, http.DefaultClient)
	require.Error(t, err)
	assert.True(t, protocol.IsValidation(err))
}

func TestHTTPRequestNode_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": url}, http.DefaultClient)
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.False(t, protocol.IsValidation(err))
}
