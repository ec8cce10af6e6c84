package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_NestedPaths(t *testing.T) {
	tree := map[string]any{
		"user": map[string]any{
			"name": "Alice",
			"tags": []any{"admin", "ops"},
		},
		"orders": []any{
			map[string]any{"id": 1.0, "total": 100.5},
		},
	}

	value, ok := Lookup(tree, "user.name")
	require.True(t, ok)
	assert.Equal(t, "Alice", value)

	value, ok = Lookup(tree, "user.tags.1")
	require.True(t, ok)
	assert.Equal(t, "ops", value)

	value, ok = Lookup(tree, "orders.0.total")
	require.True(t, ok)
	assert.Equal(t, 100.5, value)

	_, ok = Lookup(tree, "orders.3.total")
	assert.False(t, ok)

	_, ok = Lookup(tree, "user.missing")
	assert.False(t, ok)

	_, ok = Lookup(tree, "user.name.first")
	assert.False(t, ok)

	_, ok = Lookup(tree, "orders.-1")
	assert.False(t, ok)
}

func TestResolve_FallsBackToUpstreamOutputs(t *testing.T) {
	inputs := map[string]any{
		"start-1": map[string]any{"id": "42"},
	}

	assert.Equal(t, "42", Resolve(inputs, "id"))
	assert.Equal(t, map[string]any{"id": "42"}, Resolve(inputs, "start-1"))
	assert.Nil(t, Resolve(inputs, "start-1.missing"))
	assert.Nil(t, Resolve(inputs, "other"))
}

func TestResolve_FallbackUsesKeyOrder(t *testing.T) {
	inputs := map[string]any{
		"b": map[string]any{"id": "from-b"},
		"a": map[string]any{"id": "from-a"},
	}

	assert.Equal(t, "from-a", Resolve(inputs, "id"))
}

func TestRender(t *testing.T) {
	tree := map[string]any{
		"id":     "42",
		"count":  3.0,
		"flag":   true,
		"empty":  nil,
		"nested": map[string]any{"a": 1.0},
		"list":   []any{"x", 2.0},
		"html":   "<b>",
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"string", "https://x/{{id}}", "https://x/42"},
		{"trimmed path", "https://x/{{ id }}", "https://x/42"},
		{"number", "n={{count}}", "n=3"},
		{"bool", "{{flag}}", "true"},
		{"null", "[{{empty}}]", "[]"},
		{"missing", "[{{nope.deeper}}]", "[]"},
		{"object", "{{nested}}", `{"a":1}`},
		{"array", "{{list}}", `["x",2]`},
		{"no html escaping", "{{html}}", "<b>"},
		{"several", "{{id}}-{{count}}-{{id}}", "42-3-42"},
		{"no placeholders", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, tree))
		})
	}
}

func TestRenderAll_OnlyStrings(t *testing.T) {
	values := map[string]any{
		"greeting": "hi {{name}}",
		"limit":    10.0,
		"nested":   map[string]any{"keep": "{{name}}"},
	}

	rendered := RenderAll(values, map[string]any{"name": "Bob"})

	assert.Equal(t, "hi Bob", rendered["greeting"])
	assert.Equal(t, 10.0, rendered["limit"])
	assert.Equal(t, map[string]any{"keep": "{{name}}"}, rendered["nested"])
}

func TestNormalize(t *testing.T) {
	value := map[string]any{
		"a": 1,
		"b": []any{int64(2), float32(1.5), "x"},
		"c": nil,
	}

	assert.Equal(t, map[string]any{
		"a": 1.0,
		"b": []any{2.0, 1.5, "x"},
		"c": nil,
	}, Normalize(value))
}
