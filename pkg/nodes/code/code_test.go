package code

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeNode_PassesInputsThrough(t *testing.T) {
	node, err := NewCodeNodeFactory().Create(context.Background(), "script", map[string]any{
		"language": "javascript",
		"code":     "return 1",
	})
	require.NoError(t, err)

	inputs := map[string]any{"upstream": map[string]any{"x": 1.0}}

	output, err := node.Execute(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, inputs, output.Data)
	require.Len(t, output.Logs, 1)
	assert.Equal(t, "info", output.Logs[0].Level)
}
