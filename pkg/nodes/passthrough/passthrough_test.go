package passthrough

import (
	"context"
	"testing"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughFactories(t *testing.T) {
	inputs := map[string]any{"a": 1.0}

	for _, factory := range []*PassthroughNodeFactory{NewStartNodeFactory(), NewEndNodeFactory()} {
		node, err := factory.Create(context.Background(), "n1", nil)
		require.NoError(t, err)

		assert.Equal(t, factory.ID(), node.Type())

		output, err := node.Execute(context.Background(), inputs)
		require.NoError(t, err)
		assert.Equal(t, inputs, output.Data)
	}

	assert.Equal(t, models.NodeTypeStart, NewStartNodeFactory().ID())
	assert.Equal(t, models.NodeTypeEnd, NewEndNodeFactory().ID())
}
