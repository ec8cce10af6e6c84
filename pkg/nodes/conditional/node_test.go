package conditional

import (
	"context"
	"testing"

	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalNode_GreaterThanTakesTrueBranch(t *testing.T) {
	node, err := NewConditionalNode("check", map[string]any{
		"field":    "score",
		"operator": "greaterThan",
		"value":    50,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"score": 75.0})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": true, "branch": "true"}, output.Data)
	require.NotNil(t, output.Metadata)
	assert.Equal(t, "true", *output.Metadata.ConditionBranch)
}

func TestConditionalNode_ResolvesFieldThroughUpstreamOutput(t *testing.T) {
	node, err := NewConditionalNode("check", map[string]any{
		"field":    "body.status",
		"operator": "equals",
		"value":    "ok",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{
		"fetch": map[string]any{"body": map[string]any{"status": "ok"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": true, "branch": "true"}, output.Data)
}

func TestConditionalNode_DefaultsToEquals(t *testing.T) {
	node, err := NewConditionalNode("check", map[string]any{"field": "name", "value": "x"})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"name": "y"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": false, "branch": "false"}, output.Data)
}

func TestConditionalNode_UnknownOperatorIsValidationError(t *testing.T) {
	_, err := NewConditionalNode("check", map[string]any{"field": "a", "operator": "matches"})
	require.Error(t, err)
	assert.True(t, protocol.IsValidation(err))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		actual   any
		expected any
		want     bool
	}{
		{"equals numbers across types", OperatorEquals, 50.0, 50, true},
		{"equals objects", OperatorEquals, map[string]any{"a": 1.0}, map[string]any{"a": 1}, true},
		{"equals differs", OperatorEquals, "a", "b", false},
		{"equals null", OperatorEquals, nil, nil, true},
		{"not equals", OperatorNotEquals, "a", "b", true},
		{"contains", OperatorContains, "hello world", "world", true},
		{"contains missing", OperatorContains, "hello", "world", false},
		{"contains non string actual", OperatorContains, 123.0, "2", false},
		{"contains non string value", OperatorContains, "123", 2.0, false},
		{"greater than", OperatorGreaterThan, 75.0, 50.0, true},
		{"greater than string coerces to zero", OperatorGreaterThan, "75", 50.0, false},
		{"greater than missing vs negative", OperatorGreaterThan, nil, -1.0, true},
		{"less than", OperatorLessThan, 10, 20.0, true},
		{"less than equal", OperatorLessThan, 20.0, 20.0, false},
		{"is empty null", OperatorIsEmpty, nil, nil, true},
		{"is empty string", OperatorIsEmpty, "", nil, true},
		{"is empty number", OperatorIsEmpty, 0.0, nil, false},
		{"is empty text", OperatorIsEmpty, "x", nil, false},
		{"is not empty text", OperatorIsNotEmpty, "x", nil, true},
		{"is not empty number", OperatorIsNotEmpty, 1.0, nil, false},
		{"is not empty null", OperatorIsNotEmpty, nil, nil, false},
		{"unknown operator", "matches", "x", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.operator, tt.actual, tt.expected))
		})
	}
}
