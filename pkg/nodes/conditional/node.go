// Package conditional provides conditional branching node implementation for workflow graph execution.
package conditional

import (
	"context"
	"reflect"
	"strings"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/nodes"
	"github.com/dukex/flowdeck/pkg/template"
)

const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "notEquals"
	OperatorContains    = "contains"
	OperatorGreaterThan = "greaterThan"
	OperatorLessThan    = "lessThan"
	OperatorIsEmpty     = "isEmpty"
	OperatorIsNotEmpty  = "isNotEmpty"

	BranchTrue  = "true"
	BranchFalse = "false"
)

// Operators lists the supported comparison operators.
var Operators = []string{
	OperatorEquals,
	OperatorNotEquals,
	OperatorContains,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
}

// ConditionalNode evaluates a single comparison against its inputs.
type ConditionalNode struct {
	id     string
	config ConditionalConfig
}

type ConditionalConfig struct {
	Field    string `json:"field"`
	Operator string `json:"operator" validate:"oneof=equals notEquals contains greaterThan lessThan isEmpty isNotEmpty"`
	Value    any    `json:"value"`
}

// NewConditionalNode creates a new conditional node.
func NewConditionalNode(id string, config map[string]any) (*ConditionalNode, error) {
	var conditionalConfig ConditionalConfig

	err := nodes.Decode(id, models.NodeTypeCondition, config, &conditionalConfig)
	if err != nil {
		return nil, err
	}

	if conditionalConfig.Operator == "" {
		conditionalConfig.Operator = OperatorEquals
	}

	err = nodes.Validate(id, models.NodeTypeCondition, &conditionalConfig)
	if err != nil {
		return nil, err
	}

	return &ConditionalNode{
		id:     id,
		config: conditionalConfig,
	}, nil
}

// ID returns the node ID.
func (n *ConditionalNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *ConditionalNode) Type() string {
	return models.NodeTypeCondition
}

// Execute returns {result, branch} for the configured comparison.
func (n *ConditionalNode) Execute(ctx context.Context, inputs map[string]any) (*models.NodeOutput, error) {
	var actual any
	if n.config.Field != "" {
		actual = template.Resolve(inputs, n.config.Field)
	}

	result := Evaluate(n.config.Operator, actual, n.config.Value)

	branch := BranchFalse
	if result {
		branch = BranchTrue
	}

	return &models.NodeOutput{
		Data: map[string]any{
			"result": result,
			"branch": branch,
		},
		ResolvedConfig: map[string]any{
			"field":    n.config.Field,
			"operator": n.config.Operator,
			"value":    n.config.Value,
			"actual":   actual,
		},
		Metadata: &models.NodeMetadata{ConditionBranch: &branch},
	}, nil
}

// Evaluate applies operator to the actual and expected values. Numeric
// comparisons treat non numbers as 0; contains and the emptiness checks only
// accept strings. Unknown operators evaluate to false.
func Evaluate(operator string, actual, expected any) bool {
	switch operator {
	case OperatorEquals:
		return reflect.DeepEqual(template.Normalize(actual), template.Normalize(expected))
	case OperatorNotEquals:
		return !reflect.DeepEqual(template.Normalize(actual), template.Normalize(expected))
	case OperatorContains:
		haystack, ok := actual.(string)
		if !ok {
			return false
		}

		needle, ok := expected.(string)
		if !ok {
			return false
		}

		return strings.Contains(haystack, needle)
	case OperatorGreaterThan:
		return number(actual) > number(expected)
	case OperatorLessThan:
		return number(actual) < number(expected)
	case OperatorIsEmpty:
		if actual == nil {
			return true
		}

		str, ok := actual.(string)

		return ok && str == ""
	case OperatorIsNotEmpty:
		str, ok := actual.(string)

		return ok && str != ""
	default:
		return false
	}
}

func number(v any) float64 {
	f, _ := template.ToFloat(v)

	return f
}
