package snapshot

import (
	"strings"

	"github.com/dukex/flowdeck/pkg/models"
)

// Redacted replaces the value of every sensitive key.
const Redacted = "[REDACTED]"

// DefaultSensitiveFields apply when sensitive data is excluded without an explicit list.
var DefaultSensitiveFields = []string{
	"password",
	"secret",
	"token",
	"apiKey",
	"api_key",
	"authorization",
}

// redact returns a copy of snap whose node inputs, outputs and resolved
// configs, as well as run level inputs, outputs and variables, have every key
// listed in fields (case-insensitive) replaced by Redacted. snap is left untouched.
func redact(snap *models.ExecutionSnapshot, fields []string) *models.ExecutionSnapshot {
	if len(fields) == 0 {
		fields = DefaultSensitiveFields
	}

	sensitive := make(map[string]bool, len(fields))
	for _, field := range fields {
		sensitive[strings.ToLower(field)] = true
	}

	clone := *snap
	clone.Inputs = redactValue(snap.Inputs, sensitive)
	clone.Outputs = redactValue(snap.Outputs, sensitive)

	if snap.Variables != nil {
		clone.Variables, _ = redactValue(snap.Variables, sensitive).(map[string]any)
	}

	if snap.NodeSnapshots != nil {
		clone.NodeSnapshots = make(map[string]*models.NodeSnapshot, len(snap.NodeSnapshots))

		for id, node := range snap.NodeSnapshots {
			if node == nil {
				clone.NodeSnapshots[id] = nil

				continue
			}

			nodeClone := *node
			nodeClone.Inputs = redactValue(node.Inputs, sensitive)
			nodeClone.Outputs = redactValue(node.Outputs, sensitive)

			if node.ResolvedConfig != nil {
				nodeClone.ResolvedConfig, _ = redactValue(node.ResolvedConfig, sensitive).(map[string]any)
			}

			clone.NodeSnapshots[id] = &nodeClone
		}
	}

	return &clone
}

func redactValue(value any, sensitive map[string]bool) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))

		for key, item := range v {
			if sensitive[strings.ToLower(key)] {
				out[key] = Redacted

				continue
			}

			out[key] = redactValue(item, sensitive)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item, sensitive)
		}

		return out
	default:
		return value
	}
}
