package protocol

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed node configuration or requests.
var ErrValidation = errors.New("validation failed")

// ConfigError reports an invalid configuration for a single node.
type ConfigError struct {
	NodeID   string
	NodeType string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s config for node %s: %s", e.NodeType, e.NodeID, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrValidation
}

// IsValidation checks if an error indicates invalid configuration.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
