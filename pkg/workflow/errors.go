package workflow

import (
	"errors"
	"fmt"

	"github.com/dukex/flowdeck/pkg/protocol"
)

var (
	// ErrCancelled ends a run whose cancel switch was observed.
	ErrCancelled = errors.New("execution cancelled")

	// ErrValidation marks a workflow definition that cannot be run or stored.
	ErrValidation = protocol.ErrValidation
)

// NodeExecutionError wraps a node failure with the failing node's identity.
type NodeExecutionError struct {
	NodeID   string
	NodeType string
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// IsNodeFailure reports whether err is, or wraps, a node failure.
func IsNodeFailure(err error) bool {
	var nodeErr *NodeExecutionError

	return errors.As(err, &nodeErr)
}
