package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates no execution record exists for the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrSnapshotNotFound indicates no snapshot is stored for the given execution.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// StorageError wraps a backend failure with the operation and record involved.
type StorageError struct {
	Op  string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	ID  string // Record ID if applicable
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for storage errors.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStorageError creates a new storage error with context.
func NewStorageError(op, id string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsSnapshotNotFound checks if an error indicates a snapshot was not found.
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

// IsNotFound reports whether err is any of the not found errors.
func IsNotFound(err error) bool {
	return IsWorkflowNotFound(err) || IsExecutionNotFound(err) || IsSnapshotNotFound(err)
}

// IsStorageFailure reports whether err came from a failing backend rather
// than a missing record.
func IsStorageFailure(err error) bool {
	var storageErr *StorageError

	return errors.As(err, &storageErr) && !IsNotFound(err)
}
