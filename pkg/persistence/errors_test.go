package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		workflowErr := persistence.NewStorageError("GetByID", "workflow-123", persistence.ErrWorkflowNotFound)
		snapshotErr := fmt.Errorf("loading: %w", persistence.NewStorageError("Get", "exec-1", persistence.ErrSnapshotNotFound))

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.True(t, persistence.IsSnapshotNotFound(snapshotErr))
		assert.True(t, persistence.IsNotFound(snapshotErr))
		assert.False(t, persistence.IsExecutionNotFound(workflowErr))

		assert.True(t, errors.Is(workflowErr, persistence.ErrWorkflowNotFound))
	})

	t.Run("storage failures are told apart from missing records", func(t *testing.T) {
		failure := persistence.NewStorageError("Save", "exec-1", errors.New("disk full"))

		assert.True(t, persistence.IsStorageFailure(failure))
		assert.False(t, persistence.IsStorageFailure(persistence.NewStorageError("Get", "x", persistence.ErrExecutionNotFound)))
		assert.False(t, persistence.IsStorageFailure(errors.New("plain")))
	})

	t.Run("storage error contains context", func(t *testing.T) {
		err := persistence.NewStorageError("Delete", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "workflow-123")
		assert.Contains(t, err.Error(), "workflow not found")
		assert.Equal(t, "Catalogue operation failed: boom", persistence.NewStorageError("Catalogue", "", errors.New("boom")).Error())
	})
}
