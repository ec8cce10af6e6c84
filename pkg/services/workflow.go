package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/persistence"
	"github.com/dukex/flowdeck/pkg/registry"
	"github.com/dukex/flowdeck/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service. Node configs are checked
// against the schemas of registry.
func NewWorkflow(persistence persistence.Persistence, registry *registry.Registry) *Workflow {
	return &Workflow{
		persistence: persistence,
		registry:    registry,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every stored workflow.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create validates and stores a new workflow under a fresh ID.
func (w *Workflow) Create(ctx context.Context, wf *models.Workflow) (*models.Workflow, error) {
	err := w.Validate(wf)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wf.ID = uuid.New().String()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	err = w.persistence.WorkflowRepository().Save(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return wf, nil
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(ctx context.Context, workflowID string, wf *models.Workflow) (*models.Workflow, error) {
	err := w.Validate(wf)
	if err != nil {
		return nil, err
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	wf.ID = workflowID
	wf.CreatedAt = existing.CreatedAt
	wf.UpdatedAt = time.Now().UTC()

	err = w.persistence.WorkflowRepository().Save(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return wf, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	err := w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return err
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Validate checks struct constraints, node id uniqueness, connection
// endpoints, acyclicity and each node's config schema.
func (w *Workflow) Validate(wf *models.Workflow) error {
	if wf == nil {
		return ErrWorkflowNil
	}

	err := w.validate.Struct(wf)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
			}

			return NewValidationError("Validate", "INVALID_WORKFLOW", strings.Join(fields, "; "), ErrInvalidRequest)
		}

		return NewValidationError("Validate", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	ids := make(map[string]bool, len(wf.Nodes))

	for _, node := range wf.Nodes {
		if ids[node.ID] {
			return NewValidationError("Validate", "DUPLICATE_NODE_ID", fmt.Sprintf("node id '%s' is used more than once", node.ID), ErrDuplicateNodeID)
		}

		ids[node.ID] = true
	}

	for _, conn := range wf.Connections {
		for _, endpoint := range []string{conn.SourceID, conn.TargetID} {
			if !ids[endpoint] {
				return NewValidationError("Validate", "UNKNOWN_NODE", fmt.Sprintf("connection %s references unknown node '%s'", conn.ID, endpoint), ErrUnknownConnection)
			}
		}
	}

	cyclic := workflow.DetectCycle(wf)
	if len(cyclic) > 0 {
		return NewValidationError("Validate", "CYCLIC_WORKFLOW", "nodes in or behind a cycle: "+strings.Join(cyclic, ", "), ErrCyclicWorkflow)
	}

	if w.registry == nil {
		return nil
	}

	for _, node := range wf.Nodes {
		err := w.registry.ValidateConfig(node.Type, node.Config)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
	}

	return nil
}
