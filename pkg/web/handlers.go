// Package web provides HTTP handlers and REST API endpoints for workflows,
// their executions and the stored execution snapshots.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/registry"
	"github.com/dukex/flowdeck/pkg/retention"
	"github.com/dukex/flowdeck/pkg/services"
	"github.com/dukex/flowdeck/pkg/snapshot"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflows  *services.Workflow
	executions *services.Execution
	snapshots  *snapshot.Store
	retention  *retention.Engine
	validator  *validator.Validate
	registry   *registry.Registry
}

func NewAPIHandlers(
	workflows *services.Workflow,
	executions *services.Execution,
	snapshots *snapshot.Store,
	retention *retention.Engine,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflows:  workflows,
		executions: executions,
		snapshots:  snapshots,
		retention:  retention,
		validator:  validator,
		registry:   registry,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflows.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowdeck API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Flowdeck API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if workflows == nil {
		workflows = []*models.Workflow{}
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflows.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflows.Create(c.Context(), req.toWorkflow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflows.Update(c.Context(), c.Params("id"), req.toWorkflow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.workflows.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) bindWorkflow(c fiber.Ctx) (*WorkflowRequest, error) {
	var req WorkflowRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return nil, errInvalidJSON
	}

	err = h.validator.Struct(req)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (h *APIHandlers) StartExecution(c fiber.Ctx) error {
	var req StartExecutionRequest

	if len(c.Body()) > 0 {
		err := c.Bind().JSON(&req)
		if err != nil {
			return badRequest(c, errInvalidJSON.Error())
		}
	}

	execution, err := h.executions.Start(c.Context(), c.Params("id"), req.Inputs)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"execution": execution})
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	executions, err := h.executions.List(c.Context(), c.Query("workflow_id"), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetRunningExecutions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"execution_ids": h.executions.Running()})
}

func (h *APIHandlers) GetExecutionStats(c fiber.Ctx) error {
	stats, err := h.executions.Stats(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.executions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) StopExecution(c fiber.Ctx) error {
	err := h.executions.Stop(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) DeleteExecution(c fiber.Ctx) error {
	err := h.executions.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetSnapshots(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	offset, err := queryInt(c, "offset")
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if limit <= 0 {
		limit = services.DefaultListLimit
	}

	items, err := h.snapshots.List(c.Context(), models.SnapshotFilter{
		WorkflowID: c.Query("workflow_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(items)
}

func (h *APIHandlers) GetSnapshotStats(c fiber.Ctx) error {
	stats, err := h.snapshots.Stats(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) CleanupSnapshots(c fiber.Ctx) error {
	var opts retention.CleanupOptions

	if len(c.Body()) > 0 {
		err := c.Bind().JSON(&opts)
		if err != nil {
			return badRequest(c, errInvalidJSON.Error())
		}
	}

	result, err := h.retention.Cleanup(c.Context(), opts)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetSnapshot(c fiber.Ctx) error {
	snap, err := h.snapshots.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snap)
}

func (h *APIHandlers) DeleteSnapshot(c fiber.Ctx) error {
	err := h.snapshots.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) RecompressSnapshot(c fiber.Ctx) error {
	var req RecompressRequest

	if len(c.Body()) > 0 {
		err := c.Bind().JSON(&req)
		if err != nil {
			return badRequest(c, errInvalidJSON.Error())
		}
	}

	err := h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.snapshots.Recompress(c.Context(), c.Params("id"), req.Level)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetSnapshotTimeline(c fiber.Ctx) error {
	timeline, err := h.snapshots.Timeline(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(timeline)
}

func (h *APIHandlers) GetSnapshotNode(c fiber.Ctx) error {
	node, err := h.snapshots.NodeDetails(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	value := c.Query(key)
	if value == "" {
		return 0, nil
	}

	return strconv.Atoi(value)
}
