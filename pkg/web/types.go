package web

import "github.com/dukex/flowdeck/pkg/models"

// WorkflowRequest is the body of workflow create and update requests.
type WorkflowRequest struct {
	Name        string                 `json:"name"        validate:"required,min=1"`
	Description string                 `json:"description"`
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"required,min=1"`
	Connections []*models.Connection   `json:"connections"`
	IsFavorite  bool                   `json:"is_favorite"`
}

func (r *WorkflowRequest) toWorkflow() *models.Workflow {
	connections := r.Connections
	if connections == nil {
		connections = []*models.Connection{}
	}

	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Nodes:       r.Nodes,
		Connections: connections,
		IsFavorite:  r.IsFavorite,
	}
}

// StartExecutionRequest is the optional body of a run request.
type StartExecutionRequest struct {
	Inputs any `json:"inputs"`
}

// RecompressRequest is the optional body of a recompress request. A zero
// level selects the strongest compression.
type RecompressRequest struct {
	Level int `json:"level" validate:"omitempty,min=1,max=9"`
}
