// Package models defines the core domain models for node-based workflow execution
package models

import "time"

// Workflow is a graph of typed nodes joined by connections. A run never mutates it.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"                  validate:"required,min=1"`
	Description string          `json:"description"`
	Nodes       []*WorkflowNode `json:"nodes"                 validate:"required,min=1,dive"`
	Connections []*Connection   `json:"connections"           validate:"dive"`
	IsFavorite  bool            `json:"is_favorite"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
