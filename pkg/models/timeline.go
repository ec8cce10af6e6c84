package models

import "time"

type TimelineStep struct {
	Index       int        `json:"index"`
	NodeID      string     `json:"node_id"`
	NodeName    string     `json:"node_name"`
	NodeType    string     `json:"node_type"`
	Status      NodeStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMs  int64      `json:"duration_ms"`
	HasError    bool       `json:"has_error"`
	Icon        string     `json:"icon"`
	Description *string    `json:"description,omitempty"`
}

type TimelineView struct {
	ExecutionID  string          `json:"execution_id"`
	WorkflowName string          `json:"workflow_name"`
	Status       ExecutionStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	DurationMs   *int64          `json:"duration_ms,omitempty"`
	Steps        []TimelineStep  `json:"steps"`
	TotalSteps   int             `json:"total_steps"`
}
