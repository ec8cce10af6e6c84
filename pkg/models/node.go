package models

import (
	"time"
)

// Built-in node types.
const (
	NodeTypeStart     = "start"
	NodeTypeEnd       = "end"
	NodeTypeLLM       = "llm"
	NodeTypeHTTP      = "http"
	NodeTypeTemplate  = "template"
	NodeTypeCondition = "condition"
	NodeTypeVariable  = "variable"
	NodeTypeCode      = "code"
)

// Connection is a data dependency between two nodes. SourcePort, when set,
// names the key under which the source output reaches the target.
type Connection struct {
	ID         string  `json:"id"`
	SourceID   string  `json:"source_id"             validate:"required"`
	TargetID   string  `json:"target_id"             validate:"required"`
	SourcePort *string `json:"source_port,omitempty"`
	TargetPort *string `json:"target_port,omitempty"`
}

// WorkflowNode represents a node instance in a workflow.
type WorkflowNode struct {
	ID        string         `json:"id"         validate:"required"`
	Type      string         `json:"type"       validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// DisplayName falls back to the node id when the node has no name.
func (n *WorkflowNode) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}

	return n.ID
}

// NodeStatus defines the possible states of a node within a run.
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
	NodeStatusPaused    NodeStatus = "paused"
)

// NodeOutput is what a node produces besides its data: the config it actually
// used after resolution, type specific metadata and log lines.
type NodeOutput struct {
	Data           any
	ResolvedConfig map[string]any
	Metadata       *NodeMetadata
	Logs           []NodeLogEntry
}

// NodeResult is the per node entry of an execution's history record.
type NodeResult struct {
	NodeID     string     `json:"node_id"`
	NodeType   string     `json:"node_type"`
	Status     NodeStatus `json:"status"`
	Output     any        `json:"output,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	DurationMs int64      `json:"duration_ms"`
}

type NodeMetadata struct {
	TokensUsed       *int64  `json:"tokens_used,omitempty"`
	PromptTokens     *int64  `json:"prompt_tokens,omitempty"`
	CompletionTokens *int64  `json:"completion_tokens,omitempty"`
	Model            *string `json:"model,omitempty"`
	HTTPStatusCode   *int    `json:"http_status_code,omitempty"`
	HTTPURL          *string `json:"http_url,omitempty"`
	HTTPMethod       *string `json:"http_method,omitempty"`
	ConditionBranch  *string `json:"condition_branch,omitempty"`
	LoopIterations   *int    `json:"loop_iterations,omitempty"`
	CurrentIteration *int    `json:"current_iteration,omitempty"`
	RetryCount       *int    `json:"retry_count,omitempty"`
}

type NodeError struct {
	Message string  `json:"message"`
	Code    *string `json:"code,omitempty"`
	Stack   *string `json:"stack,omitempty"`
}

type NodeLogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}
