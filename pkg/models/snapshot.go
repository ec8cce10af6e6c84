package models

import "time"

const (
	SnapshotVersion = "1.0"
	SnapshotSource  = "flowdeck"
)

// NodeSnapshot is the captured state of one node within a run.
type NodeSnapshot struct {
	NodeID         string         `json:"node_id"`
	NodeName       string         `json:"node_name"`
	NodeType       string         `json:"node_type"`
	Status         NodeStatus     `json:"status"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	DurationMs     int64          `json:"duration_ms"`
	Inputs         any            `json:"inputs"`
	Outputs        any            `json:"outputs"`
	ResolvedConfig map[string]any `json:"resolved_config,omitempty"`
	Error          *NodeError     `json:"error,omitempty"`
	Metadata       *NodeMetadata  `json:"metadata,omitempty"`
	Logs           []NodeLogEntry `json:"logs,omitempty"`
	IsBreakpoint   *bool          `json:"is_breakpoint,omitempty"`
}

type SnapshotError struct {
	Code    *string `json:"code,omitempty"`
	Message string  `json:"message"`
	NodeID  *string `json:"node_id,omitempty"`
	Stack   *string `json:"stack,omitempty"`
}

type ExecutionSummary struct {
	TotalNodes      int      `json:"total_nodes"`
	CompletedNodes  int      `json:"completed_nodes"`
	FailedNodes     int      `json:"failed_nodes"`
	SkippedNodes    int      `json:"skipped_nodes"`
	TotalTokensUsed *int64   `json:"total_tokens_used,omitempty"`
	EstimatedCost   *float64 `json:"estimated_cost,omitempty"`
}

type SnapshotMetadata struct {
	CreatedAt      time.Time `json:"created_at"`
	Version        string    `json:"version"`
	Compressed     bool      `json:"compressed"`
	OriginalSize   int64     `json:"original_size"`
	CompressedSize *int64    `json:"compressed_size,omitempty"`
	Source         string    `json:"source"`
}

// ExecutionSnapshot is the full per node state tree of one run. Every id in
// ExecutionOrder has an entry in NodeSnapshots and vice versa.
type ExecutionSnapshot struct {
	ExecutionID     string                   `json:"execution_id"`
	WorkflowID      string                   `json:"workflow_id"`
	WorkflowName    string                   `json:"workflow_name,omitempty"`
	WorkflowVersion *string                  `json:"workflow_version,omitempty"`
	Status          ExecutionStatus          `json:"status"`
	StartedAt       time.Time                `json:"started_at"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`
	DurationMs      *int64                   `json:"duration_ms,omitempty"`
	NodeSnapshots   map[string]*NodeSnapshot `json:"node_snapshots"`
	ExecutionOrder  []string                 `json:"execution_order"`
	CurrentNodeID   *string                  `json:"current_node_id,omitempty"`
	Inputs          any                      `json:"inputs"`
	Outputs         any                      `json:"outputs"`
	Variables       map[string]any           `json:"variables"`
	Error           *SnapshotError           `json:"error,omitempty"`
	Summary         ExecutionSummary         `json:"summary"`
	Metadata        SnapshotMetadata         `json:"metadata"`
}

// SnapshotHeader is the queryable part of a stored snapshot. It doubles as
// the retention catalogue entry.
type SnapshotHeader struct {
	ExecutionID    string           `json:"execution_id"`
	WorkflowID     string           `json:"workflow_id"`
	WorkflowName   string           `json:"workflow_name"`
	Status         ExecutionStatus  `json:"status"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	DurationMs     *int64           `json:"duration_ms,omitempty"`
	Compressed     bool             `json:"compressed"`
	OriginalSize   int64            `json:"original_size"`
	CompressedSize *int64           `json:"compressed_size,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Summary        ExecutionSummary `json:"summary"`
}

// Size is the stored size of the snapshot: compressed when known, original otherwise.
func (h *SnapshotHeader) Size() int64 {
	if h.CompressedSize != nil {
		return *h.CompressedSize
	}

	return h.OriginalSize
}

// SnapshotRecord is a stored snapshot blob with its header.
type SnapshotRecord struct {
	Header SnapshotHeader
	Data   []byte
}

type SnapshotListItem struct {
	ExecutionID  string           `json:"execution_id"`
	WorkflowID   string           `json:"workflow_id"`
	WorkflowName string           `json:"workflow_name"`
	Status       ExecutionStatus  `json:"status"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	DurationMs   *int64           `json:"duration_ms,omitempty"`
	Summary      ExecutionSummary `json:"summary"`
}

// SnapshotFilter selects a page of snapshot headers, newest first.
type SnapshotFilter struct {
	WorkflowID string
	Limit      int
	Offset     int
}

type StorageStats struct {
	TotalCount          int        `json:"total_count"`
	TotalOriginalSize   int64      `json:"total_original_size"`
	TotalCompressedSize int64      `json:"total_compressed_size"`
	CompressionRatio    float64    `json:"compression_ratio"`
	Oldest              *time.Time `json:"oldest,omitempty"`
	Newest              *time.Time `json:"newest,omitempty"`
}

// SnapshotStorageOptions control how a snapshot is written.
type SnapshotStorageOptions struct {
	Compress             bool     `json:"compress"`
	CompressionLevel     int      `json:"compression_level"`
	ExcludeSensitiveData bool     `json:"exclude_sensitive_data"`
	SensitiveFields      []string `json:"sensitive_fields,omitempty"`
}
