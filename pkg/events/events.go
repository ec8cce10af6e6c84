// Package events defines event types and structures for run lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every run lifecycle event.
const Topic = "flowdeck.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	NodeStartedEvent        EventType = "execution.node.started"
	NodeCompletedEvent      EventType = "execution.node.completed"
	NodeFailedEvent         EventType = "execution.node.failed"
	ExecutionProgressEvent  EventType = "execution.progress"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
)

// TerminalTypes are the event types that close a run. Exactly one of them is
// published per run.
var TerminalTypes = []EventType{
	ExecutionCompletedEvent,
	ExecutionFailedEvent,
	ExecutionCancelledEvent,
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	WorkflowID string    `json:"workflow_id"`
}

func NewBaseEvent(eventType EventType, runID, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		WorkflowID: workflowID,
	}
}

// Key is the partition key of the event.
func (b BaseEvent) Key() string {
	return b.RunID
}

type ExecutionStarted struct {
	BaseEvent
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type NodeStarted struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

func (e NodeStarted) GetType() EventType {
	return NodeStartedEvent
}

type NodeCompleted struct {
	BaseEvent

	NodeID     string `json:"node_id"`
	Outputs    any    `json:"outputs"`
	DurationMs int64  `json:"duration_ms"`
}

func (e NodeCompleted) GetType() EventType {
	return NodeCompletedEvent
}

type NodeFailed struct {
	BaseEvent

	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

func (e NodeFailed) GetType() EventType {
	return NodeFailedEvent
}

type ExecutionProgress struct {
	BaseEvent

	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
	CurrentNode *string `json:"current_node,omitempty"`
}

func (e ExecutionProgress) GetType() EventType {
	return ExecutionProgressEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Outputs    any   `json:"outputs"`
	DurationMs int64 `json:"duration_ms"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Error      string  `json:"error"`
	FailedNode *string `json:"failed_node,omitempty"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type ExecutionCancelled struct {
	BaseEvent
}

func (e ExecutionCancelled) GetType() EventType {
	return ExecutionCancelledEvent
}

// New returns an empty event value for eventType, for decoding.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case ExecutionStartedEvent:
		return &ExecutionStarted{}, true
	case NodeStartedEvent:
		return &NodeStarted{}, true
	case NodeCompletedEvent:
		return &NodeCompleted{}, true
	case NodeFailedEvent:
		return &NodeFailed{}, true
	case ExecutionProgressEvent:
		return &ExecutionProgress{}, true
	case ExecutionCompletedEvent:
		return &ExecutionCompleted{}, true
	case ExecutionFailedEvent:
		return &ExecutionFailed{}, true
	case ExecutionCancelledEvent:
		return &ExecutionCancelled{}, true
	default:
		return nil, false
	}
}
