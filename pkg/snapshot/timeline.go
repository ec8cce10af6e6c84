package snapshot

import (
	"github.com/dukex/flowdeck/pkg/models"
)

var icons = map[string]string{
	models.NodeTypeStart:     "play",
	models.NodeTypeEnd:       "flag",
	models.NodeTypeLLM:       "brain",
	models.NodeTypeHTTP:      "globe",
	models.NodeTypeTemplate:  "file-text",
	models.NodeTypeCondition: "git-branch",
	models.NodeTypeVariable:  "variable",
	models.NodeTypeCode:      "code",
	"loop":                   "repeat",
	"delay":                  "clock",
}

// Icon names the icon shown for a node type.
func Icon(nodeType string) string {
	if icon, ok := icons[nodeType]; ok {
		return icon
	}

	return "box"
}

// BuildTimeline lists one step per executed node in execution order. A step's
// index is its position in the execution order, so ids without a captured
// node leave a gap.
func BuildTimeline(snap *models.ExecutionSnapshot) *models.TimelineView {
	steps := make([]models.TimelineStep, 0, len(snap.ExecutionOrder))

	for index, nodeID := range snap.ExecutionOrder {
		node, ok := snap.NodeSnapshots[nodeID]
		if !ok || node == nil {
			continue
		}

		steps = append(steps, models.TimelineStep{
			Index:       index,
			NodeID:      node.NodeID,
			NodeName:    node.NodeName,
			NodeType:    node.NodeType,
			Status:      node.Status,
			StartedAt:   node.StartedAt,
			CompletedAt: node.CompletedAt,
			DurationMs:  node.DurationMs,
			HasError:    node.Error != nil,
			Icon:        Icon(node.NodeType),
			Description: describe(node),
		})
	}

	return &models.TimelineView{
		ExecutionID:  snap.ExecutionID,
		WorkflowName: snap.WorkflowName,
		Status:       snap.Status,
		StartedAt:    snap.StartedAt,
		CompletedAt:  snap.CompletedAt,
		DurationMs:   snap.DurationMs,
		Steps:        steps,
		TotalSteps:   len(steps),
	}
}

func describe(node *models.NodeSnapshot) *string {
	if node.Metadata == nil {
		return nil
	}

	var description string

	switch node.NodeType {
	case models.NodeTypeLLM:
		if node.Metadata.Model == nil {
			return nil
		}

		description = "Model: " + *node.Metadata.Model
	case models.NodeTypeHTTP:
		if node.Metadata.HTTPURL == nil {
			return nil
		}

		description = "Request: " + *node.Metadata.HTTPURL
	case models.NodeTypeCondition:
		if node.Metadata.ConditionBranch == nil {
			return nil
		}

		description = "Branch: " + *node.Metadata.ConditionBranch
	default:
		return nil
	}

	return &description
}
