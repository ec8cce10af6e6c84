package workflow

import "github.com/dukex/flowdeck/pkg/models"

// ExecutionOrder returns a topological order of the workflow's nodes.
//
// Nodes with no incoming edges are seeded in declaration order and
// successors are released in edge declaration order, so the result is
// deterministic. Nodes that sit on a cycle, or downstream of one, never
// reach in-degree zero and are left out. Edges that reference unknown
// nodes are ignored.
func ExecutionOrder(wf *models.Workflow) []string {
	known := make(map[string]bool, len(wf.Nodes))
	for _, node := range wf.Nodes {
		known[node.ID] = true
	}

	inDegree := make(map[string]int, len(wf.Nodes))
	successors := make(map[string][]string, len(wf.Nodes))

	for _, conn := range wf.Connections {
		if conn == nil || !known[conn.SourceID] || !known[conn.TargetID] {
			continue
		}

		successors[conn.SourceID] = append(successors[conn.SourceID], conn.TargetID)
		inDegree[conn.TargetID]++
	}

	queue := make([]string, 0, len(wf.Nodes))
	for _, node := range wf.Nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, len(wf.Nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range successors[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return order
}

// DetectCycle returns the ids, in declaration order, of nodes that
// ExecutionOrder leaves out. An empty result means the graph is acyclic.
func DetectCycle(wf *models.Workflow) []string {
	ordered := make(map[string]bool, len(wf.Nodes))
	for _, id := range ExecutionOrder(wf) {
		ordered[id] = true
	}

	var omitted []string

	for _, node := range wf.Nodes {
		if !ordered[node.ID] {
			omitted = append(omitted, node.ID)
		}
	}

	return omitted
}

// GatherInputs collects the outputs of nodeID's predecessors. Each edge
// contributes under its source port when set and under the source id
// otherwise; later edges overwrite earlier ones on key collision. Sources
// that produced no output are skipped.
func GatherInputs(wf *models.Workflow, nodeID string, outputs map[string]any) map[string]any {
	inputs := make(map[string]any)

	for _, conn := range wf.Connections {
		if conn == nil || conn.TargetID != nodeID {
			continue
		}

		output, ok := outputs[conn.SourceID]
		if !ok {
			continue
		}

		key := conn.SourceID
		if conn.SourcePort != nil && *conn.SourcePort != "" {
			key = *conn.SourcePort
		}

		inputs[key] = output
	}

	return inputs
}
