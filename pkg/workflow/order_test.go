package workflow

import (
	"fmt"
	"testing"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func nodesOf(ids ...string) []*models.WorkflowNode {
	nodes := make([]*models.WorkflowNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, testutil.CreateTestNode(id, models.NodeTypeCode))
	}

	return nodes
}

func TestExecutionOrder_Linear(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("a", "b", "c"),
		testutil.Connect("b", "c"),
		testutil.Connect("a", "b"),
	)

	assert.Equal(t, []string{"a", "b", "c"}, ExecutionOrder(wf))
	assert.Empty(t, DetectCycle(wf))
}

func TestExecutionOrder_DeclarationOrderBreaksTies(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("x", "a", "b", "c", "d"),
		testutil.Connect("a", "c"),
		testutil.Connect("a", "b"),
		testutil.Connect("b", "d"),
		testutil.Connect("c", "d"),
	)

	assert.Equal(t, []string{"x", "a", "c", "b", "d"}, ExecutionOrder(wf))
}

func TestExecutionOrder_TwoCycleIsOmitted(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("a", "b"),
		testutil.Connect("a", "b"),
		testutil.Connect("b", "a"),
	)

	assert.Empty(t, ExecutionOrder(wf))
	assert.Equal(t, []string{"a", "b"}, DetectCycle(wf))
}

func TestExecutionOrder_DownstreamOfCycleIsOmitted(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("s", "a", "b", "tail"),
		testutil.Connect("s", "a"),
		testutil.Connect("a", "b"),
		testutil.Connect("b", "a"),
		testutil.Connect("b", "tail"),
	)

	assert.Equal(t, []string{"s"}, ExecutionOrder(wf))
	assert.Equal(t, []string{"a", "b", "tail"}, DetectCycle(wf))
}

func TestExecutionOrder_IgnoresDanglingEdges(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("a", "b"),
		testutil.Connect("ghost", "b"),
		testutil.Connect("a", "nowhere"),
	)

	assert.Equal(t, []string{"a", "b"}, ExecutionOrder(wf))
}

func TestExecutionOrder_EdgesRespected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 12).Draw(t, "nodes")

		ids := make([]string, count)
		for i := range ids {
			ids[i] = fmt.Sprintf("n%d", i)
		}

		// Edges only point forward in a random permutation, so the graph is acyclic.
		perm := rapid.Permutation(ids).Draw(t, "perm")

		var connections []*models.Connection

		for i := range perm {
			for j := i + 1; j < len(perm); j++ {
				if rapid.Bool().Draw(t, fmt.Sprintf("edge-%d-%d", i, j)) {
					connections = append(connections, testutil.Connect(perm[i], perm[j]))
				}
			}
		}

		wf := testutil.CreateTestWorkflow("wf", nodesOf(ids...), connections...)
		order := ExecutionOrder(wf)

		if len(order) != count {
			t.Fatalf("expected %d nodes in order, got %d", count, len(order))
		}

		position := make(map[string]int, len(order))
		for i, id := range order {
			position[id] = i
		}

		for _, conn := range connections {
			if position[conn.SourceID] >= position[conn.TargetID] {
				t.Fatalf("edge %s -> %s violated by order %v", conn.SourceID, conn.TargetID, order)
			}
		}
	})
}

func TestGatherInputs(t *testing.T) {
	wf := testutil.CreateTestWorkflow("wf", nodesOf("a", "b", "c", "t"),
		testutil.Connect("a", "t"),
		testutil.ConnectPort("b", "payload", "t"),
		testutil.ConnectPort("c", "payload", "t"),
		testutil.Connect("missing", "t"),
		testutil.Connect("a", "other"),
	)

	outputs := map[string]any{
		"a": map[string]any{"id": "1"},
		"b": "from b",
		"c": "from c",
	}

	assert.Equal(t, map[string]any{
		"a":       map[string]any{"id": "1"},
		"payload": "from c",
	}, GatherInputs(wf, "t", outputs))

	assert.Empty(t, GatherInputs(wf, "a", outputs))
}
