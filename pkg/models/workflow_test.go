package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		ID:        "def-1",
		ProjectID: "project-1",
		Name:      "Test graph",
		Nodes: []*WorkflowNode{
			{ID: "start", Type: NodeTypeStart},
			{ID: "review", Type: NodeTypeReview},
			{ID: "end", Type: NodeTypeEnd},
		},
		Edges: []*WorkflowEdge{
			{ID: "e1", Source: "start", Target: "review"},
			{ID: "e2", Source: "review", Target: "end"},
			{ID: "e3", Source: "review", Target: "start"},
		},
		Statuses: []*WorkflowStatus{
			{ID: "draft", Name: "Draft"},
			{ID: "pending", Name: "Pending", IsDefault: true},
		},
	}
}

func TestStartNode(t *testing.T) {
	definition := graphDefinition()
	require.NotNil(t, definition.StartNode())
	assert.Equal(t, "start", definition.StartNode().ID)

	definition.Nodes = definition.Nodes[1:]
	assert.Nil(t, definition.StartNode())
}

func TestNodeByID(t *testing.T) {
	definition := graphDefinition()
	assert.NotNil(t, definition.NodeByID("review"))
	assert.Nil(t, definition.NodeByID("missing"))
}

func TestOutgoingEdges_PreservesOrder(t *testing.T) {
	definition := graphDefinition()

	edges := definition.OutgoingEdges("review")
	require.Len(t, edges, 2)
	assert.Equal(t, "e2", edges[0].ID)
	assert.Equal(t, "e3", edges[1].ID)

	assert.Empty(t, definition.OutgoingEdges("end"))
}

func TestDefaultStatus(t *testing.T) {
	definition := graphDefinition()
	assert.Equal(t, "pending", definition.DefaultStatus().ID)

	// Without a flagged default the first declared status wins.
	definition.Statuses[1].IsDefault = false
	assert.Equal(t, "draft", definition.DefaultStatus().ID)

	definition.Statuses = nil
	assert.Nil(t, definition.DefaultStatus())
}

func TestNodeBehaviorFlags(t *testing.T) {
	assert.True(t, (&WorkflowNode{Type: NodeTypeReview}).Blocking())
	assert.False(t, (&WorkflowNode{Type: NodeTypeStatus}).Blocking())
	assert.True(t, (&WorkflowNode{Type: NodeTypeEnd}).Terminal())
	assert.False(t, (&WorkflowNode{Type: NodeTypeAction}).Terminal())
}
