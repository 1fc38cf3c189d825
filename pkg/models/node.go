package models

// NodeType classifies a workflow node by its transition behavior.
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeStatus   NodeType = "status"
	NodeTypeReview   NodeType = "review"
	NodeTypeDecision NodeType = "decision"
	NodeTypeAction   NodeType = "action"
	NodeTypeEnd      NodeType = "end"
	NodeTypeTimer    NodeType = "timer"    // Declared, pass-through only
	NodeTypeParallel NodeType = "parallel" // Declared, pass-through only
)

// WorkflowNode is one node instance in a definition graph. Data carries the
// type-specific payload produced by the graph editor.
type WorkflowNode struct {
	ID        string   `json:"id"   validate:"required"`
	Type      NodeType `json:"type" validate:"required"`
	PositionX int      `json:"position_x"`
	PositionY int      `json:"position_y"`
	Data      NodeData `json:"data"`
}

// NodeData holds the union of type-specific node fields. Which fields are
// meaningful depends on the node type.
type NodeData struct {
	Label             string              `json:"label,omitempty"`
	StatusID          string              `json:"status_id,omitempty"`          // status nodes
	Color             string              `json:"color,omitempty"`              // status nodes
	RequiredApprovals int                 `json:"required_approvals,omitempty"` // review nodes
	Assignees         []string            `json:"assignees,omitempty"`          // review nodes
	AutoActions       []*WorkflowAutoAction `json:"auto_actions,omitempty"`     // action nodes
}

// Blocking reports whether the engine must wait at this node for external
// input before following an outgoing edge.
func (n *WorkflowNode) Blocking() bool {
	return n.Type == NodeTypeReview
}

// Terminal reports whether the node ends traversal.
func (n *WorkflowNode) Terminal() bool {
	return n.Type == NodeTypeEnd
}

// WorkflowEdge connects two nodes. An edge may carry an explicit condition
// evaluated by the decision evaluator; the label is used as an implicit
// fallback when no edge of a decision node has a condition.
type WorkflowEdge struct {
	ID        string         `json:"id"     validate:"required"`
	Source    string         `json:"source" validate:"required"`
	Target    string         `json:"target" validate:"required"`
	Label     string         `json:"label,omitempty"`
	Condition *EdgeCondition `json:"condition,omitempty"`
}

// ConditionField names an aggregate of an instance's completed reviews that
// an explicit edge condition can read.
type ConditionField string

const (
	ConditionFieldApprovalCount   ConditionField = "approvalCount"
	ConditionFieldRejectionCount  ConditionField = "rejectionCount"
	ConditionFieldReviewCount     ConditionField = "reviewCount"
	ConditionFieldLastDecision    ConditionField = "lastDecision"
	ConditionFieldHasObservations ConditionField = "hasObservations"
)

// ConditionOperator compares a condition field to a literal value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorContains    ConditionOperator = "contains"
	OperatorIn          ConditionOperator = "in"
)

// EdgeCondition is an explicit branching rule on an edge leaving a decision
// node. Explicit conditions are the recommended mechanism; label matching is
// only a fallback.
type EdgeCondition struct {
	Field    ConditionField    `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    any               `json:"value"`
}
