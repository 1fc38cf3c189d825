// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/validoc/validoc/pkg/models"
)

// CreateTestNode creates a WorkflowNode with default values that can be
// overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:        uuid.New().String(),
		Type:      models.NodeTypeStatus,
		PositionX: 100,
		PositionY: 200,
		Data:      models.NodeData{Label: "Test Node"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithType sets the node type.
func WithType(nodeType models.NodeType) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.Label = label
	}
}

// WithStatusID sets the status attached to the node.
func WithStatusID(statusID string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.StatusID = statusID
	}
}

// WithRequiredApprovals sets the review quota of a review node.
func WithRequiredApprovals(count int) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.RequiredApprovals = count
	}
}

// WithAssignees sets the reviewers assigned to a review node.
func WithAssignees(assignees ...string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.Assignees = assignees
	}
}

// WithAutoActions sets the automatic actions of an action node.
func WithAutoActions(actions ...*models.WorkflowAutoAction) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data.AutoActions = actions
	}
}

// Edge creates an unconditioned edge between two nodes.
func Edge(id, source, target string) *models.WorkflowEdge {
	return &models.WorkflowEdge{ID: id, Source: source, Target: target}
}

// LabeledEdge creates an edge carrying a label for implicit decision matching.
func LabeledEdge(id, source, target, label string) *models.WorkflowEdge {
	return &models.WorkflowEdge{ID: id, Source: source, Target: target, Label: label}
}

// ConditionedEdge creates an edge with an explicit branching condition.
func ConditionedEdge(id, source, target string, field models.ConditionField, operator models.ConditionOperator, value any) *models.WorkflowEdge {
	return &models.WorkflowEdge{
		ID:     id,
		Source: source,
		Target: target,
		Condition: &models.EdgeCondition{
			Field:    field,
			Operator: operator,
			Value:    value,
		},
	}
}

// CreateTestDefinition creates an active definition with one status and no
// nodes; callers add the graph they need.
func CreateTestDefinition(overrides ...func(*models.WorkflowDefinition)) *models.WorkflowDefinition {
	definition := &models.WorkflowDefinition{
		ID:        uuid.New().String(),
		ProjectID: "project-1",
		Name:      "Test Validation Workflow",
		State:     models.DefinitionStateActive,
		Version:   1,
		Statuses: []*models.WorkflowStatus{
			{ID: "pending", Name: "Pending", IsDefault: true},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(definition)
	}

	return definition
}

// WithNodes sets the definition's node list.
func WithNodes(nodes ...*models.WorkflowNode) func(*models.WorkflowDefinition) {
	return func(d *models.WorkflowDefinition) {
		d.Nodes = nodes
	}
}

// WithEdges sets the definition's edge list.
func WithEdges(edges ...*models.WorkflowEdge) func(*models.WorkflowDefinition) {
	return func(d *models.WorkflowDefinition) {
		d.Edges = edges
	}
}

// WithStatuses sets the definition's status list.
func WithStatuses(statuses ...*models.WorkflowStatus) func(*models.WorkflowDefinition) {
	return func(d *models.WorkflowDefinition) {
		d.Statuses = statuses
	}
}

// WithSettings sets the definition's settings.
func WithSettings(settings models.WorkflowSettings) func(*models.WorkflowDefinition) {
	return func(d *models.WorkflowDefinition) {
		d.Settings = settings
	}
}

// LinearDefinition creates the canonical validation graph:
//
//	start -> status(pending) -> review(1) -> decision
//	  decision -> status(rejected) -> end        (rejectionCount > 0)
//	  decision -> status(approved) -> action -> end
func LinearDefinition(actions ...*models.WorkflowAutoAction) *models.WorkflowDefinition {
	return CreateTestDefinition(
		WithStatuses(
			&models.WorkflowStatus{ID: "pending", Name: "Pending", IsDefault: true},
			&models.WorkflowStatus{ID: "approved", Name: "Approved", IsFinal: true},
			&models.WorkflowStatus{ID: "rejected", Name: "Rejected", IsFinal: true},
		),
		WithNodes(
			CreateTestNode(WithID("start"), WithType(models.NodeTypeStart)),
			CreateTestNode(WithID("status-pending"), WithType(models.NodeTypeStatus), WithStatusID("pending")),
			CreateTestNode(WithID("review"), WithType(models.NodeTypeReview), WithRequiredApprovals(1)),
			CreateTestNode(WithID("decision"), WithType(models.NodeTypeDecision)),
			CreateTestNode(WithID("status-approved"), WithType(models.NodeTypeStatus), WithStatusID("approved")),
			CreateTestNode(WithID("actions"), WithType(models.NodeTypeAction), WithAutoActions(actions...)),
			CreateTestNode(WithID("end-approved"), WithType(models.NodeTypeEnd)),
			CreateTestNode(WithID("status-rejected"), WithType(models.NodeTypeStatus), WithStatusID("rejected")),
			CreateTestNode(WithID("end-rejected"), WithType(models.NodeTypeEnd)),
		),
		WithEdges(
			Edge("e1", "start", "status-pending"),
			Edge("e2", "status-pending", "review"),
			Edge("e3", "review", "decision"),
			ConditionedEdge("e4", "decision", "status-rejected", models.ConditionFieldRejectionCount, models.OperatorGreaterThan, 0),
			Edge("e5", "decision", "status-approved"),
			Edge("e6", "status-approved", "actions"),
			Edge("e7", "actions", "end-approved"),
			Edge("e8", "status-rejected", "end-rejected"),
		),
	)
}

// CreateTestDocument creates a pending validation document.
func CreateTestDocument(overrides ...func(*models.ValidationDocument)) *models.ValidationDocument {
	doc := &models.ValidationDocument{
		ID:         uuid.New().String(),
		ProjectID:  "project-1",
		FileID:     "file-1",
		FileName:   "plan.pdf",
		Extension:  "pdf",
		Size:       2048,
		FolderID:   "folder-in",
		Status:     models.DocumentStatusPending,
		UploadedBy: "uploader-1",
		UploadedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(doc)
	}

	return doc
}

// CreateTestReview creates a pending review ready for submission.
func CreateTestReview(reviewerID string, decision models.ReviewDecision, overrides ...func(*models.WorkflowReview)) *models.WorkflowReview {
	review := &models.WorkflowReview{
		ReviewerID:   reviewerID,
		ReviewerName: "Reviewer " + reviewerID,
		Decision:     decision,
	}

	for _, override := range overrides {
		override(review)
	}

	return review
}

// WithComment sets the review comment.
func WithComment(comment string) func(*models.WorkflowReview) {
	return func(r *models.WorkflowReview) {
		r.Comment = comment
	}
}

// WithObservations sets the review observations.
func WithObservations(observations ...string) func(*models.WorkflowReview) {
	return func(r *models.WorkflowReview) {
		r.Observations = observations
	}
}

// CompletedReview creates a completed review, for seeding instances directly.
func CompletedReview(reviewerID string, decision models.ReviewDecision, overrides ...func(*models.WorkflowReview)) *models.WorkflowReview {
	review := CreateTestReview(reviewerID, decision, overrides...)
	review.ID = uuid.New().String()
	review.IsCompleted = true

	now := time.Now().UTC()
	review.ReviewedAt = &now

	return review
}

// CreateTestInstance creates an in-flight instance positioned at the given
// node.
func CreateTestInstance(definition *models.WorkflowDefinition, nodeID string, overrides ...func(*models.WorkflowInstance)) *models.WorkflowInstance {
	instance := &models.WorkflowInstance{
		ID:                   uuid.New().String(),
		WorkflowDefinitionID: definition.ID,
		DocumentID:           uuid.New().String(),
		CurrentNodeID:        nodeID,
		CurrentStatusID:      "pending",
		StartedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
		History:              []*models.WorkflowHistoryEntry{},
		Reviews:              []*models.WorkflowReview{},
	}

	for _, override := range overrides {
		override(instance)
	}

	return instance
}

// WithReviews seeds the instance with reviews.
func WithReviews(reviews ...*models.WorkflowReview) func(*models.WorkflowInstance) {
	return func(i *models.WorkflowInstance) {
		i.Reviews = reviews
	}
}
