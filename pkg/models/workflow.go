// Package models defines the core domain models for document validation workflows.
package models

import "time"

// DefinitionState represents the lifecycle state of a workflow definition.
type DefinitionState string

const (
	DefinitionStateDraft    DefinitionState = "draft"    // Editable, not executable
	DefinitionStateActive   DefinitionState = "active"   // Current version, executable
	DefinitionStateArchived DefinitionState = "archived" // Historical, kept for running instances
)

// WorkflowDefinition is the reusable validation-circuit template: a graph of
// typed nodes and edges plus the statuses a document can display while moving
// through it. Definitions are versioned by replacement; the engine never
// mutates one.
type WorkflowDefinition struct {
	ID          string            `json:"id"          validate:"required"`
	ProjectID   string            `json:"project_id"  validate:"required"`
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description"`
	State       DefinitionState   `json:"state"`
	Version     int               `json:"version"`
	Nodes       []*WorkflowNode   `json:"nodes"       validate:"required,min=1,dive"`
	Edges       []*WorkflowEdge   `json:"edges"       validate:"dive"`
	Statuses    []*WorkflowStatus `json:"statuses"    validate:"required,min=1,dive"`
	Settings    WorkflowSettings  `json:"settings"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// WorkflowStatus is one displayable document status owned by a definition.
type WorkflowStatus struct {
	ID        string `json:"id"    validate:"required"`
	Name      string `json:"name"  validate:"required"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
	IsFinal   bool   `json:"is_final"`
}

// WorkflowSettings carries per-definition execution options.
type WorkflowSettings struct {
	SourceFolderID      string `json:"source_folder_id,omitempty"`
	TargetFolderID      string `json:"target_folder_id,omitempty"`
	RejectedFolderID    string `json:"rejected_folder_id,omitempty"`
	AutoStartOnUpload   bool   `json:"auto_start_on_upload"`
	NotifyOnStatusChange bool  `json:"notify_on_status_change"`
	AllowResubmission   bool   `json:"allow_resubmission"`
	ParallelReview      bool   `json:"parallel_review"`
	MaxReviewDays       int    `json:"max_review_days,omitempty"`
}

// StartNode returns the first node of type start, or nil. A definition
// without a start node is invalid for execution.
func (d *WorkflowDefinition) StartNode() *WorkflowNode {
	for _, node := range d.Nodes {
		if node.Type == NodeTypeStart {
			return node
		}
	}

	return nil
}

// NodeByID returns the node with the given id, or nil.
func (d *WorkflowDefinition) NodeByID(id string) *WorkflowNode {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// OutgoingEdges returns the edges leaving the given node, in definition order.
func (d *WorkflowDefinition) OutgoingEdges(nodeID string) []*WorkflowEdge {
	edges := make([]*WorkflowEdge, 0)

	for _, edge := range d.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// DefaultStatus returns the status flagged is_default, falling back to the
// first declared status. Returns nil when the definition has no statuses.
func (d *WorkflowDefinition) DefaultStatus() *WorkflowStatus {
	for _, status := range d.Statuses {
		if status.IsDefault {
			return status
		}
	}

	if len(d.Statuses) > 0 {
		return d.Statuses[0]
	}

	return nil
}

// StatusByID returns the status with the given id, or nil.
func (d *WorkflowDefinition) StatusByID(id string) *WorkflowStatus {
	for _, status := range d.Statuses {
		if status.ID == id {
			return status
		}
	}

	return nil
}
