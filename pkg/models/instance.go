package models

import "time"

// WorkflowInstance tracks one document's live progress through a definition.
// The engine is the only writer: instances are created by StartWorkflow and
// mutated exclusively through engine-mediated transitions.
type WorkflowInstance struct {
	ID                   string                  `json:"id"                     validate:"required"`
	WorkflowDefinitionID string                  `json:"workflow_definition_id" validate:"required"`
	DocumentID           string                  `json:"document_id"            validate:"required"`
	CurrentNodeID        string                  `json:"current_node_id"`
	CurrentStatusID      string                  `json:"current_status_id"`
	StartedAt            time.Time               `json:"started_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	History              []*WorkflowHistoryEntry `json:"history"`
	Reviews              []*WorkflowReview       `json:"reviews"`
}

// Completed reports whether the instance reached an end node.
func (i *WorkflowInstance) Completed() bool {
	return i.CompletedAt != nil
}

// CompletedReviews returns the reviews marked completed, in submission order.
func (i *WorkflowInstance) CompletedReviews() []*WorkflowReview {
	completed := make([]*WorkflowReview, 0, len(i.Reviews))

	for _, review := range i.Reviews {
		if review.IsCompleted {
			completed = append(completed, review)
		}
	}

	return completed
}

// WorkflowHistoryEntry is an immutable audit record of one transition.
// History is append-only and strictly ordered by creation time.
type WorkflowHistoryEntry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	FromNodeID   string    `json:"from_node_id,omitempty"`
	ToNodeID     string    `json:"to_node_id"`
	FromStatusID string    `json:"from_status_id,omitempty"`
	ToStatusID   string    `json:"to_status_id,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	UserName     string    `json:"user_name,omitempty"`
	Action       string    `json:"action"`
	Comment      string    `json:"comment,omitempty"`
}
