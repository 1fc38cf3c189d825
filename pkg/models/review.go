package models

import "time"

// ReviewDecision is one reviewer's verdict on a document. The vso/vao values
// follow the visa vocabulary of the host platform (visa sans/avec
// observation).
type ReviewDecision string

const (
	DecisionApproved             ReviewDecision = "approved"
	DecisionVSO                  ReviewDecision = "vso"
	DecisionVAO                  ReviewDecision = "vao"
	DecisionApprovedWithComments ReviewDecision = "approved_with_comments"
	DecisionVAOBlocking          ReviewDecision = "vao_blocking"
	DecisionRejected             ReviewDecision = "rejected"
	DecisionRefused              ReviewDecision = "refused"
	DecisionPending              ReviewDecision = "pending"
)

// Rejecting reports whether the decision blocks the document.
func (d ReviewDecision) Rejecting() bool {
	return d == DecisionRejected || d == DecisionRefused || d == DecisionVAOBlocking
}

// Approving reports whether the decision is an unqualified approval.
func (d ReviewDecision) Approving() bool {
	return d == DecisionApproved || d == DecisionVSO
}

// Commented reports whether the decision approves with reservations.
func (d ReviewDecision) Commented() bool {
	return d == DecisionApprovedWithComments || d == DecisionVAO
}

// DecisionStatus maps a review decision to the document status displayed by
// the host platform. The mapping is fixed.
func DecisionStatus(d ReviewDecision) string {
	switch d {
	case DecisionApproved:
		return "approved"
	case DecisionVSO:
		return "vso"
	case DecisionVAO:
		return "vao"
	case DecisionApprovedWithComments:
		return "commented"
	case DecisionVAOBlocking:
		return "vao_blocking"
	case DecisionRejected:
		return "rejected"
	case DecisionRefused:
		return "refused"
	default:
		return ""
	}
}

// WorkflowReview is a single recorded visa. Reviews are append-only; a
// reviewer may submit several times across resubmission cycles and all
// submissions are retained for audit.
type WorkflowReview struct {
	ID           string         `json:"id"`
	InstanceID   string         `json:"instance_id"`
	ReviewerID   string         `json:"reviewer_id" validate:"required"`
	ReviewerName string         `json:"reviewer_name,omitempty"`
	Decision     ReviewDecision `json:"decision"    validate:"required"`
	Comment      string         `json:"comment,omitempty"`
	Observations []string       `json:"observations,omitempty"`
	RequestedAt  time.Time      `json:"requested_at"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	IsCompleted  bool           `json:"is_completed"`
}

// ReviewAggregate summarizes a set of completed reviews for decision
// evaluation.
type ReviewAggregate struct {
	ApprovalCount   int
	RejectionCount  int
	ReviewCount     int
	LastDecision    ReviewDecision
	HasObservations bool
	HasRejection    bool
	AllApproved     bool
	HasComment      bool
}

// AggregateReviews classifies completed reviews the way decision nodes read
// them. AllApproved is false for an empty set.
func AggregateReviews(reviews []*WorkflowReview) ReviewAggregate {
	agg := ReviewAggregate{AllApproved: len(reviews) > 0}

	for _, review := range reviews {
		agg.ReviewCount++
		agg.LastDecision = review.Decision

		switch {
		case review.Decision.Rejecting():
			agg.RejectionCount++
			agg.HasRejection = true
			agg.AllApproved = false
		case review.Decision.Approving():
			agg.ApprovalCount++
		case review.Decision.Commented():
			agg.HasComment = true
			agg.AllApproved = false
		default:
			agg.AllApproved = false
		}

		if len(review.Observations) > 0 {
			agg.HasObservations = true
		}
	}

	return agg
}
