package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completedReview(reviewer string, decision ReviewDecision, observations ...string) *WorkflowReview {
	return &WorkflowReview{
		ReviewerID:   reviewer,
		Decision:     decision,
		Observations: observations,
		IsCompleted:  true,
	}
}

func TestDecisionClassification(t *testing.T) {
	assert.True(t, DecisionRejected.Rejecting())
	assert.True(t, DecisionRefused.Rejecting())
	assert.True(t, DecisionVAOBlocking.Rejecting())
	assert.False(t, DecisionVAO.Rejecting())

	assert.True(t, DecisionApproved.Approving())
	assert.True(t, DecisionVSO.Approving())
	assert.False(t, DecisionApprovedWithComments.Approving())

	assert.True(t, DecisionVAO.Commented())
	assert.True(t, DecisionApprovedWithComments.Commented())
	assert.False(t, DecisionApproved.Commented())
}

func TestDecisionStatus(t *testing.T) {
	assert.Equal(t, "approved", DecisionStatus(DecisionApproved))
	assert.Equal(t, "vso", DecisionStatus(DecisionVSO))
	assert.Equal(t, "vao", DecisionStatus(DecisionVAO))
	assert.Equal(t, "commented", DecisionStatus(DecisionApprovedWithComments))
	assert.Equal(t, "vao_blocking", DecisionStatus(DecisionVAOBlocking))
	assert.Equal(t, "rejected", DecisionStatus(DecisionRejected))
	assert.Equal(t, "refused", DecisionStatus(DecisionRefused))
	assert.Equal(t, "", DecisionStatus(DecisionPending))
}

func TestAggregateReviews_Empty(t *testing.T) {
	agg := AggregateReviews(nil)

	assert.Zero(t, agg.ReviewCount)
	assert.False(t, agg.AllApproved)
	assert.False(t, agg.HasRejection)
}

func TestAggregateReviews_AllApproved(t *testing.T) {
	agg := AggregateReviews([]*WorkflowReview{
		completedReview("r1", DecisionApproved),
		completedReview("r2", DecisionVSO),
	})

	assert.Equal(t, 2, agg.ApprovalCount)
	assert.True(t, agg.AllApproved)
	assert.False(t, agg.HasRejection)
	assert.Equal(t, DecisionVSO, agg.LastDecision)
}

func TestAggregateReviews_CommentBreaksAllApproved(t *testing.T) {
	agg := AggregateReviews([]*WorkflowReview{
		completedReview("r1", DecisionApproved),
		completedReview("r2", DecisionVAO),
	})

	assert.False(t, agg.AllApproved)
	assert.True(t, agg.HasComment)
	assert.Equal(t, 1, agg.ApprovalCount)
}

func TestAggregateReviews_RejectionCounted(t *testing.T) {
	agg := AggregateReviews([]*WorkflowReview{
		completedReview("r1", DecisionApproved),
		completedReview("r2", DecisionVAOBlocking),
		completedReview("r3", DecisionRefused),
	})

	assert.Equal(t, 2, agg.RejectionCount)
	assert.True(t, agg.HasRejection)
	assert.False(t, agg.AllApproved)
	assert.Equal(t, 3, agg.ReviewCount)
}

func TestAggregateReviews_Observations(t *testing.T) {
	agg := AggregateReviews([]*WorkflowReview{
		completedReview("r1", DecisionVSO, "missing legend"),
	})

	assert.True(t, agg.HasObservations)
}
