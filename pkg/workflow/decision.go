package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/validoc/validoc/pkg/models"
)

// DecisionResult names the edge a decision node should follow.
type DecisionResult struct {
	EdgeID       string
	TargetNodeID string
	Label        string
	Reason       string
}

// Implicit classification of the aggregate review outcome, used only when no
// outgoing edge carries an explicit condition.
type reviewIntent int

const (
	intentRejection reviewIntent = iota
	intentApproval
	intentComment
)

// The label heuristics match the host platform's French status vocabulary.
// They are a documented fallback; explicit edge conditions are the primary
// mechanism and these patterns are deliberately not extended.
var (
	rejectionPattern = regexp.MustCompile(`(?i)rejet|refus|bloq|denied|reject`)
	approvalPattern  = regexp.MustCompile(`(?i)approuv|approve|valid|accept|conforme`)
	commentPattern   = regexp.MustCompile(`(?i)comment|observ|remarq|r[ée]serve`)
)

var intentStatusIDs = map[reviewIntent]map[string]bool{
	intentRejection: {"rejected": true, "refused": true, "vao_blocking": true},
	intentApproval:  {"approved": true, "vso": true},
	intentComment:   {"commented": true, "vao": true},
}

var intentPatterns = map[reviewIntent]*regexp.Regexp{
	intentRejection: rejectionPattern,
	intentApproval:  approvalPattern,
	intentComment:   commentPattern,
}

// EvaluateDecision picks the outgoing edge of a decision node. It is a pure
// function of the node, its edges and the instance's completed reviews.
//
// Explicit edge conditions are tried first, in edge order. When no edge has a
// condition, the aggregate review outcome is classified (rejection wins over
// approval, approval over comment) and an edge is located by label or target
// status. Returns nil when there are no outgoing edges, or when label
// matching would have to guess before any review exists.
func EvaluateDecision(node *models.WorkflowNode, edges []*models.WorkflowEdge, instance *models.WorkflowInstance, definition *models.WorkflowDefinition) *DecisionResult {
	if len(edges) == 0 {
		return nil
	}

	reviews := instance.CompletedReviews()
	agg := models.AggregateReviews(reviews)

	if hasExplicitConditions(edges) {
		return evaluateConditions(edges, agg)
	}

	if len(reviews) == 0 {
		// Never guess a branch before any review exists.
		return nil
	}

	return evaluateByIntent(edges, agg, definition)
}

func hasExplicitConditions(edges []*models.WorkflowEdge) bool {
	for _, edge := range edges {
		if edge.Condition != nil {
			return true
		}
	}

	return false
}

func evaluateConditions(edges []*models.WorkflowEdge, agg models.ReviewAggregate) *DecisionResult {
	for _, edge := range edges {
		if edge.Condition == nil {
			continue
		}

		if conditionHolds(edge.Condition, agg) {
			return &DecisionResult{
				EdgeID:       edge.ID,
				TargetNodeID: edge.Target,
				Label:        edge.Label,
				Reason:       fmt.Sprintf("condition %s %s matched", edge.Condition.Field, edge.Condition.Operator),
			}
		}
	}

	// No condition matched: fall back to the first unconditioned edge.
	for _, edge := range edges {
		if edge.Condition == nil {
			return &DecisionResult{
				EdgeID:       edge.ID,
				TargetNodeID: edge.Target,
				Label:        edge.Label,
				Reason:       "no condition matched, default edge",
			}
		}
	}

	first := edges[0]

	return &DecisionResult{
		EdgeID:       first.ID,
		TargetNodeID: first.Target,
		Label:        first.Label,
		Reason:       "no condition matched, first edge fallback",
	}
}

func conditionHolds(condition *models.EdgeCondition, agg models.ReviewAggregate) bool {
	var actual any

	switch condition.Field {
	case models.ConditionFieldApprovalCount:
		actual = agg.ApprovalCount
	case models.ConditionFieldRejectionCount:
		actual = agg.RejectionCount
	case models.ConditionFieldReviewCount:
		actual = agg.ReviewCount
	case models.ConditionFieldLastDecision:
		actual = string(agg.LastDecision)
	case models.ConditionFieldHasObservations:
		actual = agg.HasObservations
	default:
		return false
	}

	return compare(actual, condition.Operator, condition.Value)
}

func compare(actual any, operator models.ConditionOperator, expected any) bool {
	switch operator {
	case models.OperatorEquals:
		return equal(actual, expected)
	case models.OperatorNotEquals:
		return !equal(actual, expected)
	case models.OperatorGreaterThan:
		a, aok := toFloat(actual)
		b, bok := toFloat(expected)

		return aok && bok && a > b
	case models.OperatorLessThan:
		a, aok := toFloat(actual)
		b, bok := toFloat(expected)

		return aok && bok && a < b
	case models.OperatorContains:
		a, aok := actual.(string)
		b, bok := expected.(string)

		return aok && bok && strings.Contains(a, b)
	case models.OperatorIn:
		values, ok := expected.([]any)
		if !ok {
			return false
		}

		for _, value := range values {
			if equal(actual, value) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func equal(actual, expected any) bool {
	if a, aok := toFloat(actual); aok {
		if b, bok := toFloat(expected); bok {
			return a == b
		}
	}

	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

// toFloat normalizes the numeric types JSON decoding and Go literals
// produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func evaluateByIntent(edges []*models.WorkflowEdge, agg models.ReviewAggregate, definition *models.WorkflowDefinition) *DecisionResult {
	// Priority: rejection > all-approved > has-comment > default.
	intents := make([]reviewIntent, 0, 3)

	switch {
	case agg.HasRejection:
		intents = append(intents, intentRejection)
	case agg.AllApproved:
		intents = append(intents, intentApproval)
	case agg.HasComment:
		intents = append(intents, intentComment)
	}

	for _, intent := range intents {
		if result := matchIntent(edges, intent, definition); result != nil {
			return result
		}
	}

	first := edges[0]

	return &DecisionResult{
		EdgeID:       first.ID,
		TargetNodeID: first.Target,
		Label:        first.Label,
		Reason:       "no intent matched, first edge fallback",
	}
}

func matchIntent(edges []*models.WorkflowEdge, intent reviewIntent, definition *models.WorkflowDefinition) *DecisionResult {
	pattern := intentPatterns[intent]
	statusIDs := intentStatusIDs[intent]

	// (a) edge label matches the intent pattern.
	for _, edge := range edges {
		if edge.Label != "" && pattern.MatchString(edge.Label) {
			return &DecisionResult{
				EdgeID:       edge.ID,
				TargetNodeID: edge.Target,
				Label:        edge.Label,
				Reason:       "edge label matched review outcome",
			}
		}
	}

	// (b) the edge's target node carries a status of the intent set.
	for _, edge := range edges {
		target := definition.NodeByID(edge.Target)
		if target != nil && statusIDs[target.Data.StatusID] {
			return &DecisionResult{
				EdgeID:       edge.ID,
				TargetNodeID: edge.Target,
				Label:        edge.Label,
				Reason:       "target node status matched review outcome",
			}
		}
	}

	// (c) the target node's label matches the intent pattern.
	for _, edge := range edges {
		target := definition.NodeByID(edge.Target)
		if target != nil && target.Data.Label != "" && pattern.MatchString(target.Data.Label) {
			return &DecisionResult{
				EdgeID:       edge.ID,
				TargetNodeID: edge.Target,
				Label:        edge.Label,
				Reason:       "target node label matched review outcome",
			}
		}
	}

	return nil
}
