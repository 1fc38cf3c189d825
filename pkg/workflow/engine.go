// Package workflow implements the validation workflow engine: the state
// machine that moves a document instance through a definition graph.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/validoc/validoc/pkg/eventbus"
	"github.com/validoc/validoc/pkg/events"
	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/otelhelper"
	"github.com/validoc/validoc/pkg/persistence"
	"github.com/validoc/validoc/pkg/protocol"
	"github.com/validoc/validoc/pkg/registry"
)

// maxTraversalDepth bounds the chain of non-blocking nodes one external
// trigger may resolve. A definition that exceeds it has a cyclic
// non-blocking path and is rejected as invalid.
const maxTraversalDepth = 100

// startHistoryAction is the literal recorded on instance creation. The host
// platform is French-facing and the audit views display it verbatim.
const startHistoryAction = "Workflow démarré"

// Config carries the engine's injected dependencies.
type Config struct {
	Persistence persistence.Persistence
	Executor    *registry.Executor
	Documents   protocol.DocumentService
	Files       protocol.FileService
	Notifier    protocol.Notifier
	EventBus    eventbus.EventPublisher
	Logger      *slog.Logger
	Tracer      trace.Tracer
}

// Engine owns all instance mutations. Callers serialize access per
// instance; the engine keeps each transition sequence linear and persists
// history plus node/status changes in a single instance write.
type Engine struct {
	persistence persistence.Persistence
	executor    *registry.Executor
	documents   protocol.DocumentService
	files       protocol.FileService
	notifier    protocol.Notifier
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		persistence: cfg.Persistence,
		executor:    cfg.Executor,
		documents:   cfg.Documents,
		files:       cfg.Files,
		notifier:    cfg.Notifier,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger.With("module", "workflow_engine"),
		tracer:      cfg.Tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// StartWorkflow creates a new instance for the document at the definition's
// start node and auto-advances until the first blocking node or the end.
func (e *Engine) StartWorkflow(ctx context.Context, definitionID string, doc *models.ValidationDocument) (*models.WorkflowInstance, error) {
	ctx, span := e.startSpan(ctx, "StartWorkflow",
		attribute.String(otelhelper.DefinitionIDKey, definitionID),
		attribute.String(otelhelper.DocumentIDKey, doc.ID),
	)
	defer span.End()

	logger := e.logger.With("definition_id", definitionID, "document_id", doc.ID)

	definition, err := e.persistence.DefinitionRepository().DefinitionByID(ctx, definitionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch definition %s: %w", definitionID, err)
	}

	startNode, defaultStatus, err := e.validateDefinition(definition)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	now := time.Now().UTC()
	instance := &models.WorkflowInstance{
		ID:                   uuid.New().String(),
		WorkflowDefinitionID: definition.ID,
		DocumentID:           doc.ID,
		CurrentNodeID:        startNode.ID,
		CurrentStatusID:      defaultStatus.ID,
		StartedAt:            now,
		UpdatedAt:            now,
		History: []*models.WorkflowHistoryEntry{
			{
				ID:         uuid.New().String(),
				Timestamp:  now,
				ToNodeID:   startNode.ID,
				ToStatusID: defaultStatus.ID,
				Action:     startHistoryAction,
			},
		},
		Reviews: []*models.WorkflowReview{},
	}

	if err := e.persistence.InstanceRepository().CreateInstance(ctx, instance); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	logger = logger.With("instance_id", instance.ID)
	logger.Info("Workflow started", "start_node", startNode.ID, "status_id", defaultStatus.ID)

	// Displayed status is derived data; the instance already exists and
	// a failed refresh must not abort the start.
	if err := e.documents.UpdateDocumentStatus(ctx, doc.ID, defaultStatus.ID); err != nil {
		logger.Warn("Failed to update document status on start", "error", err)
	}

	e.publish(ctx, instance.ID, events.InstanceStarted{
		BaseEvent:  events.NewBaseEvent(events.InstanceStartedEvent, instance.ID, definition.ID),
		DocumentID: doc.ID,
		StartNode:  startNode.ID,
		StatusID:   defaultStatus.ID,
	})

	if err := e.processNode(ctx, logger, definition, instance, doc, startNode, 0); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return instance, nil
}

// SubmitReview records one reviewer's decision and, when the current review
// node's quota is met, resumes auto-advancement.
func (e *Engine) SubmitReview(ctx context.Context, instanceID string, review *models.WorkflowReview) (*models.WorkflowInstance, error) {
	ctx, span := e.startSpan(ctx, "SubmitReview",
		attribute.String(otelhelper.InstanceIDKey, instanceID),
	)
	defer span.End()

	logger := e.logger.With("instance_id", instanceID)

	instance, err := e.persistence.InstanceRepository().InstanceByID(ctx, instanceID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch instance %s: %w", instanceID, err)
	}

	definition, err := e.persistence.DefinitionRepository().DefinitionByID(ctx, instance.WorkflowDefinitionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch definition %s: %w", instance.WorkflowDefinitionID, err)
	}

	now := time.Now().UTC()

	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	review.InstanceID = instance.ID
	review.ReviewedAt = &now
	review.IsCompleted = true

	if review.RequestedAt.IsZero() {
		review.RequestedAt = now
	}

	if err := e.validate.Struct(review); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("invalid review: %w", err)
	}

	// Fetch the document before persisting anything so a submission that
	// fails leaves no review behind.
	doc, err := e.documents.DocumentByID(ctx, instance.DocumentID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch document %s: %w", instance.DocumentID, err)
	}

	if err := e.persistence.InstanceRepository().SaveReview(ctx, instance.ID, review); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	instance.Reviews = append(instance.Reviews, review)

	logger.Info("Review submitted", "reviewer_id", review.ReviewerID, "decision", review.Decision)

	if status := models.DecisionStatus(review.Decision); status != "" {
		// Displayed status is derived data; a failed refresh must not lose
		// the already-recorded review.
		if err := e.documents.UpdateDocumentStatus(ctx, instance.DocumentID, status); err != nil {
			logger.Warn("Failed to update document status after review", "error", err)
		} else {
			doc.Status = models.DocumentStatus(status)
		}
	}

	e.publish(ctx, instance.ID, events.ReviewSubmitted{
		BaseEvent:  events.NewBaseEvent(events.ReviewSubmittedEvent, instance.ID, definition.ID),
		ReviewID:   review.ID,
		ReviewerID: review.ReviewerID,
		Decision:   review.Decision,
	})

	currentNode := definition.NodeByID(instance.CurrentNodeID)
	if currentNode == nil || currentNode.Type != models.NodeTypeReview {
		return instance, nil
	}

	if err := e.processNode(ctx, logger, definition, instance, doc, currentNode, 0); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return instance, nil
}

// validateDefinition applies the executability preconditions: struct-level
// validity, a start node and at least one status.
func (e *Engine) validateDefinition(definition *models.WorkflowDefinition) (*models.WorkflowNode, *models.WorkflowStatus, error) {
	if err := e.validate.Struct(definition); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDefinitionInvalid, err)
	}

	startNode := definition.StartNode()
	if startNode == nil {
		return nil, nil, fmt.Errorf("%w: definition %s has no start node", ErrDefinitionInvalid, definition.ID)
	}

	defaultStatus := definition.DefaultStatus()
	if defaultStatus == nil {
		return nil, nil, fmt.Errorf("%w: definition %s has no statuses", ErrDefinitionInvalid, definition.ID)
	}

	return startNode, defaultStatus, nil
}

// processNode applies the per-node-type transition rule for the node the
// instance currently sits on.
func (e *Engine) processNode(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode, depth int) error {
	switch node.Type {
	case models.NodeTypeStart:
		return e.followSingleEdge(ctx, logger, definition, instance, doc, node, depth)

	case models.NodeTypeStatus:
		if definition.Settings.NotifyOnStatusChange {
			e.notify(ctx, logger, protocol.Notification{
				UserID:  doc.UploadedBy,
				Title:   "Status changed",
				Message: fmt.Sprintf("%s is now %s", doc.FileName, instance.CurrentStatusID),
				Data:    map[string]any{"instance_id": instance.ID, "status_id": instance.CurrentStatusID},
			})
		}

		return e.followSingleEdge(ctx, logger, definition, instance, doc, node, depth)

	case models.NodeTypeReview:
		return e.processReviewNode(ctx, logger, definition, instance, doc, node, depth)

	case models.NodeTypeDecision:
		return e.processDecisionNode(ctx, logger, definition, instance, doc, node, depth)

	case models.NodeTypeAction:
		return e.processActionNode(ctx, logger, definition, instance, doc, node, depth)

	case models.NodeTypeEnd:
		return e.completeInstance(ctx, logger, definition, instance, doc, node)

	case models.NodeTypeTimer, models.NodeTypeParallel:
		// Declared but not implemented: pass through.
		logger.Warn("Unsupported node type, passing through", "node_id", node.ID, "node_type", node.Type)

		return e.followSingleEdge(ctx, logger, definition, instance, doc, node, depth)

	default:
		logger.Warn("Unknown node type, stopping", "node_id", node.ID, "node_type", node.Type)

		return nil
	}
}

func (e *Engine) processReviewNode(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode, depth int) error {
	required := node.Data.RequiredApprovals
	if required <= 0 {
		required = 1
	}

	completed := e.completedReviewCount(instance, definition.Settings)

	if completed < required {
		logger.Info("Waiting for reviews", "node_id", node.ID, "completed", completed, "required", required)

		e.publish(ctx, instance.ID, events.InstanceBlocked{
			BaseEvent:         events.NewBaseEvent(events.InstanceBlockedEvent, instance.ID, definition.ID),
			NodeID:            node.ID,
			RequiredApprovals: required,
			CompletedReviews:  completed,
		})

		return nil
	}

	logger.Info("Review quota met", "node_id", node.ID, "completed", completed, "required", required)

	return e.followSingleEdge(ctx, logger, definition, instance, doc, node, depth)
}

// completedReviewCount counts completed reviews toward a review node's
// quota. With resubmission enabled each reviewer counts once, on their
// latest submission.
func (e *Engine) completedReviewCount(instance *models.WorkflowInstance, settings models.WorkflowSettings) int {
	completed := instance.CompletedReviews()

	if !settings.AllowResubmission {
		return len(completed)
	}

	reviewers := make(map[string]bool, len(completed))
	for _, review := range completed {
		reviewers[review.ReviewerID] = true
	}

	return len(reviewers)
}

func (e *Engine) processDecisionNode(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode, depth int) error {
	edges := definition.OutgoingEdges(node.ID)

	result := EvaluateDecision(node, edges, instance, definition)
	if result == nil {
		logger.Warn("Decision not resolvable, stopping", "node_id", node.ID, "outgoing_edges", len(edges))

		return nil
	}

	logger.Info("Decision evaluated", "node_id", node.ID, "edge_id", result.EdgeID, "reason", result.Reason)

	var edge *models.WorkflowEdge

	for _, candidate := range edges {
		if candidate.ID == result.EdgeID {
			edge = candidate

			break
		}
	}

	target := definition.NodeByID(result.TargetNodeID)
	if edge == nil || target == nil {
		return fmt.Errorf("%w: decision edge %s targets unknown node %s", ErrDefinitionInvalid, result.EdgeID, result.TargetNodeID)
	}

	return e.moveToNode(ctx, logger, definition, instance, doc, node, target, edge, depth)
}

func (e *Engine) processActionNode(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode, depth int) error {
	actionCtx := protocol.ActionContext{
		Instance:   instance,
		Definition: definition,
		Document:   doc,
		Files:      e.files,
		Notifier:   e.notifier,
	}

	for _, action := range node.Data.AutoActions {
		result := e.executor.Execute(ctx, action, actionCtx)

		// A failing action is recorded and skipped, never fatal to the node.
		e.publish(ctx, instance.ID, events.ActionExecuted{
			BaseEvent:  events.NewBaseEvent(events.ActionExecutedEvent, instance.ID, definition.ID),
			NodeID:     node.ID,
			ActionID:   action.ID,
			ActionType: action.Type,
			Result:     result,
		})
	}

	return e.followSingleEdge(ctx, logger, definition, instance, doc, node, depth)
}

func (e *Engine) completeInstance(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode) error {
	if instance.Completed() {
		return nil
	}

	now := time.Now().UTC()
	instance.CompletedAt = &now
	instance.UpdatedAt = now

	if err := e.persistence.InstanceRepository().UpdateInstance(ctx, instance); err != nil {
		return &TransitionError{InstanceID: instance.ID, ToNodeID: node.ID, Err: err}
	}

	logger.Info("Workflow completed", "end_node", node.ID, "status_id", instance.CurrentStatusID)

	e.notify(ctx, logger, protocol.Notification{
		UserID:  doc.UploadedBy,
		Title:   "Validation complete",
		Message: fmt.Sprintf("%s finished validation with status %s", doc.FileName, instance.CurrentStatusID),
		Data:    map[string]any{"instance_id": instance.ID},
	})

	e.publish(ctx, instance.ID, events.InstanceCompleted{
		BaseEvent:     events.NewBaseEvent(events.InstanceCompletedEvent, instance.ID, definition.ID),
		DocumentID:    doc.ID,
		FinalStatusID: instance.CurrentStatusID,
		Duration:      now.Sub(instance.StartedAt),
	})

	return nil
}

// followSingleEdge advances through the node's first outgoing edge. A
// non-end node with no outgoing edges is a dead end: definition-author
// error, stopped silently.
func (e *Engine) followSingleEdge(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, node *models.WorkflowNode, depth int) error {
	edges := definition.OutgoingEdges(node.ID)
	if len(edges) == 0 {
		logger.Warn("Dead end: node has no outgoing edges", "node_id", node.ID, "node_type", node.Type)

		return nil
	}

	edge := edges[0]

	target := definition.NodeByID(edge.Target)
	if target == nil {
		return fmt.Errorf("%w: edge %s targets unknown node %s", ErrDefinitionInvalid, edge.ID, edge.Target)
	}

	return e.moveToNode(ctx, logger, definition, instance, doc, node, target, edge, depth)
}

// moveToNode applies one transition: stage the status change and history
// entry on the instance, persist them in a single write, refresh the
// document's displayed status, publish the advance, then process the target
// node. The recursion resolves a whole chain of non-blocking nodes within
// one external trigger.
func (e *Engine) moveToNode(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, doc *models.ValidationDocument, fromNode, toNode *models.WorkflowNode, edge *models.WorkflowEdge, depth int) error {
	if depth >= maxTraversalDepth {
		return fmt.Errorf("%w: cyclic non-blocking path through node %s", ErrDefinitionInvalid, toNode.ID)
	}

	fromStatusID := instance.CurrentStatusID
	toStatusID := fromStatusID

	if toNode.Type == models.NodeTypeStatus && toNode.Data.StatusID != "" {
		toStatusID = toNode.Data.StatusID
	}

	now := time.Now().UTC()

	instance.History = append(instance.History, &models.WorkflowHistoryEntry{
		ID:           uuid.New().String(),
		Timestamp:    now,
		FromNodeID:   fromNode.ID,
		ToNodeID:     toNode.ID,
		FromStatusID: fromStatusID,
		ToStatusID:   toStatusID,
		Action:       "transition",
		Comment:      edge.Label,
	})

	instance.CurrentNodeID = toNode.ID
	instance.CurrentStatusID = toStatusID
	instance.UpdatedAt = now

	if err := e.persistence.InstanceRepository().UpdateInstance(ctx, instance); err != nil {
		// Roll the staged transition back so the caller sees no partial move.
		instance.History = instance.History[:len(instance.History)-1]
		instance.CurrentNodeID = fromNode.ID
		instance.CurrentStatusID = fromStatusID

		return &TransitionError{InstanceID: instance.ID, FromNodeID: fromNode.ID, ToNodeID: toNode.ID, Err: err}
	}

	if toStatusID != fromStatusID {
		// The transition is already persisted; the document's displayed
		// status is derived data and a failed refresh must not undo it.
		if err := e.documents.UpdateDocumentStatus(ctx, doc.ID, toStatusID); err != nil {
			logger.Warn("Failed to update document status on transition", "error", err)
		} else {
			doc.Status = models.DocumentStatus(toStatusID)
		}
	}

	logger.Debug("Instance advanced", "from", fromNode.ID, "to", toNode.ID, "status_id", toStatusID)

	e.publish(ctx, instance.ID, events.InstanceAdvanced{
		BaseEvent:  events.NewBaseEvent(events.InstanceAdvancedEvent, instance.ID, definition.ID),
		FromNodeID: fromNode.ID,
		ToNodeID:   toNode.ID,
		EdgeID:     edge.ID,
		StatusID:   toStatusID,
	})

	return e.processNode(ctx, logger, definition, instance, doc, toNode, depth+1)
}

// publish sends an event to the bus; a full or closed bus is logged, never
// allowed to fail a transition.
func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) notify(ctx context.Context, logger *slog.Logger, notification protocol.Notification) {
	if e.notifier == nil {
		return
	}

	if err := e.notifier.Notify(ctx, notification); err != nil {
		logger.Warn("Failed to deliver notification", "error", err)
	}
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return otelhelper.StartSpan(ctx, e.tracer, name, attrs...)
}
