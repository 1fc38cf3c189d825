// Package events defines event types for workflow lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/validoc/validoc/pkg/models"
)

type EventType string

// Topic is the single stream all engine and watcher events are published on.
const Topic = "validoc.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Instance lifecycle events.
	InstanceStartedEvent   EventType = "instance.started"
	InstanceAdvancedEvent  EventType = "instance.advanced"
	InstanceBlockedEvent   EventType = "instance.blocked"
	InstanceCompletedEvent EventType = "instance.completed"

	// Review and action events.
	ReviewSubmittedEvent EventType = "review.submitted"
	ActionExecutedEvent  EventType = "action.executed"

	// Folder watcher events.
	WatcherFileDetectedEvent EventType = "watcher.file.detected"
	WatcherErrorEvent        EventType = "watcher.error"
	WatcherStoppedEvent      EventType = "watcher.stopped"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	InstanceID   string         `json:"instance_id,omitempty"`
	DefinitionID string         `json:"definition_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, instanceID, definitionID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		InstanceID:   instanceID,
		DefinitionID: definitionID,
		Metadata:     make(map[string]any),
	}
}

type InstanceStarted struct {
	BaseEvent

	DocumentID string `json:"document_id"`
	StartNode  string `json:"start_node"`
	StatusID   string `json:"status_id"`
}

func (e InstanceStarted) GetType() EventType {
	return InstanceStartedEvent
}

type InstanceAdvanced struct {
	BaseEvent

	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
	EdgeID     string `json:"edge_id,omitempty"`
	StatusID   string `json:"status_id,omitempty"`
}

func (e InstanceAdvanced) GetType() EventType {
	return InstanceAdvancedEvent
}

type InstanceBlocked struct {
	BaseEvent

	NodeID            string `json:"node_id"`
	RequiredApprovals int    `json:"required_approvals"`
	CompletedReviews  int    `json:"completed_reviews"`
}

func (e InstanceBlocked) GetType() EventType {
	return InstanceBlockedEvent
}

type InstanceCompleted struct {
	BaseEvent

	DocumentID    string        `json:"document_id"`
	FinalStatusID string        `json:"final_status_id"`
	Duration      time.Duration `json:"duration"`
}

func (e InstanceCompleted) GetType() EventType {
	return InstanceCompletedEvent
}

type ReviewSubmitted struct {
	BaseEvent

	ReviewID   string                `json:"review_id"`
	ReviewerID string                `json:"reviewer_id"`
	Decision   models.ReviewDecision `json:"decision"`
}

func (e ReviewSubmitted) GetType() EventType {
	return ReviewSubmittedEvent
}

type ActionExecuted struct {
	BaseEvent

	NodeID     string               `json:"node_id"`
	ActionID   string               `json:"action_id"`
	ActionType models.ActionType    `json:"action_type"`
	Result     *models.ActionResult `json:"result"`
}

func (e ActionExecuted) GetType() EventType {
	return ActionExecutedEvent
}

type WatcherFileDetected struct {
	BaseEvent

	WatcherID  string `json:"watcher_id"`
	FolderID   string `json:"folder_id"`
	FileID     string `json:"file_id"`
	FileName   string `json:"file_name"`
	DocumentID string `json:"document_id"`
}

func (e WatcherFileDetected) GetType() EventType {
	return WatcherFileDetectedEvent
}

type WatcherError struct {
	BaseEvent

	WatcherID         string `json:"watcher_id"`
	FolderID          string `json:"folder_id"`
	Error             string `json:"error"`
	ConsecutiveErrors int    `json:"consecutive_errors"`
}

func (e WatcherError) GetType() EventType {
	return WatcherErrorEvent
}

type WatcherStopped struct {
	BaseEvent

	WatcherID string `json:"watcher_id"`
	FolderID  string `json:"folder_id"`
	Reason    string `json:"reason"`
}

func (e WatcherStopped) GetType() EventType {
	return WatcherStoppedEvent
}
