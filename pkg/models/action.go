package models

// ActionType identifies an automated side-effecting action attached to an
// action node.
type ActionType string

const (
	ActionTypeMoveFile       ActionType = "move_file"
	ActionTypeCopyFile       ActionType = "copy_file"
	ActionTypeNotifyUser     ActionType = "notify_user"
	ActionTypeSendComment    ActionType = "send_comment"
	ActionTypeUpdateMetadata ActionType = "update_metadata"
	ActionTypeWebhook        ActionType = "webhook"
)

// WorkflowAutoAction is one configured action of an action node. Config is
// the type-specific payload produced by the graph editor and decoded by the
// action factory.
type WorkflowAutoAction struct {
	ID     string         `json:"id"`
	Type   ActionType     `json:"type" validate:"required"`
	Label  string         `json:"label,omitempty"`
	Config map[string]any `json:"config"`
}

// ActionResult is the uniform outcome of a single auto-action. A failing
// action is reported here, never as an error that aborts the node.
type ActionResult struct {
	ActionID string         `json:"action_id"`
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}
