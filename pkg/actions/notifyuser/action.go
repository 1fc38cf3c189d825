// Package notifyuser raises a notification, and optionally a task, for the
// configured user or the document uploader.
package notifyuser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

type Action struct {
	ID         string
	UserID     string
	Message    string
	CreateTask bool
}

func NewAction(config map[string]any) (*Action, error) {
	id, _ := config["id"].(string)
	userID, _ := config["user_id"].(string)
	message, _ := config["message"].(string)
	createTask, _ := config["create_task"].(bool)

	return &Action{
		ID:         id,
		UserID:     userID,
		Message:    message,
		CreateTask: createTask,
	}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext, logger *slog.Logger) (*models.ActionResult, error) {
	userID := a.UserID
	if userID == "" {
		userID = actionCtx.Document.UploadedBy
	}

	if userID == "" {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  "no target user: neither user_id configured nor uploader known",
		}, nil
	}

	message := a.Message
	if message == "" {
		message = fmt.Sprintf("%s has received status %s", actionCtx.Document.FileName, actionCtx.Instance.CurrentStatusID)
	} else {
		message = expand(message, actionCtx)
	}

	err := actionCtx.Notifier.Notify(ctx, protocol.Notification{
		UserID:  userID,
		Title:   "Document validation",
		Message: message,
		Data: map[string]any{
			"instance_id": actionCtx.Instance.ID,
			"document_id": actionCtx.Document.ID,
		},
	})
	if err != nil {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  fmt.Sprintf("failed to notify user %s", userID),
			Error:    err.Error(),
		}, nil
	}

	if a.CreateTask {
		err := actionCtx.Files.CreateTask(ctx, "Document validation", message, actionCtx.Document.ProjectID)
		if err != nil {
			// The notification went out; report the task failure without failing the action.
			logger.Warn("Failed to create task", "error", err)
		}
	}

	logger.Info("User notified", "user_id", userID)

	return &models.ActionResult{
		ActionID: a.ID,
		Success:  true,
		Message:  fmt.Sprintf("notified user %s", userID),
		Data:     map[string]any{"user_id": userID, "message": message},
	}, nil
}

// expand substitutes the placeholders the graph editor offers in message
// templates.
func expand(message string, actionCtx protocol.ActionContext) string {
	replacer := strings.NewReplacer(
		"{fileName}", actionCtx.Document.FileName,
		"{statusId}", actionCtx.Instance.CurrentStatusID,
		"{documentId}", actionCtx.Document.ID,
	)

	return replacer.Replace(message)
}
