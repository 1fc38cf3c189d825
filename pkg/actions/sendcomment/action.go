// Package sendcomment posts a comment on the document that aggregates the
// text of all completed review comments.
package sendcomment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

type Action struct {
	ID      string
	Comment string
}

func NewAction(config map[string]any) (*Action, error) {
	id, _ := config["id"].(string)
	comment, _ := config["comment"].(string)

	return &Action{
		ID:      id,
		Comment: comment,
	}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext, logger *slog.Logger) (*models.ActionResult, error) {
	body := a.buildBody(actionCtx.Instance)

	err := actionCtx.Notifier.Notify(ctx, protocol.Notification{
		UserID:  actionCtx.Document.UploadedBy,
		Title:   "Review comments",
		Message: body,
		Data: map[string]any{
			"kind":        "comment",
			"instance_id": actionCtx.Instance.ID,
			"document_id": actionCtx.Document.ID,
		},
	})
	if err != nil {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  "failed to send comment",
			Error:    err.Error(),
		}, nil
	}

	logger.Info("Comment sent", "document_id", actionCtx.Document.ID)

	return &models.ActionResult{
		ActionID: a.ID,
		Success:  true,
		Message:  "comment sent",
		Data:     map[string]any{"comment": body},
	}, nil
}

func (a *Action) buildBody(instance *models.WorkflowInstance) string {
	var sb strings.Builder

	if a.Comment != "" {
		sb.WriteString(a.Comment)
	}

	for _, review := range instance.CompletedReviews() {
		if review.Comment == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("%s: %s", review.ReviewerName, review.Comment))
	}

	if sb.Len() == 0 {
		return "Review completed"
	}

	return sb.String()
}
