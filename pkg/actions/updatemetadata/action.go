// Package updatemetadata reports a metadata payload for the document.
// Persisting the metadata is a host-platform concern; the action validates
// the payload and echoes it in the result.
package updatemetadata

import (
	"context"
	"log/slog"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

type Action struct {
	ID       string
	Metadata map[string]any
}

func NewAction(config map[string]any) (*Action, error) {
	id, _ := config["id"].(string)
	metadata, _ := config["metadata"].(map[string]any)

	return &Action{
		ID:       id,
		Metadata: metadata,
	}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext, logger *slog.Logger) (*models.ActionResult, error) {
	if len(a.Metadata) == 0 {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  "no metadata payload configured for update_metadata",
		}, nil
	}

	logger.Info("Metadata update requested", "document_id", actionCtx.Document.ID, "fields", len(a.Metadata))

	return &models.ActionResult{
		ActionID: a.ID,
		Success:  true,
		Message:  "metadata update recorded",
		Data: map[string]any{
			"document_id": actionCtx.Document.ID,
			"metadata":    a.Metadata,
		},
	}, nil
}
