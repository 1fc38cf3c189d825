// Package copyfile copies the validated file to a target folder, leaving the
// original in place.
package copyfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

type Action struct {
	ID             string
	TargetFolderID string
}

func NewAction(config map[string]any) (*Action, error) {
	id, _ := config["id"].(string)
	targetFolderID, _ := config["target_folder_id"].(string)

	return &Action{
		ID:             id,
		TargetFolderID: targetFolderID,
	}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext, logger *slog.Logger) (*models.ActionResult, error) {
	target := a.TargetFolderID
	if target == "" && actionCtx.Definition != nil {
		target = actionCtx.Definition.Settings.TargetFolderID
	}

	if target == "" {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  "no target folder configured for copy_file",
		}, nil
	}

	if err := actionCtx.Files.CopyFile(ctx, actionCtx.Document.FileID, target); err != nil {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  fmt.Sprintf("failed to copy file %s to folder %s", actionCtx.Document.FileID, target),
			Error:    err.Error(),
		}, nil
	}

	logger.Info("File copied", "file_id", actionCtx.Document.FileID, "target_folder_id", target)

	return &models.ActionResult{
		ActionID: a.ID,
		Success:  true,
		Message:  fmt.Sprintf("file copied to folder %s", target),
		Data:     map[string]any{"file_id": actionCtx.Document.FileID, "target_folder_id": target},
	}, nil
}
