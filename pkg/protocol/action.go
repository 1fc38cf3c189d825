// Package protocol defines the contracts between the engine and its
// pluggable actions and external collaborators.
package protocol

import (
	"context"
	"log/slog"

	"github.com/validoc/validoc/pkg/models"
)

// ActionContext carries everything an auto-action may read while executing.
// Actions must treat the instance and document as read-only.
type ActionContext struct {
	Instance   *models.WorkflowInstance
	Definition *models.WorkflowDefinition
	Document   *models.ValidationDocument
	Files      FileService
	Notifier   Notifier
}

// Action executes one configured auto-action. Implementations return an
// ActionResult for both success and failure; an error return is reserved for
// programming mistakes and is converted to a failed result by the executor.
type Action interface {
	Execute(ctx context.Context, actionCtx ActionContext, logger *slog.Logger) (*models.ActionResult, error)
}

// ActionFactory creates action instances from graph-editor configuration.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() string
}
