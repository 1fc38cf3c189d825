package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

// Executor runs one auto-action and reports a uniform result. It never lets
// an action failure escape: errors and panics become failed ActionResults so
// a mis-configured action cannot abort an action node or the instance.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger.With("module", "action_executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, action *models.WorkflowAutoAction, actionCtx protocol.ActionContext) (result *models.ActionResult) {
	logger := e.logger.With(
		"action_id", action.ID,
		"action_type", action.Type,
		"instance_id", actionCtx.Instance.ID,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Action panicked", "panic", r)

			result = &models.ActionResult{
				ActionID: action.ID,
				Success:  false,
				Message:  "action panicked",
				Error:    fmt.Sprintf("%v", r),
			}
		}
	}()

	config := make(map[string]any, len(action.Config)+1)
	for k, v := range action.Config {
		config[k] = v
	}
	config["id"] = action.ID

	impl, err := e.registry.CreateAction(string(action.Type), config)
	if err != nil {
		logger.Error("Failed to create action", "error", err)

		return &models.ActionResult{
			ActionID: action.ID,
			Success:  false,
			Message:  fmt.Sprintf("unknown or invalid action %q", action.Type),
			Error:    err.Error(),
		}
	}

	result, err = impl.Execute(ctx, actionCtx, logger)
	if err != nil {
		logger.Error("Action failed", "error", err)

		return &models.ActionResult{
			ActionID: action.ID,
			Success:  false,
			Message:  "action execution failed",
			Error:    err.Error(),
		}
	}

	if result == nil {
		result = &models.ActionResult{ActionID: action.ID, Success: true}
	}

	if result.ActionID == "" {
		result.ActionID = action.ID
	}

	logger.Info("Action completed", "success", result.Success, "message", result.Message)

	return result
}
