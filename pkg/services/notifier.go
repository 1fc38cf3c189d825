package services

import (
	"context"
	"log/slog"

	"github.com/validoc/validoc/pkg/protocol"
)

// LogNotifier writes notifications to the structured log. Deployments with a
// real messaging backend provide their own Notifier.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, notification protocol.Notification) error {
	n.logger.Info("Notification",
		"user_id", notification.UserID,
		"title", notification.Title,
		"message", notification.Message,
	)

	return nil
}
