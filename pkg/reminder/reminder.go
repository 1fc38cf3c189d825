// Package reminder notifies reviewers about instances blocked on a review
// node longer than the definition's review-day limit.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence"
	"github.com/validoc/validoc/pkg/protocol"
)

const defaultSchedule = "0 8 * * *"

// Scheduler runs a periodic scan over open instances. It never mutates
// instances; overdue reviews only produce notifications.
type Scheduler struct {
	persistence persistence.Persistence
	notifier    protocol.Notifier
	logger      *slog.Logger
	cron        *cron.Cron
}

func NewScheduler(p persistence.Persistence, notifier protocol.Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		persistence: p,
		notifier:    notifier,
		logger:      logger.With("module", "review_reminder"),
	}
}

// Start schedules the scan with the given cron expression, defaulting to a
// daily morning run.
func (s *Scheduler) Start(cronExpr string) error {
	if s.cron != nil {
		return errors.New("reminder scheduler already started")
	}

	if cronExpr == "" {
		cronExpr = defaultSchedule
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.Scan(context.Background()); err != nil {
			s.logger.Error("Reminder scan failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Reminder scheduler started", "cron", cronExpr)

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Scan walks open instances and notifies the assignees of review nodes that
// have been waiting longer than the definition allows.
func (s *Scheduler) Scan(ctx context.Context) error {
	instances, err := s.persistence.InstanceRepository().OpenInstances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open instances: %w", err)
	}

	now := time.Now().UTC()

	for _, instance := range instances {
		definition, err := s.persistence.DefinitionRepository().DefinitionByID(ctx, instance.WorkflowDefinitionID)
		if err != nil {
			s.logger.Warn("Skipping instance with missing definition",
				"instance_id", instance.ID,
				"definition_id", instance.WorkflowDefinitionID,
			)

			continue
		}

		if definition.Settings.MaxReviewDays <= 0 {
			continue
		}

		node := definition.NodeByID(instance.CurrentNodeID)
		if node == nil || node.Type != models.NodeTypeReview {
			continue
		}

		limit := time.Duration(definition.Settings.MaxReviewDays) * 24 * time.Hour
		waiting := now.Sub(instance.UpdatedAt)

		if waiting <= limit {
			continue
		}

		s.logger.Info("Review overdue",
			"instance_id", instance.ID,
			"node_id", node.ID,
			"waiting", waiting,
			"limit_days", definition.Settings.MaxReviewDays,
		)

		for _, assignee := range node.Data.Assignees {
			err := s.notifier.Notify(ctx, protocol.Notification{
				UserID:  assignee,
				Title:   "Review overdue",
				Message: fmt.Sprintf("A document has been waiting for your review for %d days", int(waiting.Hours()/24)),
				Data: map[string]any{
					"instance_id": instance.ID,
					"document_id": instance.DocumentID,
					"node_id":     node.ID,
				},
			})
			if err != nil {
				s.logger.Warn("Failed to deliver reminder", "assignee", assignee, "error", err)
			}
		}
	}

	return nil
}
