package reminder

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence/file"
	"github.com/validoc/validoc/pkg/protocol"
	"github.com/validoc/validoc/pkg/testutil"
)

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []protocol.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, notification protocol.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = append(f.notifications, notification)

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func overdueDefinition(maxDays int) *models.WorkflowDefinition {
	definition := testutil.LinearDefinition()
	definition.Settings.MaxReviewDays = maxDays
	definition.NodeByID("review").Data.Assignees = []string{"reviewer-1", "reviewer-2"}

	return definition
}

func TestScan_NotifiesOverdueReviewAssignees(t *testing.T) {
	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())

	definition := overdueDefinition(3)
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, definition))

	instance := testutil.CreateTestInstance(definition, "review")
	instance.UpdatedAt = time.Now().UTC().Add(-5 * 24 * time.Hour)
	require.NoError(t, p.InstanceRepository().CreateInstance(ctx, instance))

	notifier := &fakeNotifier{}
	scheduler := NewScheduler(p, notifier, testLogger())

	require.NoError(t, scheduler.Scan(ctx))

	require.Len(t, notifier.notifications, 2)
	assert.Equal(t, "reviewer-1", notifier.notifications[0].UserID)
	assert.Equal(t, "reviewer-2", notifier.notifications[1].UserID)
	assert.Equal(t, instance.ID, notifier.notifications[0].Data["instance_id"])
}

func TestScan_SkipsWithinLimit(t *testing.T) {
	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())

	definition := overdueDefinition(7)
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, definition))

	instance := testutil.CreateTestInstance(definition, "review")
	instance.UpdatedAt = time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, p.InstanceRepository().CreateInstance(ctx, instance))

	notifier := &fakeNotifier{}
	require.NoError(t, NewScheduler(p, notifier, testLogger()).Scan(ctx))

	assert.Empty(t, notifier.notifications)
}

func TestScan_SkipsWithoutLimit(t *testing.T) {
	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())

	definition := overdueDefinition(0)
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, definition))

	instance := testutil.CreateTestInstance(definition, "review")
	instance.UpdatedAt = time.Now().UTC().Add(-30 * 24 * time.Hour)
	require.NoError(t, p.InstanceRepository().CreateInstance(ctx, instance))

	notifier := &fakeNotifier{}
	require.NoError(t, NewScheduler(p, notifier, testLogger()).Scan(ctx))

	assert.Empty(t, notifier.notifications)
}

func TestScan_SkipsNonReviewNodes(t *testing.T) {
	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())

	definition := overdueDefinition(1)
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, definition))

	instance := testutil.CreateTestInstance(definition, "status-pending")
	instance.UpdatedAt = time.Now().UTC().Add(-10 * 24 * time.Hour)
	require.NoError(t, p.InstanceRepository().CreateInstance(ctx, instance))

	notifier := &fakeNotifier{}
	require.NoError(t, NewScheduler(p, notifier, testLogger()).Scan(ctx))

	assert.Empty(t, notifier.notifications)
}

func TestStart_RejectsBadCron(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	scheduler := NewScheduler(p, &fakeNotifier{}, testLogger())

	assert.Error(t, scheduler.Start("not a cron"))
}

func TestStart_DefaultScheduleAndStop(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	scheduler := NewScheduler(p, &fakeNotifier{}, testLogger())

	require.NoError(t, scheduler.Start(""))
	assert.Error(t, scheduler.Start(""))

	scheduler.Stop()
}