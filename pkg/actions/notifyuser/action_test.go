package notifyuser

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
	"github.com/validoc/validoc/pkg/testutil"
)

type fakeNotifier struct {
	notifications []protocol.Notification
	err           error
}

func (f *fakeNotifier) Notify(_ context.Context, notification protocol.Notification) error {
	if f.err != nil {
		return f.err
	}

	f.notifications = append(f.notifications, notification)

	return nil
}

type fakeFiles struct {
	tasks []string
}

func (f *fakeFiles) ListFolderItems(_ context.Context, _ string) ([]*models.FolderItem, error) {
	return nil, nil
}
func (f *fakeFiles) MoveFile(_ context.Context, _, _ string) error { return nil }
func (f *fakeFiles) CopyFile(_ context.Context, _, _ string) error { return nil }

func (f *fakeFiles) CreateTask(_ context.Context, label, _, _ string) error {
	f.tasks = append(f.tasks, label)

	return nil
}

func testContext(notifier *fakeNotifier, files *fakeFiles) protocol.ActionContext {
	definition := testutil.LinearDefinition()
	instance := testutil.CreateTestInstance(definition, "actions")
	instance.CurrentStatusID = "approved"

	return protocol.ActionContext{
		Instance:   instance,
		Definition: definition,
		Document:   testutil.CreateTestDocument(),
		Files:      files,
		Notifier:   notifier,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestExecute_DefaultsToUploaderAndTemplate(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "a1"})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	actionCtx := testContext(notifier, &fakeFiles{})

	result, err := action.Execute(context.Background(), actionCtx, testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, actionCtx.Document.UploadedBy, notifier.notifications[0].UserID)
	assert.Equal(t, "plan.pdf has received status approved", notifier.notifications[0].Message)
}

func TestExecute_ExpandsPlaceholders(t *testing.T) {
	action, err := NewAction(map[string]any{
		"id":      "a1",
		"user_id": "manager-1",
		"message": "{fileName} is now {statusId}",
	})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	result, err := action.Execute(context.Background(), testContext(notifier, &fakeFiles{}), testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, "manager-1", notifier.notifications[0].UserID)
	assert.Equal(t, "plan.pdf is now approved", notifier.notifications[0].Message)
}

func TestExecute_NoTargetUser(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "a1"})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	actionCtx := testContext(notifier, &fakeFiles{})
	actionCtx.Document.UploadedBy = ""

	result, err := action.Execute(context.Background(), actionCtx, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, notifier.notifications)
}

func TestExecute_CreateTask(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "a1", "create_task": true})
	require.NoError(t, err)

	files := &fakeFiles{}
	result, err := action.Execute(context.Background(), testContext(&fakeNotifier{}, files), testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"Document validation"}, files.tasks)
}

func TestExecute_NotifyFailureIsReported(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "a1"})
	require.NoError(t, err)

	notifier := &fakeNotifier{err: errors.New("queue full")}
	result, err := action.Execute(context.Background(), testContext(notifier, &fakeFiles{}), testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "queue full", result.Error)
}
