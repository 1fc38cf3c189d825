package copyfile

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

type fakeFiles struct {
	copies  []string
	copyErr error
}

func (f *fakeFiles) ListFolderItems(_ context.Context, _ string) ([]*models.FolderItem, error) {
	return nil, nil
}

func (f *fakeFiles) MoveFile(_ context.Context, _, _ string) error { return nil }

func (f *fakeFiles) CopyFile(_ context.Context, fileID, targetFolderID string) error {
	if f.copyErr != nil {
		return f.copyErr
	}

	f.copies = append(f.copies, fileID+"->"+targetFolderID)

	return nil
}

func (f *fakeFiles) CreateTask(_ context.Context, _, _, _ string) error { return nil }

func testContext(files *fakeFiles, definition *models.WorkflowDefinition) protocol.ActionContext {
	return protocol.ActionContext{
		Instance:   testutil.CreateTestInstance(definition, "actions"),
		Definition: definition,
		Document:   testutil.CreateTestDocument(),
		Files:      files,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestExecute_CopiesToConfiguredFolder(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "c1", "target_folder_id": "folder-archive"})
	require.NoError(t, err)

	files := &fakeFiles{}
	actionCtx := testContext(files, testutil.LinearDefinition())

	result, err := action.Execute(context.Background(), actionCtx, testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{actionCtx.Document.FileID + "->folder-archive"}, files.copies)
}

func TestExecute_FallsBackToDefinitionTarget(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "c1"})
	require.NoError(t, err)

	definition := testutil.LinearDefinition()
	definition.Settings.TargetFolderID = "folder-validated"

	files := &fakeFiles{}
	result, err := action.Execute(context.Background(), testContext(files, definition), testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, files.copies, 1)
	assert.Contains(t, files.copies[0], "->folder-validated")
}

func TestExecute_NoTargetConfigured(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "c1"})
	require.NoError(t, err)

	files := &fakeFiles{}
	result, err := action.Execute(context.Background(), testContext(files, testutil.LinearDefinition()), testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, files.copies)
}

func TestExecute_CopyFailureIsReported(t *testing.T) {
	action, err := NewAction(map[string]any{"id": "c1", "target_folder_id": "folder-archive"})
	require.NoError(t, err)

	files := &fakeFiles{copyErr: errors.New("quota exceeded")}
	result, err := action.Execute(context.Background(), testContext(files, testutil.LinearDefinition()), testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "quota exceeded", result.Error)
}
