package watcher

import (
	"context"
	"errors"
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

type fakeFiles struct {
	mu      sync.Mutex
	items   []*models.FolderItem
	listErr error
}

func (f *fakeFiles) setItems(items ...*models.FolderItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = items
}

func (f *fakeFiles) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listErr = err
}

func (f *fakeFiles) ListFolderItems(_ context.Context, _ string) ([]*models.FolderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	items := make([]*models.FolderItem, len(f.items))
	copy(items, f.items)

	return items, nil
}

func (f *fakeFiles) MoveFile(_ context.Context, _, _ string) error { return nil }
func (f *fakeFiles) CopyFile(_ context.Context, _, _ string) error { return nil }
func (f *fakeFiles) CreateTask(_ context.Context, _, _, _ string) error {
	return nil
}

type fakeDocuments struct {
	mu   sync.Mutex
	docs []*models.ValidationDocument
}

func (f *fakeDocuments) CreateDocument(_ context.Context, doc *models.ValidationDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs = append(f.docs, doc)

	return nil
}

func (f *fakeDocuments) DocumentByID(_ context.Context, _ string) (*models.ValidationDocument, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) UpdateDocumentStatus(_ context.Context, _, _ string) error {
	return nil
}

type fakeStarter struct {
	mu      sync.Mutex
	started []*models.ValidationDocument
}

func (f *fakeStarter) StartWorkflow(_ context.Context, _ string, doc *models.ValidationDocument) (*models.WorkflowInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = append(f.started, doc)

	return &models.WorkflowInstance{ID: "instance-1", DocumentID: doc.ID}, nil
}

func (f *fakeStarter) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.started)
}

type noopNotifier struct{}

func (noopNotifier) Notify(_ context.Context, _ protocol.Notification) error { return nil }

func newTestManager(t *testing.T, files *fakeFiles) (*Manager, *fakeStarter, *fakeDocuments) {
	t.Helper()

	starter := &fakeStarter{}
	documents := &fakeDocuments{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	manager := NewManager(starter, files, documents, noopNotifier{}, nil, nil, logger)

	return manager, starter, documents
}

func TestStart_InitialScanDoesNotTrigger(t *testing.T) {
	files := &fakeFiles{}
	files.setItems(&models.FolderItem{ID: "existing-1", Name: "old.pdf"})

	manager, starter, _ := newTestManager(t, files)

	id, err := manager.Start(context.Background(), Config{
		PollInterval:         10 * time.Millisecond,
		FolderID:             "folder-in",
		WorkflowDefinitionID: "def-1",
	})
	require.NoError(t, err)
	defer manager.Stop(id)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, starter.startedCount())
}

func TestPoll_NewFileTriggersExactlyOnce(t *testing.T) {
	files := &fakeFiles{}
	manager, starter, documents := newTestManager(t, files)

	id, err := manager.Start(context.Background(), Config{
		PollInterval:         10 * time.Millisecond,
		FolderID:             "folder-in",
		WorkflowDefinitionID: "def-1",
		ProjectID:            "project-1",
	})
	require.NoError(t, err)
	defer manager.Stop(id)

	files.setItems(&models.FolderItem{ID: "new-1", Name: "plan.pdf", Extension: "pdf", UploadedBy: "user-1"})

	assert.Eventually(t, func() bool {
		return starter.startedCount() == 1
	}, time.Second, 5*time.Millisecond)

	// Several more cycles must not trigger the same file again.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, starter.startedCount())

	documents.mu.Lock()
	defer documents.mu.Unlock()
	require.Len(t, documents.docs, 1)
	assert.Equal(t, "new-1", documents.docs[0].FileID)
	assert.Equal(t, models.DocumentStatusPending, documents.docs[0].Status)
	assert.Equal(t, "project-1", documents.docs[0].ProjectID)
}

func TestPoll_ExtensionFilter(t *testing.T) {
	files := &fakeFiles{}
	manager, starter, _ := newTestManager(t, files)

	id, err := manager.Start(context.Background(), Config{
		PollInterval:         10 * time.Millisecond,
		FolderID:             "folder-in",
		WorkflowDefinitionID: "def-1",
		FileExtensions:       []string{"pdf"},
	})
	require.NoError(t, err)
	defer manager.Stop(id)

	files.setItems(
		&models.FolderItem{ID: "f1", Name: "notes.txt", Extension: "txt"},
		&models.FolderItem{ID: "f2", Name: "plan.pdf", Extension: "pdf"},
	)

	assert.Eventually(t, func() bool {
		return starter.startedCount() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, starter.startedCount())
}

func TestPoll_ConsecutiveErrorsStopWatcher(t *testing.T) {
	files := &fakeFiles{}
	manager, starter, _ := newTestManager(t, files)

	id, err := manager.Start(context.Background(), Config{
		PollInterval:         5 * time.Millisecond,
		FolderID:             "folder-in",
		WorkflowDefinitionID: "def-1",
	})
	require.NoError(t, err)

	files.setError(errors.New("backend unreachable"))

	assert.Eventually(t, func() bool {
		return !manager.Running(id)
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, starter.startedCount())
}

func TestPoll_ErrorCounterResetsOnSuccess(t *testing.T) {
	files := &fakeFiles{}
	manager, starter, _ := newTestManager(t, files)

	id, err := manager.Start(context.Background(), Config{
		PollInterval:         5 * time.Millisecond,
		FolderID:             "folder-in",
		WorkflowDefinitionID: "def-1",
	})
	require.NoError(t, err)
	defer manager.Stop(id)

	files.setError(errors.New("transient"))
	time.Sleep(30 * time.Millisecond)

	files.setError(nil)
	files.setItems(&models.FolderItem{ID: "f1", Name: "plan.pdf"})

	assert.Eventually(t, func() bool {
		return starter.startedCount() == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, manager.Running(id))
}

func TestStopAll(t *testing.T) {
	files := &fakeFiles{}
	manager, _, _ := newTestManager(t, files)

	id1, err := manager.Start(context.Background(), Config{PollInterval: 10 * time.Millisecond, FolderID: "a", WorkflowDefinitionID: "def-1"})
	require.NoError(t, err)

	id2, err := manager.Start(context.Background(), Config{PollInterval: 10 * time.Millisecond, FolderID: "b", WorkflowDefinitionID: "def-1"})
	require.NoError(t, err)

	manager.StopAll()

	assert.False(t, manager.Running(id1))
	assert.False(t, manager.Running(id2))
}

func TestStartForActiveWorkflows(t *testing.T) {
	ctx := context.Background()
	files := &fakeFiles{}

	p := file.NewPersistence(t.TempDir())

	active := testutil.LinearDefinition()
	active.Settings.AutoStartOnUpload = true
	active.Settings.SourceFolderID = "folder-in"
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, active))

	inactive := testutil.LinearDefinition()
	inactive.State = models.DefinitionStateDraft
	inactive.Settings.AutoStartOnUpload = true
	inactive.Settings.SourceFolderID = "folder-other"
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, inactive))

	noSource := testutil.LinearDefinition()
	noSource.Settings.AutoStartOnUpload = true
	require.NoError(t, p.DefinitionRepository().SaveDefinition(ctx, noSource))

	starter := &fakeStarter{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	manager := NewManager(starter, files, &fakeDocuments{}, noopNotifier{}, p.DefinitionRepository(), nil, logger)

	ids, err := manager.StartForActiveWorkflows(ctx)
	require.NoError(t, err)
	defer manager.StopAll()

	assert.Len(t, ids, 1)
	assert.True(t, manager.Running(ids[0]))
}
