package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/testutil"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	return path
}

func TestListFolderItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plan.pdf")
	writeFile(t, dir, ".hidden")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	items, err := NewLocalFileService().ListFolderItems(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "plan.pdf", items[0].Name)
	assert.Equal(t, "pdf", items[0].Extension)
	assert.Equal(t, filepath.Join(dir, "plan.pdf"), items[0].ID)
}

func TestMoveFile(t *testing.T) {
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "validated")
	path := writeFile(t, source, "plan.pdf")

	svc := NewLocalFileService()
	require.NoError(t, svc.MoveFile(context.Background(), path, target))

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(target, "plan.pdf"))
}

func TestCopyFile(t *testing.T) {
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "copies")
	path := writeFile(t, source, "plan.pdf")

	svc := NewLocalFileService()
	require.NoError(t, svc.CopyFile(context.Background(), path, target))

	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(target, "plan.pdf"))
}

func TestFileDocumentService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewFileDocumentService(t.TempDir())

	doc := testutil.CreateTestDocument()
	require.NoError(t, svc.CreateDocument(ctx, doc))

	loaded, err := svc.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.FileName, loaded.FileName)

	require.NoError(t, svc.UpdateDocumentStatus(ctx, doc.ID, "approved"))

	loaded, err = svc.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatus("approved"), loaded.Status)
}

func TestFileDocumentService_NotFound(t *testing.T) {
	svc := NewFileDocumentService(t.TempDir())

	_, err := svc.DocumentByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	assert.Error(t, svc.UpdateDocumentStatus(context.Background(), "missing", "approved"))
}
