// Package services provides local implementations of the collaborator ports,
// used by the standalone binaries and as reference adapters.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/validoc/validoc/pkg/models"
)

// LocalFileService treats folder IDs as directories on the local filesystem.
// File IDs are absolute paths.
type LocalFileService struct {
	mu sync.Mutex
}

func NewLocalFileService() *LocalFileService {
	return &LocalFileService{}
}

func (s *LocalFileService) ListFolderItems(_ context.Context, folderID string) ([]*models.FolderItem, error) {
	entries, err := os.ReadDir(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folderID, err)
	}

	items := make([]*models.FolderItem, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		items = append(items, &models.FolderItem{
			ID:         filepath.Join(folderID, entry.Name()),
			Name:       entry.Name(),
			Extension:  strings.TrimPrefix(filepath.Ext(entry.Name()), "."),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
	}

	return items, nil
}

func (s *LocalFileService) MoveFile(_ context.Context, fileID, targetFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(targetFolderID, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", targetFolderID, err)
	}

	target := filepath.Join(targetFolderID, filepath.Base(fileID))

	if err := os.Rename(fileID, target); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", fileID, targetFolderID, err)
	}

	return nil
}

func (s *LocalFileService) CopyFile(_ context.Context, fileID, targetFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(targetFolderID, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", targetFolderID, err)
	}

	source, err := os.Open(fileID)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileID, err)
	}
	defer source.Close()

	target, err := os.Create(filepath.Join(targetFolderID, filepath.Base(fileID)))
	if err != nil {
		return fmt.Errorf("failed to create copy of %s: %w", fileID, err)
	}
	defer target.Close()

	if _, err := io.Copy(target, source); err != nil {
		return fmt.Errorf("failed to copy %s: %w", fileID, err)
	}

	return nil
}

// CreateTask appends the task to a journal file; local deployments have no
// task tracker to call into.
func (s *LocalFileService) CreateTask(_ context.Context, label, description, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := json.Marshal(map[string]string{
		"label":       label,
		"description": description,
		"project_id":  projectID,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile("tasks.jsonl", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open task journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(record, '\n')); err != nil {
		return fmt.Errorf("failed to append task: %w", err)
	}

	return nil
}
