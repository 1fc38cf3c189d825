package protocol

import (
	"context"

	"github.com/validoc/validoc/pkg/models"
)

// FileService is the narrow contract to the host platform's file and folder
// management.
type FileService interface {
	ListFolderItems(ctx context.Context, folderID string) ([]*models.FolderItem, error)
	MoveFile(ctx context.Context, fileID, targetFolderID string) error
	CopyFile(ctx context.Context, fileID, targetFolderID string) error
	CreateTask(ctx context.Context, label, description, projectID string) error
}

// DocumentService is the narrow contract to the host platform's document
// records.
type DocumentService interface {
	CreateDocument(ctx context.Context, doc *models.ValidationDocument) error
	DocumentByID(ctx context.Context, documentID string) (*models.ValidationDocument, error)
	UpdateDocumentStatus(ctx context.Context, documentID, status string) error
}

// Notification is one user-facing message raised by the engine or an action.
type Notification struct {
	UserID  string         `json:"user_id,omitempty"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier delivers notifications. Delivery is fire-and-forget: failures are
// logged by the caller, never propagated into transition processing.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
