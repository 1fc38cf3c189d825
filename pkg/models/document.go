package models

import "time"

// DocumentStatus is the coarse validation state displayed for a document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusInReview DocumentStatus = "in_review"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// ValidationDocument is the record under validation. The document itself is
// owned by the document-management collaborator; instances reference it by id.
type ValidationDocument struct {
	ID         string         `json:"id"      validate:"required"`
	ProjectID  string         `json:"project_id"`
	FileID     string         `json:"file_id" validate:"required"`
	FileName   string         `json:"file_name"`
	Extension  string         `json:"extension,omitempty"`
	Size       int64          `json:"size,omitempty"`
	FolderID   string         `json:"folder_id,omitempty"`
	Status     DocumentStatus `json:"status"`
	UploadedBy string         `json:"uploaded_by,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// FolderItem is one entry of an external folder listing.
type FolderItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}
