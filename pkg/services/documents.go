package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/validoc/validoc/pkg/models"
)

// ErrDocumentNotFound is returned when a document id resolves to nothing.
var ErrDocumentNotFound = fmt.Errorf("document not found")

// FileDocumentService stores validation documents as JSON files, one per
// document, under a root directory.
type FileDocumentService struct {
	root string
	mu   sync.Mutex
}

func NewFileDocumentService(root string) *FileDocumentService {
	return &FileDocumentService{root: strings.Replace(root, "file://", "", 1)}
}

func (s *FileDocumentService) CreateDocument(_ context.Context, doc *models.ValidationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(doc)
}

func (s *FileDocumentService) DocumentByID(_ context.Context, documentID string) (*models.ValidationDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(documentID)
}

func (s *FileDocumentService) UpdateDocumentStatus(_ context.Context, documentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(documentID)
	if err != nil {
		return err
	}

	doc.Status = models.DocumentStatus(status)

	return s.write(doc)
}

func (s *FileDocumentService) dir() string {
	return path.Join(s.root, "documents")
}

func (s *FileDocumentService) read(documentID string) (*models.ValidationDocument, error) {
	data, err := os.ReadFile(path.Join(s.dir(), documentID+".json"))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", documentID, err)
	}

	var doc models.ValidationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", documentID, err)
	}

	return &doc, nil
}

func (s *FileDocumentService) write(doc *models.ValidationDocument) error {
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir(), err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
	}

	target := path.Join(s.dir(), doc.ID+".json")

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	return os.Rename(tmp, target)
}
