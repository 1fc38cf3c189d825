package file

import (
	"context"
	"os"
	"path"
	"sync"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence"
)

// DefinitionRepository stores one JSON file per workflow definition under
// <root>/definitions.
type DefinitionRepository struct {
	root string
	mu   *sync.Mutex
}

func (r *DefinitionRepository) dir() string {
	return path.Join(r.root, "definitions")
}

func (r *DefinitionRepository) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := listIDs(r.dir())
	if err != nil {
		return nil, &persistence.StoreError{Op: "Definitions", Err: err}
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		definition := &models.WorkflowDefinition{}

		found, err := readJSON(r.dir(), id, definition)
		if err != nil {
			return nil, &persistence.StoreError{Op: "Definitions", ID: id, Err: err}
		}

		if found {
			definitions = append(definitions, definition)
		}
	}

	return definitions, nil
}

func (r *DefinitionRepository) DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	definition := &models.WorkflowDefinition{}

	found, err := readJSON(r.dir(), id, definition)
	if err != nil {
		return nil, &persistence.StoreError{Op: "DefinitionByID", ID: id, Err: err}
	}

	if !found {
		return nil, persistence.ErrDefinitionNotFound
	}

	return definition, nil
}

func (r *DefinitionRepository) SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeJSON(r.dir(), definition.ID, definition); err != nil {
		return &persistence.StoreError{Op: "SaveDefinition", ID: definition.ID, Err: err}
	}

	return nil
}

func (r *DefinitionRepository) DeleteDefinition(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(path.Join(r.dir(), id+".json"))
	if os.IsNotExist(err) {
		return persistence.ErrDefinitionNotFound
	}

	if err != nil {
		return &persistence.StoreError{Op: "DeleteDefinition", ID: id, Err: err}
	}

	return nil
}
