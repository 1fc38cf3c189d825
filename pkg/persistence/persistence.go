// Package persistence defines the storage contracts the engine and watcher
// are implemented against. Providers must be safe to retry on transient
// failure: saving an unchanged object is a no-op, not an error.
package persistence

import (
	"context"

	"github.com/validoc/validoc/pkg/models"
)

// DefinitionRepository stores workflow definitions. Definitions are read-only
// to the engine; writes come from the editing surface.
type DefinitionRepository interface {
	Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error)
	DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error
	DeleteDefinition(ctx context.Context, id string) error
}

// InstanceRepository stores workflow instances and their reviews.
//
// UpdateInstance persists the whole staged instance (history, reviews,
// current node/status) in one write; the engine relies on this as its
// transition transaction boundary.
type InstanceRepository interface {
	InstanceByID(ctx context.Context, id string) (*models.WorkflowInstance, error)
	CreateInstance(ctx context.Context, instance *models.WorkflowInstance) error
	UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error

	// SaveReview appends a review record to the stored instance. The review
	// must not be recorded when the instance lookup fails.
	SaveReview(ctx context.Context, instanceID string, review *models.WorkflowReview) error

	// OpenInstances returns instances that have not reached an end node.
	OpenInstances(ctx context.Context) ([]*models.WorkflowInstance, error)
}

// Persistence aggregates the repositories of one storage provider.
type Persistence interface {
	DefinitionRepository() DefinitionRepository
	InstanceRepository() InstanceRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
