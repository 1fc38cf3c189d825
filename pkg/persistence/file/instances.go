package file

import (
	"context"
	"path"
	"sync"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence"
)

// InstanceRepository stores one JSON file per workflow instance under
// <root>/instances. A whole-instance write is the transaction boundary the
// engine relies on.
type InstanceRepository struct {
	root string
	mu   *sync.Mutex
}

func (r *InstanceRepository) dir() string {
	return path.Join(r.root, "instances")
}

func (r *InstanceRepository) InstanceByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.instanceByID(id)
}

func (r *InstanceRepository) instanceByID(id string) (*models.WorkflowInstance, error) {
	instance := &models.WorkflowInstance{}

	found, err := readJSON(r.dir(), id, instance)
	if err != nil {
		return nil, &persistence.StoreError{Op: "InstanceByID", ID: id, Err: err}
	}

	if !found {
		return nil, persistence.ErrInstanceNotFound
	}

	return instance, nil
}

func (r *InstanceRepository) CreateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.instanceByID(instance.ID); err == nil {
		return persistence.ErrInstanceAlreadyExists
	}

	if err := writeJSON(r.dir(), instance.ID, instance); err != nil {
		return &persistence.StoreError{Op: "CreateInstance", ID: instance.ID, Err: err}
	}

	return nil
}

func (r *InstanceRepository) UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.instanceByID(instance.ID); err != nil {
		return err
	}

	if err := writeJSON(r.dir(), instance.ID, instance); err != nil {
		return &persistence.StoreError{Op: "UpdateInstance", ID: instance.ID, Err: err}
	}

	return nil
}

func (r *InstanceRepository) SaveReview(ctx context.Context, instanceID string, review *models.WorkflowReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, err := r.instanceByID(instanceID)
	if err != nil {
		return err
	}

	instance.Reviews = append(instance.Reviews, review)

	if err := writeJSON(r.dir(), instanceID, instance); err != nil {
		return &persistence.StoreError{Op: "SaveReview", ID: instanceID, Err: err}
	}

	return nil
}

func (r *InstanceRepository) OpenInstances(ctx context.Context) ([]*models.WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := listIDs(r.dir())
	if err != nil {
		return nil, &persistence.StoreError{Op: "OpenInstances", Err: err}
	}

	instances := make([]*models.WorkflowInstance, 0, len(ids))

	for _, id := range ids {
		instance, err := r.instanceByID(id)
		if err != nil {
			return nil, err
		}

		if !instance.Completed() {
			instances = append(instances, instance)
		}
	}

	return instances, nil
}
