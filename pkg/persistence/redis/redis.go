// Package redis provides Redis-backed persistence for definitions and
// instances. Objects are stored as JSON values with set indexes for listing.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence"
)

const (
	definitionKeyPrefix = "validoc:definition:"
	definitionIndexKey  = "validoc:definitions"
	instanceKeyPrefix   = "validoc:instance:"
	instanceIndexKey    = "validoc:instances"
	openInstanceIndexKey = "validoc:instances:open"
)

// Persistence implements persistence.Persistence on a Redis server.
type Persistence struct {
	client         goredis.UniversalClient
	definitionRepo *DefinitionRepository
	instanceRepo   *InstanceRepository
}

// NewPersistence connects to the Redis server named by a redis:// URL.
func NewPersistence(redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	return &Persistence{
		client:         client,
		definitionRepo: &DefinitionRepository{client: client},
		instanceRepo:   &InstanceRepository{client: client},
	}, nil
}

func (rp *Persistence) DefinitionRepository() persistence.DefinitionRepository {
	return rp.definitionRepo
}

func (rp *Persistence) InstanceRepository() persistence.InstanceRepository {
	return rp.instanceRepo
}

func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}

// DefinitionRepository stores definitions under validoc:definition:<id>.
type DefinitionRepository struct {
	client goredis.UniversalClient
}

func (r *DefinitionRepository) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := r.client.SMembers(ctx, definitionIndexKey).Result()
	if err != nil {
		return nil, &persistence.StoreError{Op: "Definitions", Err: err}
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		definition, err := r.DefinitionByID(ctx, id)
		if persistence.IsDefinitionNotFound(err) {
			continue // index may lag a delete
		}

		if err != nil {
			return nil, err
		}

		definitions = append(definitions, definition)
	}

	return definitions, nil
}

func (r *DefinitionRepository) DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := r.client.Get(ctx, definitionKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrDefinitionNotFound
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "DefinitionByID", ID: id, Err: err}
	}

	definition := &models.WorkflowDefinition{}
	if err := json.Unmarshal(data, definition); err != nil {
		return nil, &persistence.StoreError{Op: "DefinitionByID", ID: id, Err: err}
	}

	return definition, nil
}

func (r *DefinitionRepository) SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	data, err := json.Marshal(definition)
	if err != nil {
		return &persistence.StoreError{Op: "SaveDefinition", ID: definition.ID, Err: err}
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, definitionKeyPrefix+definition.ID, data, 0)
	pipe.SAdd(ctx, definitionIndexKey, definition.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.StoreError{Op: "SaveDefinition", ID: definition.ID, Err: err}
	}

	return nil
}

func (r *DefinitionRepository) DeleteDefinition(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, definitionKeyPrefix+id).Result()
	if err != nil {
		return &persistence.StoreError{Op: "DeleteDefinition", ID: id, Err: err}
	}

	if removed == 0 {
		return persistence.ErrDefinitionNotFound
	}

	if err := r.client.SRem(ctx, definitionIndexKey, id).Err(); err != nil {
		return &persistence.StoreError{Op: "DeleteDefinition", ID: id, Err: err}
	}

	return nil
}

// InstanceRepository stores instances under validoc:instance:<id>, with a
// separate index of instances that have not reached an end node.
type InstanceRepository struct {
	client goredis.UniversalClient
}

func (r *InstanceRepository) InstanceByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	data, err := r.client.Get(ctx, instanceKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrInstanceNotFound
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "InstanceByID", ID: id, Err: err}
	}

	instance := &models.WorkflowInstance{}
	if err := json.Unmarshal(data, instance); err != nil {
		return nil, &persistence.StoreError{Op: "InstanceByID", ID: id, Err: err}
	}

	return instance, nil
}

func (r *InstanceRepository) CreateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	data, err := json.Marshal(instance)
	if err != nil {
		return &persistence.StoreError{Op: "CreateInstance", ID: instance.ID, Err: err}
	}

	created, err := r.client.SetNX(ctx, instanceKeyPrefix+instance.ID, data, 0).Result()
	if err != nil {
		return &persistence.StoreError{Op: "CreateInstance", ID: instance.ID, Err: err}
	}

	if !created {
		return persistence.ErrInstanceAlreadyExists
	}

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, instanceIndexKey, instance.ID)
	pipe.SAdd(ctx, openInstanceIndexKey, instance.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.StoreError{Op: "CreateInstance", ID: instance.ID, Err: err}
	}

	return nil
}

func (r *InstanceRepository) UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	if _, err := r.InstanceByID(ctx, instance.ID); err != nil {
		return err
	}

	return r.writeInstance(ctx, "UpdateInstance", instance)
}

func (r *InstanceRepository) SaveReview(ctx context.Context, instanceID string, review *models.WorkflowReview) error {
	instance, err := r.InstanceByID(ctx, instanceID)
	if err != nil {
		return err
	}

	instance.Reviews = append(instance.Reviews, review)

	return r.writeInstance(ctx, "SaveReview", instance)
}

func (r *InstanceRepository) writeInstance(ctx context.Context, op string, instance *models.WorkflowInstance) error {
	data, err := json.Marshal(instance)
	if err != nil {
		return &persistence.StoreError{Op: op, ID: instance.ID, Err: err}
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, instanceKeyPrefix+instance.ID, data, 0)

	if instance.Completed() {
		pipe.SRem(ctx, openInstanceIndexKey, instance.ID)
	} else {
		pipe.SAdd(ctx, openInstanceIndexKey, instance.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.StoreError{Op: op, ID: instance.ID, Err: err}
	}

	return nil
}

func (r *InstanceRepository) OpenInstances(ctx context.Context) ([]*models.WorkflowInstance, error) {
	ids, err := r.client.SMembers(ctx, openInstanceIndexKey).Result()
	if err != nil {
		return nil, &persistence.StoreError{Op: "OpenInstances", Err: err}
	}

	instances := make([]*models.WorkflowInstance, 0, len(ids))

	for _, id := range ids {
		instance, err := r.InstanceByID(ctx, id)
		if persistence.IsInstanceNotFound(err) {
			continue
		}

		if err != nil {
			return nil, err
		}

		instances = append(instances, instance)
	}

	return instances, nil
}
