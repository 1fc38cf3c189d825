package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all providers should use.
var (
	// ErrDefinitionNotFound indicates no workflow definition exists for the id.
	ErrDefinitionNotFound = errors.New("workflow definition not found")

	// ErrInstanceNotFound indicates no workflow instance exists for the id.
	ErrInstanceNotFound = errors.New("workflow instance not found")

	// ErrInstanceAlreadyExists indicates an instance with the same id was
	// already created.
	ErrInstanceAlreadyExists = errors.New("workflow instance already exists")
)

// StoreError wraps a provider failure with operation context.
type StoreError struct {
	Op  string // Operation being performed (e.g. "InstanceByID", "SaveReview")
	ID  string // Object id if applicable
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsDefinitionNotFound checks if an error indicates a missing definition.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsInstanceNotFound checks if an error indicates a missing instance.
func IsInstanceNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound)
}
