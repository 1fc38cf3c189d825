package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinitionInvalid indicates a definition cannot be executed: no
	// start node, no statuses, or a cyclic non-blocking path.
	ErrDefinitionInvalid = errors.New("workflow definition invalid")
)

// TransitionError wraps a failure inside a transition sequence. The sequence
// is aborted as a whole; no partial history or status update is left behind.
type TransitionError struct {
	InstanceID string
	FromNodeID string
	ToNodeID   string
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s failed for instance %s: %v", e.FromNodeID, e.ToNodeID, e.InstanceID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
