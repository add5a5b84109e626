package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError via errors.Is.
	ErrNotFound = errors.New("task not found")

	ErrNotDone   = errors.New("task is not done")
	ErrCorrupted = errors.New("task data corrupted")

	ErrUnknownSearchMode = errors.New("unknown search mode")
)

// NotFoundError reports that no task carries the requested id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StateError reports an operation the task's current state forbids.
// Err is ErrNotDone or ErrCorrupted.
type StateError struct {
	ID  int
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("task %d: %v", e.ID, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
