package scheduler

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a composition names a task that was never
// registered.
var ErrTaskNotFound = errors.New("task never defined")

// TaskError reports the failure of a single task body.
type TaskError struct {
	// Task is the name of the failed task.
	Task string
	// Err is the error returned by the task. Nil when the task panicked.
	Err error
	// Panic holds the recovered value when the task panicked.
	Panic any
}

func (e *TaskError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("task '%s' panicked: %v", e.Task, e.Panic)
	}
	return fmt.Sprintf("task '%s' failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
