package app

import (
	"errors"
	"fmt"
)

// ErrAlreadyRun is returned when Run is called on an App that has left the
// idle state.
var ErrAlreadyRun = errors.New("app has already been run")

// SchedulerError wraps a failure reported by the task composition. It is the
// only error Run returns once tasks have been scheduled.
type SchedulerError struct {
	Err error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("task run failed: %v", e.Err)
}

func (e *SchedulerError) Unwrap() error {
	return e.Err
}
