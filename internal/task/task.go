// Package task defines the unit of work the scheduler runs. A task is either
// a plain function or a named composition of other tasks.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Func is the body of a task. It writes any console output to out and
// signals completion by returning. A non-nil error marks the task as failed.
type Func func(ctx context.Context, out io.Writer) error

// Mode describes how a task runs.
type Mode int

const (
	// Single is a task backed by its own Func.
	Single Mode = iota
	// Parallel runs the task's children concurrently.
	Parallel
	// Series runs the task's children one after another.
	Series
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Parallel:
		return "parallel"
	case Series:
		return "series"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Task is a named unit of work registered with the registry.
type Task struct {
	// Name is the key the task is registered and invoked under.
	Name string
	// Description is shown in task listings.
	Description string
	// Mode selects between a plain function and a composition.
	Mode Mode
	// Children lists the names of composed tasks. Empty for Single tasks.
	Children []string
	// Fn is the body of a Single task. Nil for compositions.
	Fn Func
	// Source records where the task was defined, e.g. "builtin" or a file path.
	Source string
}

// New returns a Single task backed by fn.
func New(name string, fn Func) *Task {
	return &Task{Name: name, Mode: Single, Fn: fn}
}

// Compose returns a task that runs children with the given mode.
func Compose(name string, mode Mode, children ...string) *Task {
	return &Task{Name: name, Mode: mode, Children: children}
}

// IsComposite reports whether the task runs other tasks instead of a Func.
func (t *Task) IsComposite() bool {
	return t.Mode == Parallel || t.Mode == Series
}

// Validate checks the task's own shape. Whether children exist is checked by
// the registry.
func (t *Task) Validate() error {
	if t.Name == "" {
		return errors.New("task name must not be empty")
	}
	switch t.Mode {
	case Single:
		if t.Fn == nil {
			return fmt.Errorf("task '%s' has no function", t.Name)
		}
		if len(t.Children) > 0 {
			return fmt.Errorf("task '%s' is a single task but lists children", t.Name)
		}
	case Parallel, Series:
		if t.Fn != nil {
			return fmt.Errorf("task '%s' is a %s composition but also has a function", t.Name, t.Mode)
		}
		if len(t.Children) == 0 {
			return fmt.Errorf("task '%s' is a %s composition with no children", t.Name, t.Mode)
		}
	default:
		return fmt.Errorf("task '%s' has unknown mode %s", t.Name, t.Mode)
	}
	return nil
}
