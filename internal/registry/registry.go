package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/taskrun/internal/task"
)

// ErrDuplicateTask is returned when a task name is registered twice.
var ErrDuplicateTask = errors.New("task already registered")

// Module is the interface that all built-in modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the tasks and actions for a single application instance.
type Registry struct {
	mu      sync.RWMutex
	tasks   map[string]*task.Task
	actions map[string]Action
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		tasks:   make(map[string]*task.Task),
		actions: make(map[string]Action),
	}
}

// RegisterTask registers a task from Go code. A duplicate or malformed task
// is a programmer error and panics.
func (r *Registry) RegisterTask(t *task.Task) {
	if err := r.Add(t); err != nil {
		panic(err.Error())
	}
}

// Add registers a task and reports duplicates or malformed tasks as errors.
func (r *Registry) Add(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("task with name '%s': %w", t.Name, ErrDuplicateTask)
	}
	slog.Debug("Registering task.", "name", t.Name, "mode", t.Mode.String())
	r.tasks[t.Name] = t
	return nil
}

// Get returns the task registered under name.
func (r *Registry) Get(name string) (*task.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns all registered task names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
