package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/taskrun/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Action builds a task body from the value a taskfile assigns to an action
// attribute, e.g. `print = "hello"` calls the "print" action with a string.
type Action func(value cty.Value) (task.Func, error)

// RegisterAction registers a named action usable from taskfiles.
func (r *Registry) RegisterAction(name string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[name]; exists {
		panic(fmt.Sprintf("action with name '%s' already registered", name))
	}
	slog.Debug("Registering action.", "name", name)
	r.actions[name] = action
}

// Action returns the action registered under name.
func (r *Registry) Action(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// ActionNames returns all registered action names in sorted order.
func (r *Registry) ActionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
