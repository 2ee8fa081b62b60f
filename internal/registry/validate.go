package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/taskrun/internal/ctxlog"
)

// Validate checks that every composition refers only to registered tasks and
// that no composition reaches itself. All problems are reported together.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.Names() {
		t, _ := r.Get(name)
		for _, child := range t.Children {
			if _, ok := r.Get(child); !ok {
				errs = append(errs, fmt.Sprintf("task '%s': %s composition refers to unknown task '%s'", name, t.Mode, child))
			}
		}
	}

	if cycle := r.findCycle(); cycle != nil {
		errs = append(errs, fmt.Sprintf("composition cycle: %s", strings.Join(cycle, " -> ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "tasks", r.Len())
	return nil
}

const (
	unvisited = iota
	visiting
	visited
)

// findCycle returns the first composition cycle found, starting and ending
// with the same task name, or nil. Names are walked in sorted order so the
// reported cycle is stable.
func (r *Registry) findCycle() []string {
	state := make(map[string]int)
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		switch state[name] {
		case visiting:
			for i, n := range stack {
				if n == name {
					return append(append([]string{}, stack[i:]...), name)
				}
			}
		case visited:
			return nil
		}

		t, ok := r.Get(name)
		if !ok {
			return nil
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, child := range t.Children {
			if cycle := visit(child); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		return nil
	}

	for _, name := range r.Names() {
		if cycle := visit(name); cycle != nil {
			return cycle
		}
	}
	return nil
}
