// Package testtask provides the built-in "test" task.
package testtask

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
)

// Name is the key the task is registered under.
const Name = "test"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Test prints the line "test" and completes. It has no failure path.
func Test(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "test")
	return nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&task.Task{
		Name:        Name,
		Description: `Prints "test" and completes.`,
		Mode:        task.Single,
		Fn:          Test,
		Source:      "builtin",
	})
}
