package testutil

import (
	"context"
	"io"

	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
)

// NoOpModule registers a single "noop" task that does nothing. It is useful
// for tests that need a valid registry but no output.
type NoOpModule struct{}

// Register registers the "noop" task.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterTask(task.New("noop", func(context.Context, io.Writer) error {
		return nil
	}))
}
