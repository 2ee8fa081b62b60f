package testutil

import (
	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single task and, optionally, a single action.
type SimpleModule struct {
	TaskName string
	Fn       task.Func

	ActionName string
	Action     registry.Action
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.TaskName != "" && m.Fn != nil {
		r.RegisterTask(task.New(m.TaskName, m.Fn))
	}
	if m.ActionName != "" && m.Action != nil {
		r.RegisterAction(m.ActionName, m.Action)
	}
}
