package testutil

import (
	"testing"

	"github.com/specialistvlad/taskrun/internal/app"
	"github.com/specialistvlad/taskrun/internal/registry"
)

// RunTaskfileTest runs tasks from a single taskfile placed at the default
// taskfile location.
func RunTaskfileTest(t *testing.T, taskfileHCL string, tasks []string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	files := map[string]string{
		app.DefaultTaskfile: taskfileHCL,
	}
	return RunIntegrationTest(t, app.Config{Tasks: tasks}, files, modules...)
}
