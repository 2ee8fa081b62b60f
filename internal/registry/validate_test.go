package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/taskrun/internal/task"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		tasks   []*task.Task
		wantErr []string
	}{
		{
			name: "valid compositions",
			tasks: []*task.Task{
				task.New("a", noop),
				task.New("b", noop),
				task.Compose("both", task.Parallel, "a", "b"),
				task.Compose("ci", task.Series, "both", "a"),
			},
		},
		{
			name: "unknown child",
			tasks: []*task.Task{
				task.Compose("all", task.Parallel, "a", "ghost"),
				task.New("a", noop),
			},
			wantErr: []string{"task 'all': parallel composition refers to unknown task 'ghost'"},
		},
		{
			name: "self reference",
			tasks: []*task.Task{
				task.Compose("loop", task.Series, "loop"),
			},
			wantErr: []string{"composition cycle: loop -> loop"},
		},
		{
			name: "indirect cycle and unknown child reported together",
			tasks: []*task.Task{
				task.Compose("a", task.Series, "b"),
				task.Compose("b", task.Parallel, "c", "nope"),
				task.Compose("c", task.Series, "a"),
			},
			wantErr: []string{
				"task 'b': parallel composition refers to unknown task 'nope'",
				"composition cycle: a -> b -> c -> a",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := New()
			for _, tk := range tc.tasks {
				require.NoError(t, r.Add(tk))
			}

			err := r.Validate(context.Background())
			if len(tc.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), "registry validation failed")
			for _, want := range tc.wantErr {
				require.Contains(t, err.Error(), want)
			}
		})
	}
}
