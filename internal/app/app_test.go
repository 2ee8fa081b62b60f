package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/taskrun/internal/app"
	"github.com/specialistvlad/taskrun/internal/observer"
	"github.com/specialistvlad/taskrun/internal/scheduler"
	"github.com/specialistvlad/taskrun/internal/testutil"
	"github.com/specialistvlad/taskrun/modules/print"
	"github.com/specialistvlad/taskrun/modules/testtask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DefaultTaskPrintsOnce(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, app.Config{}, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 1, countLines(result.Output, "test"))
	assert.Contains(t, result.Output, `msg="Starting 'test'..."`)
	testutil.AssertTaskRan(t, result, "test")
	assert.Equal(t, app.StateDone, result.App.State())
}

// countLines returns how many lines of out are exactly line.
func countLines(out, line string) int {
	n := 0
	for _, l := range strings.Split(out, "\n") {
		if l == line {
			n++
		}
	}
	return n
}

func TestRun_SilentPrintsOnlyTaskOutput(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, app.Config{Silent: true}, nil)

	require.NoError(t, result.Err)
	assert.Equal(t, "test\n", result.Output)
}

func TestRun_UnknownTaskIsSchedulerError(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, app.Config{Tasks: []string{"missing"}, Silent: true}, nil)

	var schedErr *app.SchedulerError
	require.ErrorAs(t, result.Err, &schedErr)
	require.ErrorIs(t, result.Err, scheduler.ErrTaskNotFound)
	assert.Empty(t, result.Output)
}

func TestRun_FailingTaskIsSchedulerError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	boom := errors.New("boom")
	failing := &testutil.SimpleModule{
		TaskName: "test",
		Fn:       func(context.Context, io.Writer) error { return boom },
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, app.Config{}, nil, failing)

	// --- Assert ---
	var schedErr *app.SchedulerError
	require.ErrorAs(t, result.Err, &schedErr)
	require.ErrorIs(t, result.Err, boom)
	testutil.AssertTaskFailed(t, result, "test")
	assert.Equal(t, app.StateDone, result.App.State())
}

func TestRun_DuplicateRegistrationPanicsAtStartup(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, app.Config{}, nil, &testtask.Module{}, &testtask.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "task already registered")
	assert.Nil(t, result.App)
}

func TestRun_TaskfileCompositions(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	taskfile := `
task "hello" {
  print = "hello"
}

task "world" {
  print = "world"
}

task "greet" {
  description = "Says hello, then world."
  series      = ["hello", "world"]
}

task "default" {
  parallel = ["greet", "test"]
}
`

	// --- Act ---
	result := testutil.RunTaskfileTest(t, taskfile, []string{"default"}, &testtask.Module{}, &print.Module{})

	// --- Assert ---
	require.NoError(t, result.Err)
	lines := strings.Split(result.Output, "\n")
	hello := slices.Index(lines, "hello")
	world := slices.Index(lines, "world")
	require.NotEqual(t, -1, hello)
	require.NotEqual(t, -1, world)
	assert.Less(t, hello, world, "series children must run in order")
	assert.Equal(t, 1, countLines(result.Output, "test"))
	for _, name := range []string{"default", "greet", "hello", "world", "test"} {
		testutil.AssertTaskRan(t, result, name)
	}
}

func TestRun_TaskfileReadsEnvironment(t *testing.T) {
	t.Setenv("TASKRUN_TEST_GREETING", "hi from env")

	taskfile := `
task "greet" {
  print = env.TASKRUN_TEST_GREETING
}
`
	result := testutil.RunTaskfileTest(t, taskfile, []string{"greet"}, &print.Module{})

	require.NoError(t, result.Err)
	assert.Equal(t, 1, countLines(result.Output, "hi from env"))
}

func TestNewApp_TaskfileErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		cfg      app.Config
		files    map[string]string
		contains string
	}{
		{
			name:     "explicit taskfile missing",
			cfg:      app.Config{Taskfile: "nope.hcl"},
			contains: "taskfile not found",
		},
		{
			name: "syntax error",
			files: map[string]string{
				app.DefaultTaskfile: `task "a" {`,
			},
			contains: "failed to parse HCL file",
		},
		{
			name: "unknown child",
			files: map[string]string{
				app.DefaultTaskfile: `task "a" { parallel = ["ghost"] }`,
			},
			contains: "composition refers to unknown task 'ghost'",
		},
		{
			name: "cycle",
			files: map[string]string{
				app.DefaultTaskfile: `
task "a" { series = ["b"] }
task "b" { series = ["a"] }
`,
			},
			contains: "composition cycle: a -> b -> a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, tc.cfg, tc.files)

			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), tc.contains)
			assert.Nil(t, result.App)
		})
	}
}

func TestRun_ExplicitTaskfileRelativeToCwd(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"tasks/extra.hcl": `task "extra" { print = "extra ran" }`,
	}
	result := testutil.RunIntegrationTest(t, app.Config{Taskfile: "tasks", Tasks: []string{"extra"}}, files)

	require.NoError(t, result.Err)
	assert.Equal(t, 1, countLines(result.Output, "extra ran"))
}

func TestRun_ParallelOverlapsAndSeriesDoesNot(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		series      bool
		wantOverlap bool
	}{
		{name: "parallel", series: false, wantOverlap: true},
		{name: "series", series: true, wantOverlap: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			sleeper := testutil.NewMockSleeperModule(50*time.Millisecond, "a", "b")
			cfg := app.Config{Tasks: []string{"a", "b"}, Series: tc.series, Silent: true}

			// --- Act ---
			result := testutil.RunIntegrationTest(t, cfg, nil, sleeper)

			// --- Assert ---
			require.NoError(t, result.Err)
			a, okA := sleeper.Record("a")
			b, okB := sleeper.Record("b")
			require.True(t, okA && okB, "both tasks must have run")
			assert.Equal(t, tc.wantOverlap, a.Overlaps(b))
		})
	}
}

func TestRun_CancelledContextReportsIncompleteTask(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	hung := &testutil.SimpleModule{
		TaskName: "test",
		Fn: func(context.Context, io.Writer) error {
			<-release
			return nil
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// --- Act ---
	result := testutil.RunIntegrationTestWithContext(ctx, t, app.Config{}, nil, hung)

	// --- Assert ---
	var schedErr *app.SchedulerError
	require.ErrorAs(t, result.Err, &schedErr)
	require.ErrorIs(t, result.Err, context.DeadlineExceeded)
	assert.Contains(t, result.Output, "The following tasks did not complete: 'test'")
	assert.Contains(t, result.Output, "Did you forget to signal async completion?")
}

func TestRun_FailFastDoesNotReportCancelledSiblings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	started := make(chan struct{})
	slow := &testutil.SimpleModule{
		TaskName: "slow",
		Fn: func(ctx context.Context, _ io.Writer) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	fail := &testutil.SimpleModule{
		TaskName: "fail",
		Fn: func(context.Context, io.Writer) error {
			<-started
			return errors.New("boom")
		},
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, app.Config{Tasks: []string{"fail", "slow"}}, nil, fail, slow)

	// --- Assert ---
	var schedErr *app.SchedulerError
	require.ErrorAs(t, result.Err, &schedErr)
	assert.Contains(t, result.Output, "'fail' errored after")
	assert.NotContains(t, result.Output, "The following tasks did not complete")
	assert.NotContains(t, result.Output, "Did you forget to signal async completion?")
}

func TestRun_StreamsLifecycleEvents(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	server := testutil.NewEventServer(t)

	// --- Act ---
	result := testutil.RunIntegrationTest(t, app.Config{EventsURL: server.URL}, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "Lifecycle event stream connected")

	events := server.WaitForEvents(t, 2)
	byName := make(map[string]map[string]any, len(events))
	for _, ev := range events {
		byName[ev.Name] = ev.Payload
	}
	require.Contains(t, byName, observer.EventTaskStart)
	require.Contains(t, byName, observer.EventTaskStop)

	start := byName[observer.EventTaskStart]
	assert.Equal(t, "test", start["task"])
	assert.Equal(t, "single", start["mode"])
	assert.NotEmpty(t, start["at"])

	stop := byName[observer.EventTaskStop]
	assert.Equal(t, "test", stop["task"])
	assert.Contains(t, stop, "duration_ms")
	assert.NotContains(t, stop, "error")
}

func TestRun_ListTasks(t *testing.T) {
	t.Parallel()

	taskfile := `
task "build" {
  description = "Builds everything."
  series      = ["noop", "test"]
}
`
	files := map[string]string{app.DefaultTaskfile: taskfile}

	t.Run("simple", func(t *testing.T) {
		t.Parallel()
		result := testutil.RunIntegrationTest(t, app.Config{ListMode: app.ListSimple, Silent: true}, files,
			&testtask.Module{}, &testutil.NoOpModule{})

		require.NoError(t, result.Err)
		assert.Equal(t, "build\nnoop\ntest\n", result.Output)
		assert.Equal(t, app.StateIdle, result.App.State())
	})

	t.Run("tree", func(t *testing.T) {
		t.Parallel()
		result := testutil.RunIntegrationTest(t, app.Config{ListMode: app.ListTree, Silent: true}, files,
			&testtask.Module{}, &testutil.NoOpModule{})

		require.NoError(t, result.Err)
		want := "Tasks\n" +
			"├── build <series>  Builds everything.\n" +
			"│   ├── noop\n" +
			"│   └── test\n" +
			"├── noop\n" +
			"└── test  Prints \"test\" and completes.\n"
		assert.Equal(t, want, result.Output)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		result := testutil.RunIntegrationTest(t, app.Config{ListMode: app.ListJSON, Silent: true}, files,
			&testtask.Module{}, &testutil.NoOpModule{})

		require.NoError(t, result.Err)
		var tree struct {
			Label string `json:"label"`
			Nodes []struct {
				Label string `json:"label"`
				Mode  string `json:"mode"`
				Nodes []struct {
					Label string `json:"label"`
				} `json:"nodes"`
			} `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Output), &tree))
		assert.Equal(t, "Tasks", tree.Label)
		require.Len(t, tree.Nodes, 3)
		assert.Equal(t, "build", tree.Nodes[0].Label)
		assert.Equal(t, "series", tree.Nodes[0].Mode)
		require.Len(t, tree.Nodes[0].Nodes, 2)
		assert.Equal(t, "noop", tree.Nodes[0].Nodes[0].Label)
	})
}
