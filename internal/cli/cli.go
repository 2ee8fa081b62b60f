package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/specialistvlad/taskrun/internal/app"
	"github.com/spf13/pflag"
)

// Program is the name shown in usage and version output.
const Program = "taskrun"

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Banner returns the usage banner. With useColor the "Usage:" label is bold
// and the options placeholder is blue.
func Banner(program string, useColor bool) string {
	bold := color.New(color.Bold)
	blue := color.New(color.FgBlue)
	if useColor {
		bold.EnableColor()
		blue.EnableColor()
	} else {
		bold.DisableColor()
		blue.DisableColor()
	}
	return fmt.Sprintf("%s\n%s %s %s tasks", program, bold.Sprint("Usage:"), program, blue.Sprint("[options]"))
}

// isTerminal reports whether w is a terminal that can render ANSI styles.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet(Program, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	versionFlag := flagSet.BoolP("version", "v", false, "Print the version and exit.")
	taskfileFlag := flagSet.StringP("taskfile", "f", "", "Path to an HCL taskfile or a directory of taskfiles.")
	cwdFlag := flagSet.String("cwd", "", "Directory used to find the default taskfile.")
	tasksFlag := flagSet.BoolP("tasks", "T", false, "Print the task tree and exit.")
	tasksSimpleFlag := flagSet.Bool("tasks-simple", false, "Print task names one per line and exit.")
	tasksJSONFlag := flagSet.Bool("tasks-json", false, "Print the task tree as JSON and exit.")
	seriesFlag := flagSet.Bool("series", false, "Run the given tasks in series instead of in parallel.")
	continueFlag := flagSet.Bool("continue", false, "Keep running tasks after one fails.")
	silentFlag := flagSet.BoolP("silent", "S", false, "Suppress all log output.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	colorFlag := flagSet.Bool("color", false, "Force ANSI colors even when the output is not a terminal.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable ANSI colors.")
	workersFlag := flagSet.Int("workers", 10, "Maximum number of tasks a parallel composition runs at once. 0 is unlimited.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	eventsURLFlag := flagSet.String("events-url", "", "Stream task lifecycle events to this socket.io server.")
	eventsNamespaceFlag := flagSet.String("events-namespace", "/", "Socket.io namespace for lifecycle events.")
	eventsInsecureFlag := flagSet.Bool("events-insecure", false, "Skip TLS certificate verification for the events server.")

	useColor := func() bool {
		if *noColorFlag {
			return false
		}
		return *colorFlag || (!color.NoColor && isTerminal(output))
	}

	flagSet.Usage = func() {
		fmt.Fprintln(output, Banner(Program, useColor()))
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Options:")
		fmt.Fprint(output, flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *versionFlag {
		fmt.Fprintf(output, "%s version %s\n", Program, Version)
		return nil, true, nil
	}

	listMode := app.ListNone
	switch {
	case *tasksJSONFlag:
		listMode = app.ListJSON
	case *tasksSimpleFlag:
		listMode = app.ListSimple
	case *tasksFlag:
		listMode = app.ListTree
	}

	config, err := app.NewConfig(app.Config{
		Tasks:           flagSet.Args(),
		Taskfile:        *taskfileFlag,
		Cwd:             *cwdFlag,
		Series:          *seriesFlag,
		Continue:        *continueFlag,
		ListMode:        listMode,
		Silent:          *silentFlag,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
		Color:           useColor(),
		WorkerCount:     *workersFlag,
		HealthcheckPort: *healthPortFlag,
		EventsURL:       *eventsURLFlag,
		EventsNamespace: *eventsNamespaceFlag,
		EventsInsecure:  *eventsInsecureFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
