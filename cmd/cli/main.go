package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/taskrun/internal/app"
	"github.com/specialistvlad/taskrun/internal/cli"
	"github.com/specialistvlad/taskrun/internal/registry"
)

// osExit is swapped in tests.
var osExit = os.Exit

// main is the entrypoint for the taskrun application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	finish(os.Stderr, err)
}

// run encapsulates the main application logic for easier testing and error
// handling. When modules is empty the core modules are registered.
func run(ctx context.Context, outW io.Writer, args []string, modules ...registry.Module) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Registering a task twice panics, so we recover here to provide a clean
	// exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	taskApp, err := app.NewApp(ctx, outW, appConfig, modules...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := taskApp.Close(); closeErr != nil {
			slog.Warn("Failed to release application resources.", "error", closeErr)
		}
	}()

	return taskApp.Run(ctx)
}

// exitCode maps an error returned by run to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// finish reports err and exits with its code. On success it returns without
// calling exit. Scheduler errors were already logged by the lifecycle
// observers, so only other errors are printed.
func finish(errW io.Writer, err error) {
	code := exitCode(err)
	if code == 0 {
		return
	}

	var schedErr *app.SchedulerError
	if !errors.As(err, &schedErr) {
		fmt.Fprintln(errW, err)
	}
	osExit(code)
}
