package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/taskrun/internal/ctxlog"
	"github.com/specialistvlad/taskrun/internal/scheduler"
)

// Run executes the configured tasks once. Listing modes print the task tree
// instead and leave the App idle. A failed composition is returned as a
// *SchedulerError.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.ListMode != ListNone {
		return a.ListTasks(a.outW)
	}

	if err := a.transition(StateIdle, StateRunning); err != nil {
		return fmt.Errorf("%w: %v", ErrAlreadyRun, err)
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			_ = a.transition(StateRunning, StateDone)
			return err
		}
		defer a.closeHealthcheckServer()
	} else {
		a.logger.Debug("Health check server not started: disabled")
	}

	var runnable scheduler.Runnable
	if a.config.Series {
		runnable = a.scheduler.Series(a.config.Tasks...)
	} else {
		runnable = a.scheduler.Parallel(a.config.Tasks...)
	}

	a.logger.Debug("Running tasks.", "tasks", a.config.Tasks, "series", a.config.Series)
	err := runnable(ctx)
	a.syncTask.Report()

	if terr := a.transition(StateRunning, StateDone); terr != nil {
		a.logger.Error("Unexpected app state after run.", "error", terr)
	}

	if err != nil {
		a.logger.Debug("App.Run method finished with error.", "error", err)
		return &SchedulerError{Err: err}
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
