package observer

import (
	"fmt"
	"log/slog"
)

// LogEvents writes one log line per lifecycle event.
type LogEvents struct {
	logger *slog.Logger
}

// NewLogEvents returns an observer that logs to logger.
func NewLogEvents(logger *slog.Logger) *LogEvents {
	return &LogEvents{logger: logger}
}

func (l *LogEvents) OnTaskStart(e Event) {
	l.logger.Info(fmt.Sprintf("Starting '%s'...", e.Task), "task", e.Task, "mode", e.Mode.String())
}

func (l *LogEvents) OnTaskStop(e Event) {
	l.logger.Info(fmt.Sprintf("Finished '%s' after %s", e.Task, e.Duration), "task", e.Task, "duration", e.Duration)
}

func (l *LogEvents) OnTaskError(e Event) {
	l.logger.Error(fmt.Sprintf("'%s' errored after %s", e.Task, e.Duration), "task", e.Task, "duration", e.Duration, "error", e.Err)
}
