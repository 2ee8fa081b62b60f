package scheduler

import (
	"context"
	"io"

	"github.com/specialistvlad/taskrun/internal/observer"
)

// Runnable is a composed unit of work ready to be invoked.
type Runnable func(ctx context.Context) error

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver attaches the observer that receives lifecycle events.
func WithObserver(o observer.Observer) Option {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithOutput sets the writer handed to every task body.
func WithOutput(w io.Writer) Option {
	return func(s *Scheduler) {
		if w != nil {
			s.out = w
		}
	}
}

// WithWorkers bounds how many tasks of one parallel composition run at the
// same time. Zero or a negative value means no limit.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		s.workers = n
	}
}

// WithContinueOnError keeps compositions running after a task fails. The
// failures are joined into the returned error.
func WithContinueOnError(enabled bool) Option {
	return func(s *Scheduler) {
		s.continueOnError = enabled
	}
}
