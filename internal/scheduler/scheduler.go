package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/specialistvlad/taskrun/internal/ctxlog"
	"github.com/specialistvlad/taskrun/internal/observer"
	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
	"golang.org/x/sync/errgroup"
)

// Scheduler composes registered tasks and runs them.
type Scheduler struct {
	reg             *registry.Registry
	observer        observer.Observer
	out             io.Writer
	workers         int
	continueOnError bool
	now             func() time.Time
}

// New creates a scheduler over reg. Without options events are dropped and
// task output is discarded.
func New(reg *registry.Registry, opts ...Option) *Scheduler {
	s := &Scheduler{
		reg:      reg,
		observer: observer.Nop{},
		out:      io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parallel returns a Runnable that runs the named tasks concurrently.
func (s *Scheduler) Parallel(names ...string) Runnable {
	return func(ctx context.Context) error {
		tasks, err := s.resolve(names)
		if err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("Running parallel composition.", "tasks", names, "workers", s.workers)
		return s.runParallel(ctx, tasks)
	}
}

// Series returns a Runnable that runs the named tasks one after another.
func (s *Scheduler) Series(names ...string) Runnable {
	return func(ctx context.Context) error {
		tasks, err := s.resolve(names)
		if err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("Running series composition.", "tasks", names)
		return s.runSeries(ctx, tasks)
	}
}

func (s *Scheduler) resolve(names []string) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(names))
	for _, name := range names {
		t, ok := s.reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Scheduler) limit() int {
	if s.workers <= 0 {
		return -1
	}
	return s.workers
}

func (s *Scheduler) runParallel(ctx context.Context, tasks []*task.Task) error {
	if !s.continueOnError {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.limit())
		for _, t := range tasks {
			g.Go(func() error {
				return s.runTask(gctx, t)
			})
		}
		return g.Wait()
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(s.limit())
	for _, t := range tasks {
		g.Go(func() error {
			if err := s.runTask(ctx, t); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *Scheduler) runSeries(ctx context.Context, tasks []*task.Task) error {
	var errs []error
	for _, t := range tasks {
		err := s.runTask(ctx, t)
		if err == nil {
			continue
		}
		if !s.continueOnError {
			return err
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(errs...)
}

// runTask runs one task, composite or not, and reports its lifecycle.
func (s *Scheduler) runTask(ctx context.Context, t *task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	taskCtx, logger := ctxlog.With(ctx, "task", t.Name)
	start := s.now()
	s.observer.OnTaskStart(observer.Event{Task: t.Name, Mode: t.Mode, At: start})

	var err error
	if t.IsComposite() {
		err = s.runComposite(ctx, t)
	} else {
		err = s.call(taskCtx, t)
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		logger.Debug("Task abandoned.", "reason", ctxErr)
		return err
	}

	end := s.now()
	event := observer.Event{Task: t.Name, Mode: t.Mode, At: end, Duration: end.Sub(start)}
	if err != nil {
		event.Err = err
		s.observer.OnTaskError(event)
		return err
	}
	s.observer.OnTaskStop(event)
	return nil
}

func (s *Scheduler) runComposite(ctx context.Context, t *task.Task) error {
	children, err := s.resolve(t.Children)
	if err != nil {
		return err
	}
	if t.Mode == task.Series {
		return s.runSeries(ctx, children)
	}
	return s.runParallel(ctx, children)
}

// call runs the body of a single task. It stops waiting when ctx ends; the
// body keeps its goroutine until it returns on its own.
func (s *Scheduler) call(ctx context.Context, t *task.Task) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &TaskError{Task: t.Name, Panic: r}
			}
		}()
		if err := t.Fn(ctx, s.out); err != nil {
			var taskErr *TaskError
			if errors.As(err, &taskErr) {
				done <- err
				return
			}
			done <- &TaskError{Task: t.Name, Err: err}
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
