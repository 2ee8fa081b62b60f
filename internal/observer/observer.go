package observer

import (
	"time"

	"github.com/specialistvlad/taskrun/internal/task"
)

// Event describes one lifecycle transition of a task.
type Event struct {
	// Task is the name of the task.
	Task string
	// Mode is how the task runs (single, parallel, series).
	Mode task.Mode
	// At is when the transition happened.
	At time.Time
	// Duration is the run time so far. Zero for start events.
	Duration time.Duration
	// Err is set on error events.
	Err error
}

// Observer receives task lifecycle events. Implementations must be safe for
// concurrent use because parallel tasks report from different goroutines.
type Observer interface {
	OnTaskStart(e Event)
	OnTaskStop(e Event)
	OnTaskError(e Event)
}

// Nop ignores every event.
type Nop struct{}

func (Nop) OnTaskStart(Event) {}
func (Nop) OnTaskStop(Event)  {}
func (Nop) OnTaskError(Event) {}

type multi []Observer

// Multi returns an Observer that forwards each event to every non-nil
// observer in order.
func Multi(observers ...Observer) Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) OnTaskStart(e Event) {
	for _, o := range m {
		o.OnTaskStart(e)
	}
}

func (m multi) OnTaskStop(e Event) {
	for _, o := range m {
		o.OnTaskStop(e)
	}
}

func (m multi) OnTaskError(e Event) {
	for _, o := range m {
		o.OnTaskError(e)
	}
}
