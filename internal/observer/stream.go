package observer

import (
	"log/slog"
	"time"
)

// Socket.io event names emitted by Stream.
const (
	EventTaskStart = "task_start"
	EventTaskStop  = "task_stop"
	EventTaskError = "task_error"
)

// Emitter is the subset of a socket.io client socket used by Stream.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Stream forwards lifecycle events to a remote listener. Delivery failures
// are logged and otherwise ignored.
type Stream struct {
	emitter Emitter
	logger  *slog.Logger
}

// NewStream returns an observer that emits every event on emitter.
func NewStream(emitter Emitter, logger *slog.Logger) *Stream {
	return &Stream{emitter: emitter, logger: logger}
}

func (s *Stream) OnTaskStart(e Event) { s.emit(EventTaskStart, e) }
func (s *Stream) OnTaskStop(e Event)  { s.emit(EventTaskStop, e) }
func (s *Stream) OnTaskError(e Event) { s.emit(EventTaskError, e) }

func (s *Stream) emit(name string, e Event) {
	if err := s.emitter.Emit(name, Payload(e)); err != nil {
		s.logger.Debug("Failed to stream lifecycle event.", "event", name, "task", e.Task, "error", err)
	}
}

// Payload converts an event into the JSON-friendly map sent over the wire.
func Payload(e Event) map[string]any {
	p := map[string]any{
		"task": e.Task,
		"mode": e.Mode.String(),
		"at":   e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.Duration > 0 {
		p["duration_ms"] = float64(e.Duration) / float64(time.Millisecond)
	}
	if e.Err != nil {
		p["error"] = e.Err.Error()
	}
	return p
}
