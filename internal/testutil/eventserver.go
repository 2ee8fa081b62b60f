package testutil

import (
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/taskrun/internal/observer"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/socket.io/v2/socket"
)

// ReceivedEvent is one lifecycle event delivered to an EventServer.
type ReceivedEvent struct {
	Name    string
	Payload map[string]any
}

// EventServer is an in-process socket.io server that records the lifecycle
// events streamed to its default namespace.
type EventServer struct {
	URL string

	mu     sync.Mutex
	events []ReceivedEvent
}

// NewEventServer starts an EventServer that is shut down when the test ends.
func NewEventServer(t *testing.T) *EventServer {
	t.Helper()

	io := socket.NewServer(nil, nil)
	srv := httptest.NewServer(io.ServeHandler(nil))
	es := &EventServer{URL: srv.URL}

	io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		for _, name := range []string{observer.EventTaskStart, observer.EventTaskStop, observer.EventTaskError} {
			client.On(name, func(args ...any) {
				es.record(name, args)
			})
		}
	})

	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	return es
}

func (es *EventServer) record(name string, args []any) {
	ev := ReceivedEvent{Name: name}
	if len(args) > 0 {
		ev.Payload, _ = args[0].(map[string]any)
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	es.events = append(es.events, ev)
}

// Events returns a copy of the events received so far.
func (es *EventServer) Events() []ReceivedEvent {
	es.mu.Lock()
	defer es.mu.Unlock()
	return slices.Clone(es.events)
}

// WaitForEvents blocks until at least n events arrived and returns them.
func (es *EventServer) WaitForEvents(t *testing.T, n int) []ReceivedEvent {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(es.Events()) >= n
	}, 5*time.Second, 10*time.Millisecond, "expected %d streamed events", n)
	return es.Events()
}
