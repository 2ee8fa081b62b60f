package testutil

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It registers one task per name, each sleeping for the same duration, and
// records when each one ran.
type MockSleeperModule struct {
	Names []string

	mu             sync.Mutex
	executionTimes map[string]ExecutionRecord
	sleepDuration  time.Duration
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration, names ...string) *MockSleeperModule {
	return &MockSleeperModule{
		Names:          names,
		executionTimes: make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Register registers a sleeping task for every configured name.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	for _, name := range m.Names {
		r.RegisterTask(task.New(name, func(ctx context.Context, _ io.Writer) error {
			startTime := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return ctx.Err()
			}
			endTime := time.Now()

			m.mu.Lock()
			m.executionTimes[name] = ExecutionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()
			return nil
		}))
	}
}

// Record returns the execution record of name and whether it ran.
func (m *MockSleeperModule) Record(name string) (ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.executionTimes[name]
	return rec, ok
}
