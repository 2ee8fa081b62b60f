package observer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// SyncTask tracks tasks that started but never reported completion, so that
// they can be named once the run is over.
type SyncTask struct {
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]int
}

// NewSyncTask returns an empty tracker that reports to logger.
func NewSyncTask(logger *slog.Logger) *SyncTask {
	return &SyncTask{
		logger:  logger,
		running: make(map[string]int),
	}
}

func (s *SyncTask) OnTaskStart(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[e.Task]++
}

func (s *SyncTask) OnTaskStop(e Event) { s.finish(e.Task) }

// OnTaskError forgets every pending task. Siblings cancelled because of the
// failure never report completion and must not be named by Report.
func (s *SyncTask) OnTaskError(Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.running)
}

func (s *SyncTask) finish(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] <= 1 {
		delete(s.running, name)
		return
	}
	s.running[name]--
}

// Pending returns the sorted names of tasks still running.
func (s *SyncTask) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report logs a warning naming every pending task. It returns true when
// something was reported.
func (s *SyncTask) Report() bool {
	pending := s.Pending()
	if len(pending) == 0 {
		return false
	}

	quoted := make([]string, len(pending))
	for i, name := range pending {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}
	s.logger.Warn("The following tasks did not complete: "+strings.Join(quoted, ", "), "tasks", pending)
	s.logger.Warn("Did you forget to signal async completion?")
	return true
}
