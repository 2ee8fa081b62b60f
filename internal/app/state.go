package app

import "fmt"

// State is the lifecycle position of an App.
type State int

const (
	// StateIdle is set after setup and before Run.
	StateIdle State = iota
	// StateRunning is set while the composition executes.
	StateRunning
	// StateDone is set after the composition returned, whatever the outcome.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// transition moves the App from one state to the next and logs the change.
// It fails when the App is not in the expected state.
func (a *App) transition(from, to State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != from {
		return fmt.Errorf("cannot move to %s from %s", to, a.state)
	}
	a.state = to
	a.logger.Debug("App state changed.", "from", from.String(), "to", to.String())
	return nil
}
