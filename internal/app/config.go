package app

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTask is run when no task names are given.
const DefaultTask = "test"

// DefaultTaskfile is looked up in the working directory when no taskfile is
// given explicitly.
const DefaultTaskfile = "taskrun.hcl"

// ListMode selects how registered tasks are printed instead of being run.
type ListMode int

const (
	// ListNone runs the requested tasks.
	ListNone ListMode = iota
	// ListTree prints every task with its description and children.
	ListTree
	// ListSimple prints task names one per line.
	ListSimple
	// ListJSON prints the task tree as JSON.
	ListJSON
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Tasks    []string // names to run, DefaultTask when empty
	Taskfile string   // hcl file or directory with extra tasks
	Cwd      string

	Series   bool
	Continue bool
	ListMode ListMode

	Silent    bool
	LogFormat string
	LogLevel  string
	Color     bool

	WorkerCount     int
	HealthcheckPort int

	EventsURL       string
	EventsNamespace string
	EventsInsecure  bool
}

// NewConfig fills defaults into cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Tasks) == 0 {
		cfg.Tasks = []string{DefaultTask}
	}
	for _, name := range cfg.Tasks {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("task names must not be empty")
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid workers %d: must not be negative", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d: must be between 0 and 65535", cfg.HealthcheckPort)
	}

	if cfg.EventsNamespace == "" {
		cfg.EventsNamespace = "/"
	}
	if !strings.HasPrefix(cfg.EventsNamespace, "/") {
		return nil, fmt.Errorf("invalid events-namespace %q: must start with '/'", cfg.EventsNamespace)
	}

	return &cfg, nil
}
