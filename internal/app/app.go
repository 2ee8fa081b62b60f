package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/taskrun/internal/ctxlog"
	"github.com/specialistvlad/taskrun/internal/observer"
	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/scheduler"
	"github.com/zishang520/socket.io-client-go/socket"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	config    *Config
	logger    *slog.Logger
	registry  *registry.Registry
	scheduler *scheduler.Scheduler
	syncTask  *observer.SyncTask
	metrics   *prom.Registry
	stream    *socket.Socket

	mu         sync.Mutex
	state      State
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App, including its own isolated logger, registry and metrics.
// Every task is registered and every observer attached before it returns.
// When modules is empty the core modules are registered.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.Silent, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "tasks", reg.Len())

	taskfile, err := resolveTaskfile(cfg)
	if err != nil {
		return nil, err
	}
	if taskfile != "" {
		if err := reg.LoadTaskfiles(ctx, taskfile); err != nil {
			return nil, fmt.Errorf("failed to load taskfile: %w", err)
		}
	}

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}

	metrics := prom.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector())
	metricsObserver, err := observer.NewMetrics(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &App{
		outW:     outW,
		config:   cfg,
		logger:   logger,
		registry: reg,
		syncTask: observer.NewSyncTask(logger),
		metrics:  metrics,
	}

	observers := []observer.Observer{
		observer.NewLogEvents(logger),
		a.syncTask,
		metricsObserver,
	}
	if cfg.EventsURL != "" {
		sock, err := observer.DialStream(ctx, cfg.EventsURL, cfg.EventsNamespace, cfg.EventsInsecure, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect lifecycle event stream: %w", err)
		}
		a.stream = sock
		observers = append(observers, observer.NewStream(sock, logger))
	}

	a.scheduler = scheduler.New(reg,
		scheduler.WithObserver(observer.Multi(observers...)),
		scheduler.WithOutput(outW),
		scheduler.WithWorkers(cfg.WorkerCount),
		scheduler.WithContinueOnError(cfg.Continue),
	)
	logger.Debug("Scheduler configured.", "observers", len(observers), "workers", cfg.WorkerCount)

	return a, nil
}

// resolveTaskfile returns the taskfile path to load, or "" when there is
// none. An explicit path must exist. The default taskfile is optional.
func resolveTaskfile(cfg *Config) (string, error) {
	if cfg.Taskfile != "" {
		path := cfg.Taskfile
		if !filepath.IsAbs(path) && cfg.Cwd != "" {
			path = filepath.Join(cfg.Cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("taskfile not found: %w", err)
		}
		return path, nil
	}

	path := filepath.Join(cfg.Cwd, DefaultTaskfile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to check default taskfile: %w", err)
	}
	return path, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the gatherer behind the /metrics endpoint.
func (a *App) Metrics() prom.Gatherer {
	return a.metrics
}

// Close releases the event stream connection and stops the health check
// server if it is still running.
func (a *App) Close() error {
	var errs []error
	if err := a.closeHealthcheckServer(); err != nil {
		errs = append(errs, err)
	}
	if a.stream != nil {
		a.logger.Debug("Disconnecting lifecycle event stream.")
		a.stream.Disconnect()
		a.stream = nil
	}
	return errors.Join(errs...)
}
