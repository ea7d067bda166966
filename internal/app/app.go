package app

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dshills/gridcore/internal/config"
	"github.com/dshills/gridcore/internal/model"
	"github.com/dshills/gridcore/internal/renderer/backend"
)

// Application runs a Grid against a terminal backend.
// It owns the main loop, input polling and config reloads.
type Application struct {
	mu sync.RWMutex

	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics
	grid    *Grid
	backend backend.Backend

	// State
	running  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses
	// defaults and environment overrides only.
	ConfigPath string

	// Config, when set, is used instead of loading ConfigPath. ConfigPath
	// is still watched.
	Config *config.Config

	// Watch reloads the config file when it changes.
	Watch bool

	// Table is the data to show.
	Table *model.Table

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		done:    make(chan struct{}),
		metrics: NewMetrics(),
		logger:  opts.Logger,
	}
	if app.logger == nil {
		app.logger = NopLogger()
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
	}
	app.cfg = cfg

	table := opts.Table
	if table == nil {
		var err error
		if table, err = NewTable(cfg, nil); err != nil {
			return nil, &InitError{Component: "table", Err: err}
		}
	}

	grid, err := NewGrid(GridOptions{
		Config:  cfg,
		Table:   table,
		Logger:  app.logger,
		Metrics: app.metrics,
	})
	if err != nil {
		return nil, err
	}
	app.grid = grid
	return app, nil
}

// NewTable creates a table formatted for the locale and precision in cfg.
func NewTable(cfg *config.Config, rows [][]any) (*model.Table, error) {
	opts, err := TableOptions(cfg)
	if err != nil {
		return nil, err
	}
	return model.NewTable(rows, opts...), nil
}

// TableOptions returns the table formatting options described by cfg.
func TableOptions(cfg *config.Config) ([]model.TableOption, error) {
	tag, err := cfg.Grid.Tag()
	if err != nil {
		return nil, err
	}
	return []model.TableOption{
		model.WithLocale(tag),
		model.WithDecimals(cfg.Grid.Decimals),
	}, nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// Run initializes the backend, mounts the grid and runs the main loop.
// Blocks until shutdown is requested or a quit key is pressed.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b == nil {
		return ErrNoBackend
	}

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	w, h := b.Size()
	if err := app.grid.Mount(w, h); err != nil {
		return err
	}

	var reloads <-chan config.Reload
	if app.opts.Watch && app.opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(app.opts.ConfigPath,
			config.WithWatcherLogger(WithComponent(app.logger, "config")))
		if err != nil {
			app.logger.Warn("config watch disabled", "path", app.opts.ConfigPath, "error", err)
		} else {
			defer watcher.Close()
			reloads = watcher.Reloads()
		}
	}

	return app.eventLoop(b, reloads)
}

// Shutdown asks a running main loop to return. It is safe to call from any
// goroutine and more than once.
func (app *Application) Shutdown() {
	app.doneOnce.Do(func() {
		close(app.done)
	})
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Grid returns the grid. It must only be used from the main loop's
// goroutine while the application runs.
func (app *Application) Grid() *Grid {
	return app.grid
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
