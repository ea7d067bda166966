package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload is the outcome of reloading the config file.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher reloads a config file when it changes on disk.
//
// The containing directory is watched rather than the file so editors that
// save by renaming a temporary file are still noticed. Bursts of events are
// coalesced: a reload happens once no event has arrived for the debounce
// interval.
type Watcher struct {
	path     string
	debounce time.Duration
	load     func(path string) (*Config, error)
	logger   *slog.Logger

	fsw     *fsnotify.Watcher
	reloads chan Reload
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLoadFunc replaces Load as the function used to reload the file.
func WithLoadFunc(fn func(path string) (*Config, error)) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.load = fn
		}
	}
}

// WithWatcherLogger sets the logger used for watch errors.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: 100 * time.Millisecond,
		load:     Load,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		reloads:  make(chan Reload, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Reloads returns the channel reloads are delivered on. It is closed when
// the watcher stops.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Close stops the watcher and waits for its goroutine to exit. Calling
// Close more than once returns ErrWatcherClosed.
func (w *Watcher) Close() error {
	err := ErrWatcherClosed
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.reloads)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "path", w.path, "error", err)

		case <-fire:
			fire = nil
			cfg, err := w.load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "path", w.path, "error", err)
			} else {
				w.logger.Info("config reloaded", "path", w.path)
			}
			select {
			case w.reloads <- Reload{Config: cfg, Err: err}:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
