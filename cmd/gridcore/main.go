// Package main is the entry point for the gridcore terminal grid viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/gridcore/internal/app"
	"github.com/dshills/gridcore/internal/config"
	"github.com/dshills/gridcore/internal/model"
	"github.com/dshills/gridcore/internal/renderer/backend"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath string
	dataPath   string
	logLevel   string
	watch      bool
	snapshot   bool
	width      int
	height     int
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fail("%v", err)
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	interactive := !f.snapshot && term.IsTerminal(int(os.Stdout.Fd()))

	// The terminal owns stdout while the grid runs
	var fallback io.Writer = os.Stderr
	if interactive {
		fallback = nil
	}
	logger, closer, err := app.OpenLogger(cfg.Log, fallback)
	if err != nil {
		return fail("%v", err)
	}
	defer closer.Close()

	table, err := loadTable(cfg, f.dataPath)
	if err != nil {
		return fail("%v", err)
	}

	application, err := app.New(app.Options{
		ConfigPath: f.configPath,
		Config:     cfg,
		Watch:      f.watch,
		Table:      table,
		Logger:     logger,
	})
	if err != nil {
		return fail("init: %v", err)
	}
	defer application.Shutdown()

	if !interactive {
		return snapshot(application, f.width, f.height)
	}

	screen, err := backend.NewTerminal()
	if err != nil {
		return fail("terminal: %v", err)
	}
	if err := application.SetBackend(screen); err != nil {
		return fail("terminal: %v", err)
	}

	// SIGINT outside raw mode and SIGTERM end Run like the quit key
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil && !errors.Is(err, app.ErrQuit) {
		return fail("%v", err)
	}
	return 0
}

// loadTable reads a JSON table from path, or stdin for "-". An empty path
// yields an empty table.
func loadTable(cfg *config.Config, path string) (*model.Table, error) {
	opts, err := app.TableOptions(cfg)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return model.NewTable(nil, opts...), nil
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	table, err := model.FromJSON(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// snapshot draws one frame into an in-memory screen and prints it.
func snapshot(application *app.Application, width, height int) int {
	grid := application.Grid()
	screen := backend.NewNullBackend(width, height)
	if err := grid.Mount(width, height); err != nil {
		return fail("%v", err)
	}
	for range 8 {
		if grid.Tick() == 0 {
			break
		}
	}
	grid.Paint(screen)
	fmt.Println(screen.String())
	return 0
}

// fail reports an error on stderr and returns the exit status for run.
func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "gridcore: "+format+"\n", args...)
	return 1
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.dataPath, "data", "", "JSON file with the table data, - for stdin")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&f.snapshot, "snapshot", false, "Print one frame to stdout and exit")
	flag.IntVar(&f.width, "cols", 80, "Snapshot width in terminal columns")
	flag.IntVar(&f.height, "rows", 24, "Snapshot height in terminal rows")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridcore - terminal data grid\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridcore [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridcore -data rows.json             Browse a table\n")
		fmt.Fprintf(os.Stderr, "  gridcore -c grid.toml -watch -data x Reload styles on save\n")
		fmt.Fprintf(os.Stderr, "  cat rows.json | gridcore -data - -snapshot -cols 40\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gridcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch f.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		os.Exit(fail("invalid log level %q (must be debug, info, warn, or error)", f.logLevel))
	}

	return f
}
