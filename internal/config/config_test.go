package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/gridcore/internal/renderer/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Style.BorderRune() != '│' {
		t.Errorf("BorderRune() = %q", cfg.Style.BorderRune())
	}
	styles, err := cfg.Style.Styles()
	if err != nil {
		t.Fatal(err)
	}
	sel, ok := styles["selection"]
	if !ok {
		t.Fatal("default styles should include selection")
	}
	if !sel.Attributes.Has(core.AttrBold) || sel.Background.IsDefault() {
		t.Errorf("selection style = %+v", sel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"cell width", func(c *Config) { c.Grid.CellWidth = 0 }, "grid.cell_width"},
		{"cell height", func(c *Config) { c.Grid.CellHeight = -1 }, "grid.cell_height"},
		{"attempts", func(c *Config) { c.Grid.MaxRenderAttempts = 0 }, "grid.max_render_attempts"},
		{"scroll step", func(c *Config) { c.Grid.ScrollStep = 0 }, "grid.scroll_step"},
		{"decimals", func(c *Config) { c.Grid.Decimals = -2 }, "grid.decimals"},
		{"border", func(c *Config) { c.Style.Border = "||" }, "style.border"},
		{"locale", func(c *Config) { c.Grid.Locale = "not a locale!" }, "grid.locale"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"class color", func(c *Config) {
			c.Style.Classes["bad"] = ClassStyle{Foreground: "notacolor"}
		}, "style.classes.bad"},
		{"class attrs", func(c *Config) {
			c.Style.Classes["blinky"] = ClassStyle{Attrs: []string{"blink"}}
		}, "style.classes.blinky"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Errorf("Path = %q, want %q", verr.Path, tt.path)
			}
			if !errors.Is(err, ErrInvalidValue) {
				t.Error("should wrap ErrInvalidValue")
			}
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"", "INFO"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{" error ", "ERROR"},
	}
	for _, tt := range tests {
		lvl, err := LogConfig{Level: tt.in}.SlogLevel()
		if err != nil || lvl.String() != tt.want {
			t.Errorf("SlogLevel(%q) = %v, %v; want %s", tt.in, lvl, err, tt.want)
		}
	}
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "gridcore.toml", `
[grid]
cell_width = 8
locale = "de"

[style]
border = "|"

[style.classes.header]
fg = "yellow"
attrs = ["bold"]

[log]
level = "debug"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if cfg.Grid.CellWidth != 8 || cfg.Grid.Locale != "de" {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Grid.CellHeight != 1 || cfg.Grid.ScrollStep != 3 {
		t.Error("settings absent from the file should keep their defaults")
	}
	if cfg.Style.BorderRune() != '|' {
		t.Errorf("border = %q", cfg.Style.Border)
	}
	if h := cfg.Style.Classes["header"]; h.Foreground != "yellow" || len(h.Attrs) != 1 {
		t.Errorf("header class = %+v", h)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "gridcore.yml", `
grid:
  cell_height: 2
  decimals: 0
log:
  format: json
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if cfg.Grid.CellHeight != 2 || cfg.Grid.Decimals != 0 || cfg.Log.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Grid.CellWidth != 12 {
		t.Errorf("CellWidth = %v, want default 12", cfg.Grid.CellWidth)
	}
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	path := writeFile(t, "gridcore.yaml", "\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if cfg.Grid.CellWidth != Default().Grid.CellWidth {
		t.Error("empty file should yield defaults")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine bool
	}{
		{"toml syntax", "c.toml", "[grid\ncell_width = 1\n", true},
		{"toml unknown key", "c.toml", "[grid]\ncell_widht = 1\n", true},
		{"toml type", "c.toml", "[grid]\ncell_width = \"wide\"\n", false},
		{"yaml syntax", "c.yaml", "grid:\n  cell_width: [1\n", true},
		{"yaml unknown key", "c.yaml", "grid:\n  bogus: 1\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadFile(path)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("LoadFile() = %v, want ParseError", err)
			}
			if pe.Path != path {
				t.Errorf("Path = %q, want %q", pe.Path, path)
			}
			if tt.wantLine && pe.Line == 0 {
				t.Errorf("expected a line number in %v", pe)
			}
			if pe.Unwrap() == nil {
				t.Error("ParseError should wrap the decoder error")
			}
		})
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "gridcore.ini", "x=1")
	if _, err := LoadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFile() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() = %v, want not-exist", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "gridcore.toml", "[grid]\ncell_width = 8\n")
	t.Setenv("GRIDCORE_GRID_CELL_WIDTH", "20")
	t.Setenv("GRIDCORE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Grid.CellWidth != 20 {
		t.Errorf("CellWidth = %v, want 20", cfg.Grid.CellWidth)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_Validates(t *testing.T) {
	t.Setenv("GRIDCORE_GRID_SCROLL_STEP", "0")
	if _, err := Load(""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Load() = %v, want ErrInvalidValue", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv("GRIDCORE_", []string{
		"GRIDCORE_GRID_CELL_HEIGHT=2.5",
		"GRIDCORE_GRID_DECIMALS=4",
		"GRIDCORE_STYLE_BORDER=",
		"GRIDCORE_UNKNOWN_THING=1",
		"OTHER_GRID_CELL_WIDTH=99",
		"malformed",
	})
	if err != nil {
		t.Fatalf("ApplyEnv() = %v", err)
	}
	if cfg.Grid.CellHeight != 2.5 || cfg.Grid.Decimals != 4 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Style.BorderRune() != 0 {
		t.Error("empty value should be applied")
	}
	if cfg.Grid.CellWidth != 12 {
		t.Error("variables without the prefix should be ignored")
	}
}

func TestApplyEnv_Errors(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv("GRIDCORE_", []string{
		"GRIDCORE_GRID_CELL_WIDTH=wide",
		"GRIDCORE_GRID_SCROLL_STEP=x",
		"GRIDCORE_GRID_DECIMALS=1",
	})
	var envErr *EnvError
	if !errors.As(err, &envErr) {
		t.Fatalf("ApplyEnv() = %v, want EnvError", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("want both invalid variables reported, got %v", err)
	}
	if cfg.Grid.Decimals != 1 {
		t.Error("valid variables should still be applied")
	}
}

func TestEnvPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"GRIDCORE_GRID_CELL_WIDTH", "grid.cell_width"},
		{"GRIDCORE_LOG_LEVEL", "log.level"},
		{"GRIDCORE_STYLE", "style"},
	}
	for _, tt := range tests {
		if got := EnvPath("GRIDCORE_", tt.name); got != tt.want {
			t.Errorf("EnvPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"a.TOML", FormatTOML},
		{"a.yaml", FormatYAML},
		{"dir/a.yml", FormatYAML},
		{"a.json", FormatUnknown},
		{"toml", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := writeFile(t, "gridcore.toml", "[grid]\ncell_width = 8\n")

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond), WithLoadFunc(LoadFile))
	if err != nil {
		t.Fatalf("NewWatcher() = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[grid]\ncell_width = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-w.Reloads():
		if r.Err != nil {
			t.Fatalf("reload error = %v", r.Err)
		}
		if r.Config.Grid.CellWidth != 9 {
			t.Errorf("CellWidth = %v, want 9", r.Config.Grid.CellWidth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the file")
	}
}

func TestWatcher_ReportsBadFile(t *testing.T) {
	path := writeFile(t, "gridcore.toml", "")

	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond), WithLoadFunc(LoadFile))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[grid\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-w.Reloads():
		var pe *ParseError
		if !errors.As(r.Err, &pe) {
			t.Errorf("reload error = %v, want ParseError", r.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the file")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	path := writeFile(t, "gridcore.toml", "")

	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond), WithLoadFunc(LoadFile))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	other := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(other, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-w.Reloads():
		t.Errorf("unexpected reload %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Close(t *testing.T) {
	path := writeFile(t, "gridcore.toml", "")
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if _, ok := <-w.Reloads(); ok {
		t.Error("Reloads channel should be closed")
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() = %v, want ErrWatcherClosed", err)
	}
}
