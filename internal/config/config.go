package config

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/dshills/gridcore/internal/renderer/core"
)

// Config is the complete gridcore configuration.
type Config struct {
	Grid  GridConfig  `toml:"grid" yaml:"grid"`
	Style StyleConfig `toml:"style" yaml:"style"`
	Log   LogConfig   `toml:"log" yaml:"log"`
}

// GridConfig holds geometry and rendering settings.
type GridConfig struct {
	// CellWidth and CellHeight are the default cell size in terminal cells.
	CellWidth  float64 `toml:"cell_width" yaml:"cell_width"`
	CellHeight float64 `toml:"cell_height" yaml:"cell_height"`

	// MaxRenderAttempts bounds how often a failing decorator is retried.
	MaxRenderAttempts int `toml:"max_render_attempts" yaml:"max_render_attempts"`

	// ScrollStep is the number of rows a wheel notch scrolls.
	ScrollStep int `toml:"scroll_step" yaml:"scroll_step"`

	// Locale is a BCP 47 tag used to format numbers.
	Locale string `toml:"locale" yaml:"locale"`

	// Decimals is the maximum number of fraction digits shown for floats.
	Decimals int `toml:"decimals" yaml:"decimals"`
}

// StyleConfig holds colors and glyphs used when painting.
type StyleConfig struct {
	// Border is the glyph drawn in cell border columns. Empty leaves
	// borders blank.
	Border string `toml:"border" yaml:"border"`

	// Classes maps element class names to styles.
	Classes map[string]ClassStyle `toml:"classes" yaml:"classes"`
}

// ClassStyle describes the style of one element class. Colors are names
// ("red", "default") or hex strings ("#1e1e2e"). Attrs lists attribute
// names such as "bold" and "underline".
type ClassStyle struct {
	Foreground string   `toml:"fg" yaml:"fg"`
	Background string   `toml:"bg" yaml:"bg"`
	Attrs      []string `toml:"attrs" yaml:"attrs"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
	// File is the log destination. Empty discards logs in interactive mode.
	File string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			CellWidth:         12,
			CellHeight:        1,
			MaxRenderAttempts: 3,
			ScrollStep:        3,
			Locale:            "en",
			Decimals:          2,
		},
		Style: StyleConfig{
			Border: "│",
			Classes: map[string]ClassStyle{
				"grid-cell": {Foreground: "default", Background: "default"},
				"selection": {Foreground: "white", Background: "#264f78", Attrs: []string{"bold"}},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	switch {
	case c.Grid.CellWidth <= 0:
		return &ValidationError{Path: "grid.cell_width", Message: "must be positive"}
	case c.Grid.CellHeight <= 0:
		return &ValidationError{Path: "grid.cell_height", Message: "must be positive"}
	case c.Grid.MaxRenderAttempts < 1:
		return &ValidationError{Path: "grid.max_render_attempts", Message: "must be at least 1"}
	case c.Grid.ScrollStep < 1:
		return &ValidationError{Path: "grid.scroll_step", Message: "must be at least 1"}
	case c.Grid.Decimals < 0:
		return &ValidationError{Path: "grid.decimals", Message: "must not be negative"}
	case utf8.RuneCountInString(c.Style.Border) > 1:
		return &ValidationError{Path: "style.border", Message: "must be a single character"}
	}

	if _, err := c.Grid.Tag(); err != nil {
		return &ValidationError{Path: "grid.locale", Message: err.Error()}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return &ValidationError{Path: "log.level", Message: err.Error()}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return &ValidationError{Path: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if _, err := c.Style.Styles(); err != nil {
		return err
	}
	return nil
}

// Tag returns the parsed locale.
func (g GridConfig) Tag() (language.Tag, error) {
	if g.Locale == "" {
		return language.English, nil
	}
	return language.Parse(g.Locale)
}

// BorderRune returns the border glyph, or zero when borders are blank.
func (s StyleConfig) BorderRune() rune {
	if s.Border == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.Border)
	return r
}

// Styles parses every class style.
func (s StyleConfig) Styles() (map[string]core.Style, error) {
	out := make(map[string]core.Style, len(s.Classes))
	for class, cs := range s.Classes {
		style, err := cs.Style()
		if err != nil {
			return nil, &ValidationError{Path: "style.classes." + class, Message: err.Error()}
		}
		out[class] = style
	}
	return out, nil
}

// Style converts the class style to a render style. Empty colors keep the
// terminal default.
func (cs ClassStyle) Style() (core.Style, error) {
	style := core.DefaultStyle()
	if cs.Foreground != "" {
		fg, err := core.ParseColor(cs.Foreground)
		if err != nil {
			return style, fmt.Errorf("fg: %w", err)
		}
		style = style.WithForeground(fg)
	}
	if cs.Background != "" {
		bg, err := core.ParseColor(cs.Background)
		if err != nil {
			return style, fmt.Errorf("bg: %w", err)
		}
		style = style.WithBackground(bg)
	}
	attrs, err := core.ParseAttributes(cs.Attrs...)
	if err != nil {
		return style, fmt.Errorf("attrs: %w", err)
	}
	return style.With(attrs), nil
}

// SlogLevel parses Level. An empty level is info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", l.Level)
	}
}
