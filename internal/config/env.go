package config

import (
	"errors"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GRIDCORE_"

// envSetter applies a raw environment value to one setting.
type envSetter func(c *Config, value string) error

// envSettings maps setting paths to their setters.
var envSettings = map[string]envSetter{
	"grid.cell_width":          floatSetting(func(c *Config) *float64 { return &c.Grid.CellWidth }),
	"grid.cell_height":         floatSetting(func(c *Config) *float64 { return &c.Grid.CellHeight }),
	"grid.max_render_attempts": intSetting(func(c *Config) *int { return &c.Grid.MaxRenderAttempts }),
	"grid.scroll_step":         intSetting(func(c *Config) *int { return &c.Grid.ScrollStep }),
	"grid.locale":              stringSetting(func(c *Config) *string { return &c.Grid.Locale }),
	"grid.decimals":            intSetting(func(c *Config) *int { return &c.Grid.Decimals }),
	"style.border":             stringSetting(func(c *Config) *string { return &c.Style.Border }),
	"log.level":                stringSetting(func(c *Config) *string { return &c.Log.Level }),
	"log.format":               stringSetting(func(c *Config) *string { return &c.Log.Format }),
	"log.file":                 stringSetting(func(c *Config) *string { return &c.Log.File }),
}

// ApplyEnv overrides settings from environment entries of the form
// "KEY=value". Only keys starting with prefix are considered; the rest of
// the key names the setting, GRIDCORE_GRID_CELL_WIDTH setting
// grid.cell_width. Unknown keys are ignored. Empty values are applied.
// All invalid values are reported together.
func (c *Config) ApplyEnv(prefix string, environ []string) error {
	var errs []error
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		set, ok := envSettings[EnvPath(prefix, name)]
		if !ok {
			continue
		}
		if err := set(c, value); err != nil {
			errs = append(errs, &EnvError{Name: name, Value: value, Err: err})
		}
	}
	return errors.Join(errs...)
}

// EnvPath converts GRIDCORE_GRID_CELL_WIDTH to grid.cell_width. The first
// segment after the prefix is the section.
func EnvPath(prefix, name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

func stringSetting(field func(*Config) *string) envSetter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

func intSetting(field func(*Config) *int) envSetter {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatSetting(field func(*Config) *float64) envSetter {
	return func(c *Config, value string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}
