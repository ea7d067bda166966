package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a config file syntax.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Load returns the defaults overridden by the file at path (if any) and
// then by GRIDCORE_ environment variables. The result is validated.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(EnvPrefix, os.Environ()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile returns the defaults overridden by the file at path.
// Settings absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg := Default()
	if err := Decode(cfg, path, format, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data onto cfg. Unknown keys are an error. The source is
// used in error messages only.
func Decode(cfg *Config, source string, format Format, data []byte) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return tomlParseError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves cfg untouched.
		if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return yamlParseError(source, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	return nil
}

func tomlParseError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		pe.Line, pe.Column = serr.Errors[0].Position()
		pe.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
	}
	return pe
}

func yamlParseError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	msg := err.Error()
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		msg = te.Errors[0]
	}
	var line int
	if _, scanErr := fmt.Sscanf(msg, "yaml: line %d:", &line); scanErr == nil {
		pe.Line = line
	} else if _, scanErr := fmt.Sscanf(msg, "line %d:", &line); scanErr == nil {
		pe.Line = line
	}
	return pe
}
