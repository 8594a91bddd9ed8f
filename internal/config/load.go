package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up in the user config directory.
const DefaultFileName = "keystrike.toml"

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "keystrike", DefaultFileName)
}

// Load builds the configuration from defaults, the file at path (skipped
// when it does not exist) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ uses the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, bytes.NewReader(data), cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads TOML from r on top of the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode("<reader>", r, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals TOML into cfg. Unknown keys are errors.
func decode(source string, r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}

	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr):
		var unknown []string
		for _, e := range strictErr.Errors {
			unknown = append(unknown, strings.Join(e.Key(), "."))
		}
		pe.Message = "unknown keys: " + strings.Join(unknown, ", ")
		if len(strictErr.Errors) > 0 {
			pe.Line, pe.Column = strictErr.Errors[0].Position()
		}
	}
	return pe
}

// ApplyEnv overrides cfg with KEYSTRIKE_* variables. A nil environ uses the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
