package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/led"
	"github.com/dshills/keystrike/internal/plugin/autoshift"
	"github.com/dshills/keystrike/internal/plugin/holdtap"
	"github.com/dshills/keystrike/internal/plugin/macros"
	"github.com/dshills/keystrike/internal/plugin/multitap"
	"github.com/dshills/keystrike/internal/plugin/rapidfire"
	"github.com/dshills/keystrike/internal/plugin/syster"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "KEYSTRIKE_"

// Config is the complete configuration.
type Config struct {
	Log       LogConfig       `toml:"log" envPrefix:"LOG_"`
	Runtime   RuntimeConfig   `toml:"runtime" envPrefix:"RUNTIME_"`
	Keymap    KeymapConfig    `toml:"keymap" envPrefix:"KEYMAP_"`
	Storage   StorageConfig   `toml:"storage" envPrefix:"STORAGE_"`
	Metrics   MetricsConfig   `toml:"metrics" envPrefix:"METRICS_"`
	AutoShift AutoShiftConfig `toml:"autoshift" envPrefix:"AUTOSHIFT_"`
	HoldTap   HoldTapConfig   `toml:"holdtap" envPrefix:"HOLDTAP_"`
	MultiTap  MultiTapConfig  `toml:"multitap" envPrefix:"MULTITAP_"`
	RapidFire RapidFireConfig `toml:"rapidfire" envPrefix:"RAPIDFIRE_"`
	Syster    SysterConfig    `toml:"syster" envPrefix:"SYSTER_"`
	Macros    MacrosConfig    `toml:"macros" envPrefix:"MACROS_"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
}

// RuntimeConfig configures the cycle loop.
type RuntimeConfig struct {
	// TickMS is the scan cycle period in milliseconds.
	TickMS   uint16 `toml:"tick_ms" env:"TICK_MS"`
	MaxDepth int    `toml:"max_depth" env:"MAX_DEPTH"`
}

// KeymapConfig selects the keymap.
type KeymapConfig struct {
	// File is a YAML keymap. Empty selects the built-in layout.
	File string `toml:"file" env:"FILE"`
}

// StorageConfig selects the settings store.
type StorageConfig struct {
	// Path is a SQLite database. Empty keeps settings in memory.
	Path string `toml:"path" env:"PATH"`
}

// MetricsConfig configures OpenTelemetry metrics.
type MetricsConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`

	// Global records on the process-wide provider set with
	// otel.SetMeterProvider instead of an in-process one.
	Global bool `toml:"global" env:"GLOBAL"`
}

// AutoShiftConfig configures the auto-shift resolver.
type AutoShiftConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Timeout uint16 `toml:"timeout" env:"TIMEOUT"`
	Classes string `toml:"classes" env:"CLASSES"`
}

// HoldTapConfig configures the hold-tap resolver.
type HoldTapConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Timeout uint16 `toml:"timeout" env:"TIMEOUT"`
	// Map lists bindings as "Input:Output[:ms]".
	Map string `toml:"map" env:"MAP"`
}

// MultiTapConfig configures the multi-tap resolver.
type MultiTapConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Timeout uint16 `toml:"timeout" env:"TIMEOUT"`
	// Script is a Lua behavior. When set it replaces Table.
	Script   string `toml:"script" env:"SCRIPT"`
	Function string `toml:"function" env:"FUNCTION"`
	// Table maps a multi-tap index to the keys of one, two, three... taps.
	Table map[string][]string `toml:"table"`
}

// RapidFireConfig configures the rapid-fire generator.
type RapidFireConfig struct {
	Interval      uint16 `toml:"interval" env:"INTERVAL"`
	FlashInterval uint16 `toml:"flash_interval" env:"FLASH_INTERVAL"`
	Sticky        bool   `toml:"sticky" env:"STICKY"`
	Flash         bool   `toml:"flash" env:"FLASH"`
	ActiveColor   string `toml:"active_color" env:"ACTIVE_COLOR"`
}

// SysterConfig configures symbol input.
type SysterConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
	// Table maps a symbol to the keys tapped when it is typed.
	Table map[string][]string `toml:"table"`
}

// MacrosConfig configures the macro player.
type MacrosConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
	// Table maps a macro id to its steps, such as "tap Enter" or "type hi".
	Table map[string][]string `toml:"table"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Runtime: RuntimeConfig{TickMS: 1, MaxDepth: 16},
		AutoShift: AutoShiftConfig{
			Enabled: true,
			Timeout: autoshift.DefaultTimeout,
			Classes: autoshift.AllClasses.String(),
		},
		HoldTap: HoldTapConfig{
			Enabled: true,
			Timeout: holdtap.DefaultTimeout,
			Map:     holdtap.FormatBindings(holdtap.DefaultBindings()),
		},
		MultiTap: MultiTapConfig{
			Enabled: true,
			Timeout: multitap.DefaultTimeout,
			Table: map[string][]string{
				"0": {"A", "B", "C"},
				"1": {"Escape", "Tab"},
			},
		},
		RapidFire: RapidFireConfig{
			Interval:      rapidfire.DefaultInterval,
			FlashInterval: rapidfire.DefaultFlashInterval,
			Flash:         true,
			ActiveColor:   rapidfire.DefaultActiveColor.String(),
		},
		Syster: SysterConfig{Enabled: true},
		Macros: MacrosConfig{Enabled: true},
	}
}

// Validate checks every value that needs parsing and reports all problems.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, &ValidationError{Field: field, Err: err})
		}
	}

	_, err := c.Log.SlogLevel()
	add("log.level", err)
	if c.Runtime.TickMS == 0 {
		add("runtime.tick_ms", errors.New("must be positive"))
	}
	if c.Runtime.MaxDepth <= 0 {
		add("runtime.max_depth", errors.New("must be positive"))
	}
	_, err = c.AutoShift.ClassMask()
	add("autoshift.classes", err)
	_, err = c.HoldTap.Bindings()
	add("holdtap.map", err)
	_, err = c.MultiTap.TableBehavior()
	add("multitap.table", err)
	if c.RapidFire.Interval == 0 {
		add("rapidfire.interval", errors.New("must be positive"))
	}
	_, err = c.RapidFire.Color()
	add("rapidfire.active_color", err)
	_, err = c.Syster.TableBehavior()
	add("syster.table", err)
	_, err = c.Macros.TableBehavior()
	add("macros.table", err)

	return errors.Join(errs...)
}

// SlogLevel parses the level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", l.Level)
	}
	return level, nil
}

// ClassMask parses the class list.
func (a AutoShiftConfig) ClassMask() (autoshift.Class, error) {
	return autoshift.ParseClass(a.Classes)
}

// Bindings parses the binding table.
func (h HoldTapConfig) Bindings() ([]holdtap.Binding, error) {
	return holdtap.ParseBindings(h.Map)
}

// TableBehavior parses the multi-tap table.
func (m MultiTapConfig) TableBehavior() (multitap.TableBehavior, error) {
	table := make(multitap.TableBehavior, len(m.Table))
	for _, idx := range slices.Sorted(maps.Keys(m.Table)) {
		n, err := strconv.ParseUint(strings.TrimSpace(idx), 10, 7)
		if err != nil {
			return nil, fmt.Errorf("index %q: must be 0-127", idx)
		}
		names := m.Table[idx]
		if len(names) == 0 {
			return nil, fmt.Errorf("index %s: no keys", idx)
		}
		keys := make([]key.Key, 0, len(names))
		for _, name := range names {
			k, err := key.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("index %s: %w", idx, err)
			}
			keys = append(keys, k)
		}
		table[uint8(n)] = keys
	}
	return table, nil
}

// Color parses the flash color.
func (r RapidFireConfig) Color() (led.Color, error) {
	return led.ParseColor(r.ActiveColor)
}

// TableBehavior parses the symbol table.
func (s SysterConfig) TableBehavior() (syster.TableBehavior, error) {
	table := make(syster.TableBehavior, len(s.Table))
	for _, symbol := range slices.Sorted(maps.Keys(s.Table)) {
		for _, r := range symbol {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return nil, fmt.Errorf("symbol %q: only a-z and 0-9", symbol)
			}
		}
		if symbol == "" || len(symbol) > syster.MaxSymbolLength {
			return nil, fmt.Errorf("symbol %q: length must be 1-%d", symbol, syster.MaxSymbolLength)
		}
		keys := make([]key.Key, 0, len(s.Table[symbol]))
		for _, name := range s.Table[symbol] {
			k, err := key.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("symbol %s: %w", symbol, err)
			}
			keys = append(keys, k)
		}
		table[symbol] = keys
	}
	return table, nil
}

// TableBehavior parses the macro table.
func (m MacrosConfig) TableBehavior() (macros.TableBehavior, error) {
	table := make(macros.TableBehavior, len(m.Table))
	for _, id := range slices.Sorted(maps.Keys(m.Table)) {
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 8)
		if err != nil || int(n) >= key.MaxMacro {
			return nil, fmt.Errorf("macro %q: must be 0-%d", id, key.MaxMacro-1)
		}
		macro, err := macros.ParseMacro(m.Table[id])
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", id, err)
		}
		table[uint8(n)] = macro
	}
	return table, nil
}
