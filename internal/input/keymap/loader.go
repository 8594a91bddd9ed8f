package keymap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/keystrike/internal/input/key"
)

// Loader loads keymaps from YAML files.
type Loader struct {
	// searchPaths are directories to search for keymap files.
	searchPaths []string
}

// NewLoader creates a new keymap loader.
func NewLoader() *Loader {
	return &Loader{
		searchPaths: make([]string, 0),
	}
}

// AddSearchPath adds a directory to search for keymap files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// LoadFile loads a keymap from a YAML file.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keymap file: %w", err)
	}
	defer f.Close()

	km, err := l.LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// LoadReader loads a keymap from a reader.
func (l *Loader) LoadReader(r io.Reader) (*Keymap, error) {
	var config Config
	if err := yaml.NewDecoder(r).Decode(&config); err != nil {
		return nil, fmt.Errorf("decoding keymap: %w", err)
	}
	return config.Build()
}

// LoadAll loads every *.yaml and *.yml keymap from the search paths.
// Files that fail to load are reported together; the rest are returned.
func (l *Loader) LoadAll() ([]*Keymap, error) {
	keymaps := make([]*Keymap, 0)
	var errs []error

	for _, dir := range l.searchPaths {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				continue
			}
			for _, path := range matches {
				km, err := l.LoadFile(path)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				keymaps = append(keymaps, km)
			}
		}
	}

	return keymaps, errors.Join(errs...)
}

// Config is the file form of a keymap. It is shared by the YAML loader
// and the TOML application config.
type Config struct {
	Name   string        `yaml:"name" toml:"name"`
	Rows   uint8         `yaml:"rows" toml:"rows"`
	Cols   uint8         `yaml:"cols" toml:"cols"`
	Layers []LayerConfig `yaml:"layers" toml:"layers"`
}

// LayerConfig is one layer, one string per matrix row.
type LayerConfig struct {
	Name string   `yaml:"name" toml:"name"`
	Rows []string `yaml:"rows" toml:"rows"`
}

// Build parses every key and assembles the keymap.
func (c Config) Build() (*Keymap, error) {
	if c.Rows == 0 || c.Cols == 0 {
		return nil, fmt.Errorf("keymap %q: matrix must have rows and cols", c.Name)
	}
	if len(c.Layers) == 0 {
		return nil, fmt.Errorf("keymap %q: no layers", c.Name)
	}

	km := New(c.Name, key.Matrix{Rows: c.Rows, Cols: c.Cols})
	for li, lc := range c.Layers {
		keys, err := parseRows(lc.Rows, c.Rows, c.Cols)
		if err != nil {
			return nil, fmt.Errorf("keymap %q layer %d (%s): %w", c.Name, li, lc.Name, err)
		}
		if _, err := km.AddLayer(lc.Name, keys); err != nil {
			return nil, err
		}
	}
	return km, nil
}

func parseRows(rows []string, nrows, ncols uint8) ([]key.Key, error) {
	if len(rows) > int(nrows) {
		return nil, fmt.Errorf("%w: %d rows, matrix has %d", ErrLayerSize, len(rows), nrows)
	}

	keys := make([]key.Key, int(nrows)*int(ncols))
	for i := range keys {
		keys[i] = key.Transparent
	}
	for r, row := range rows {
		fields := strings.Fields(row)
		if len(fields) > int(ncols) {
			return nil, fmt.Errorf("%w: row %d has %d keys, matrix has %d cols", ErrLayerSize, r, len(fields), ncols)
		}
		for c, spec := range fields {
			k, err := key.Parse(spec)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			keys[r*int(ncols)+c] = k
		}
	}
	return keys, nil
}
