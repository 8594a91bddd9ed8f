package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/dshills/keystrike/internal/config/notify"
	"github.com/dshills/keystrike/internal/storage"
)

// Change sources.
const (
	SourceCommand = "command"
	SourceFile    = "file"
	SourceStorage = "storage"
)

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the change notifier. Defaults to a private one.
func WithNotifier(n *notify.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager holds the registered settings. It is not safe for concurrent
// use; the cycle loop owns it, since setters reach into plugins.
type Manager struct {
	settings map[string]*Setting
	store    storage.Store
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewManager creates a manager persisting to store.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		settings: make(map[string]*Setting),
		store:    store,
		notifier: notify.New(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a setting.
func (m *Manager) Register(s Setting) error {
	if _, exists := m.settings[s.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSetting, s.Name)
	}
	m.settings[s.Name] = &s
	return nil
}

// Lookup returns the setting called name.
func (m *Manager) Lookup(name string) (Setting, bool) {
	s, ok := m.settings[name]
	if !ok {
		return Setting{}, false
	}
	return *s, true
}

// Names returns every setting name, sorted.
func (m *Manager) Names() []string {
	return slices.Sorted(maps.Keys(m.settings))
}

// Get returns the current value of a setting.
func (m *Manager) Get(name string) (string, error) {
	s, ok := m.settings[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	return s.Get(), nil
}

// Set applies a value and stages it for persistence.
func (m *Manager) Set(name, value, source string) error {
	newValue, err := m.apply(name, value, source)
	if err != nil {
		return err
	}
	if err := m.store.Put(name, newValue); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

// Apply applies a value without persisting it, as a reloaded config file
// does.
func (m *Manager) Apply(name, value, source string) error {
	_, err := m.apply(name, value, source)
	return err
}

func (m *Manager) apply(name, value, source string) (string, error) {
	s, ok := m.settings[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	old := s.Get()
	if err := s.Set(value); err != nil {
		return "", fmt.Errorf("set %s: %w", name, err)
	}
	newValue := s.Get()
	if newValue != old {
		m.logger.Info("setting changed",
			"setting", name,
			"old", old,
			"new", newValue,
			"source", source,
		)
	}
	m.notifier.NotifySet(name, old, newValue, source)
	return newValue, nil
}

// ApplyAll applies every known name in values and reports all failures.
// Unknown names are skipped.
func (m *Manager) ApplyAll(values map[string]string, source string) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := m.settings[name]; !ok {
			continue
		}
		if err := m.Apply(name, values[name], source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Restore applies every persisted value. Stored values that no longer
// parse are logged and skipped.
func (m *Manager) Restore() error {
	restored := 0
	for _, name := range m.Names() {
		value, err := m.store.Get(name)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
		if err := m.Apply(name, value, SourceStorage); err != nil {
			m.logger.Warn("ignoring stored setting", "setting", name, "value", value, "error", err)
			continue
		}
		restored++
	}
	m.logger.Debug("settings restored", "count", restored)
	m.notifier.NotifyReload(SourceStorage)
	return nil
}

// Commit persists staged values.
func (m *Manager) Commit() error {
	if err := m.store.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	m.notifier.NotifyCommit(SourceCommand)
	return nil
}

// Notifier returns the change notifier.
func (m *Manager) Notifier() *notify.Notifier {
	return m.notifier
}
