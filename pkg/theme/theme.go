package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// Theme is the visual theme flag.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// DefaultKey is the persisted key of the theme flag.
const DefaultKey = "theme"

// Parse validates a stored theme value.
func Parse(value string) (t Theme, err error) {
	switch Theme(value) {
	case Light, Dark:
		t = Theme(value)
		return t, err
	default:
		err = errors.Errorf("invalid theme %q: must be 'light' or 'dark'", value)
		return t, err
	}
}

// Opposite returns the other theme.
func (t Theme) Opposite() (other Theme) {
	if t == Dark {
		other = Light
		return other
	}
	other = Dark
	return other
}

// Store is a persisted key-value store.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) (err error)
}

// Root is the visual root the active theme is reflected onto.
type Root interface {
	SetTheme(t Theme)
}

// Manager reads, toggles and reflects the theme flag.
// The displayed theme is authoritative; persisting it is best-effort.
type Manager struct {
	store    Store
	root     Root
	key      string
	palettes Palettes
	logger   *slog.Logger

	mu      sync.Mutex
	current Theme
	applied bool
}

// NewManager creates a theme manager. A nil root is allowed for headless use.
func NewManager(store Store, root Root, palettes Palettes, logger *slog.Logger) (m *Manager) {
	if logger == nil {
		logger = slog.Default()
	}
	m = &Manager{
		store:    store,
		root:     root,
		key:      DefaultKey,
		palettes: palettes.WithDefaults(),
		logger:   logger,
	}
	return m
}

// Get returns the persisted theme, defaulting to Light when unset or unreadable.
func (m *Manager) Get(ctx context.Context) (t Theme) {
	value, found, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.logger.Warn("failed to read theme, using light", slog.Any("error", err))
		t = Light
		return t
	}
	if !found {
		t = Light
		return t
	}

	t, err = Parse(value)
	if err != nil {
		m.logger.Warn("ignoring stored theme", slog.String("value", value), slog.Any("error", err))
		t = Light
	}
	return t
}

// Apply reads the persisted theme and reflects it onto the root.
func (m *Manager) Apply(ctx context.Context) (t Theme) {
	t = m.Get(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.show(t)
	return t
}

// Current returns the displayed theme, reading the store if nothing has been applied yet.
func (m *Manager) Current(ctx context.Context) (t Theme) {
	m.mu.Lock()
	current, applied := m.current, m.applied
	m.mu.Unlock()

	if applied {
		t = current
		return t
	}
	t = m.Get(ctx)
	return t
}

// Toggle flips the displayed theme, applies it to the root and persists it.
// The root is updated even when persisting fails, and later toggles flip from what is shown.
func (m *Manager) Toggle(ctx context.Context) (next Theme, err error) {
	start := m.Current(ctx)

	m.mu.Lock()
	if m.applied {
		start = m.current
	}
	next = start.Opposite()
	m.show(next)
	m.mu.Unlock()

	err = m.store.Set(ctx, m.key, string(next))
	if err != nil {
		err = errors.Wrap(err, "failed to persist theme")
		return next, err
	}

	m.logger.Debug("theme toggled", slog.String("theme", string(next)))
	return next, err
}

// Palette returns the colors of the displayed theme, read at call time.
func (m *Manager) Palette(ctx context.Context) (p Palette) {
	p = m.palettes.For(m.Current(ctx))
	return p
}

// show records t as displayed. Callers hold mu.
func (m *Manager) show(t Theme) {
	m.current = t
	m.applied = true
	if m.root != nil {
		m.root.SetTheme(t)
	}
}
