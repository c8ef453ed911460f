package theme

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type recordingRoot struct {
	theme Theme
	calls int
}

func (r *recordingRoot) SetTheme(t Theme) {
	r.theme = t
	r.calls++
}

type failingStore struct {
	MemoryStore
}

func (s *failingStore) Set(_ context.Context, _, _ string) (err error) {
	err = errors.New("disk full")
	return err
}

func TestParse(t *testing.T) {
	tests := []struct {
		input     string
		expected  Theme
		wantError bool
	}{
		{input: "light", expected: Light},
		{input: "dark", expected: Dark},
		{input: "Dark", wantError: true},
		{input: "", wantError: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantError && err == nil {
			t.Errorf("Parse(%q): expected error, got nil", tt.input)
		}
		if !tt.wantError && got != tt.expected {
			t.Errorf("Parse(%q): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestGetDefaultsToLight(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), nil, Palettes{}, nil)

	if m.Get(ctx) != Light {
		t.Errorf("Expected light default, got %s", m.Get(ctx))
	}
}

func TestGetIgnoresInvalidValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, DefaultKey, "purple")

	m := NewManager(store, nil, Palettes{}, nil)
	if m.Get(ctx) != Light {
		t.Errorf("Expected light for invalid stored value, got %s", m.Get(ctx))
	}
}

func TestToggleDoubleIsIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	root := &recordingRoot{}
	m := NewManager(store, root, Palettes{}, nil)

	start := m.Apply(ctx)

	first, err := m.Toggle(ctx)
	if err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}
	if first != start.Opposite() {
		t.Errorf("Expected %s after one toggle, got %s", start.Opposite(), first)
	}
	assertPersistedMatchesRoot(t, store, root)

	second, err := m.Toggle(ctx)
	if err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}
	if second != start {
		t.Errorf("Expected %s after double toggle, got %s", start, second)
	}
	assertPersistedMatchesRoot(t, store, root)
}

func assertPersistedMatchesRoot(t *testing.T, store Store, root *recordingRoot) {
	t.Helper()
	value, found, err := store.Get(context.Background(), DefaultKey)
	if err != nil || !found {
		t.Fatalf("Expected persisted theme, found=%v err=%v", found, err)
	}
	if Theme(value) != root.theme {
		t.Errorf("Persisted theme %s does not match root %s", value, root.theme)
	}
}

func TestToggleAppliesEvenWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: MemoryStore{values: map[string]string{}}}
	root := &recordingRoot{}
	m := NewManager(store, root, Palettes{}, nil)

	next, err := m.Toggle(ctx)
	if err == nil {
		t.Error("Expected persistence error, got nil")
	}
	if next != Dark || root.theme != Dark {
		t.Errorf("Expected root to show dark, got next=%s root=%s", next, root.theme)
	}
}

func TestToggleFlipsDisplayedThemeWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: MemoryStore{values: map[string]string{}}}
	root := &recordingRoot{}
	m := NewManager(store, root, Palettes{}, nil)
	m.Apply(ctx)

	tests := []struct {
		expected Theme
		bg       string
	}{
		{expected: Dark, bg: DefaultPalettes().Dark.Background},
		{expected: Light, bg: DefaultPalettes().Light.Background},
		{expected: Dark, bg: DefaultPalettes().Dark.Background},
	}

	for i, tt := range tests {
		next, err := m.Toggle(ctx)
		if err == nil {
			t.Errorf("toggle %d: expected persistence error, got nil", i)
		}
		if next != tt.expected || root.theme != tt.expected {
			t.Errorf("toggle %d: expected %s, got next=%s root=%s", i, tt.expected, next, root.theme)
		}
		if m.Current(ctx) != root.theme {
			t.Errorf("toggle %d: current %s does not match root %s", i, m.Current(ctx), root.theme)
		}
		if got := m.Palette(ctx).Background; got != tt.bg {
			t.Errorf("toggle %d: expected palette background %s, got %s", i, tt.bg, got)
		}
	}
}

func TestPaletteFollowsTheme(t *testing.T) {
	ctx := context.Background()
	custom := Palettes{Dark: Palette{Background: "#000000"}}
	m := NewManager(NewMemoryStore(), nil, custom, nil)

	light := m.Palette(ctx)
	if light != DefaultPalettes().Light {
		t.Errorf("Expected default light palette, got %+v", light)
	}

	_, err := m.Toggle(ctx)
	if err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}

	dark := m.Palette(ctx)
	if dark.Background != "#000000" {
		t.Errorf("Expected configured dark background, got %s", dark.Background)
	}
	if dark.Text != DefaultPalettes().Dark.Text {
		t.Errorf("Expected default dark text color, got %s", dark.Text)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, found, err := store.Get(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("Failed to read missing file: %v", err)
	}
	if found {
		t.Error("Expected key not found before first write")
	}

	err = store.Set(ctx, DefaultKey, "dark")
	if err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	err = store.Set(ctx, "other", "kept")
	if err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	// A second store on the same file sees the values.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}

	value, found, err := reopened.Get(ctx, DefaultKey)
	if err != nil || !found || value != "dark" {
		t.Errorf("Expected dark, got value=%q found=%v err=%v", value, found, err)
	}

	value, _, _ = reopened.Get(ctx, "other")
	if value != "kept" {
		t.Errorf("Expected other key kept, got %q", value)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	err := os.WriteFile(path, []byte("{not json"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, _, err = store.Get(context.Background(), DefaultKey)
	if err == nil {
		t.Error("Expected error for corrupt state file, got nil")
	}

	// The manager degrades to light instead of failing.
	m := NewManager(store, nil, Palettes{}, nil)
	if m.Get(context.Background()) != Light {
		t.Error("Expected light for unreadable store")
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	if err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RESUME_MATCHER_TEST_REDIS")
	if addr == "" {
		t.Skip("RESUME_MATCHER_TEST_REDIS not set, skipping redis test")
	}

	ctx := context.Background()
	client, err := DialRedis(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	store := NewRedisStore(client, "resume-matcher-test:")
	_ = client.Del(ctx, "resume-matcher-test:"+DefaultKey).Err()

	_, found, err := store.Get(ctx, DefaultKey)
	if err != nil || found {
		t.Fatalf("Expected missing key, found=%v err=%v", found, err)
	}

	err = store.Set(ctx, DefaultKey, "dark")
	if err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	value, found, err := store.Get(ctx, DefaultKey)
	if err != nil || !found || value != "dark" {
		t.Errorf("Expected dark, got value=%q found=%v err=%v", value, found, err)
	}
}
