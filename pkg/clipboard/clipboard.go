package clipboard

import (
	"context"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
)

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) (err error)
}

// System writes to the operating system clipboard.
type System struct{}

// NewSystem returns the system clipboard writer.
func NewSystem() (w *System) {
	w = &System{}
	return w
}

// WriteText copies text to the system clipboard.
func (s *System) WriteText(_ context.Context, text string) (err error) {
	if clipboard.Unsupported {
		err = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")
		return err
	}

	err = clipboard.WriteAll(text)
	if err != nil {
		err = errors.Wrap(err, "failed to write clipboard")
		return err
	}
	return err
}

// Memory keeps the last copied text, for tests and the served page.
type Memory struct {
	mu   sync.Mutex
	text string
	Err  error
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() (m *Memory) {
	m = &Memory{}
	return m
}

// WriteText stores text, or returns Err when set.
func (m *Memory) WriteText(_ context.Context, text string) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		err = m.Err
		return err
	}
	m.text = text
	return err
}

// Text returns the last copied text.
func (m *Memory) Text() (text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text = m.text
	return text
}
