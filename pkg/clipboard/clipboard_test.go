package clipboard

import (
	"context"
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	err := m.WriteText(context.Background(), "tailor your summary")
	if err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if m.Text() != "tailor your summary" {
		t.Errorf("Unexpected text %q", m.Text())
	}

	m.Err = errors.New("denied")
	err = m.WriteText(context.Background(), "other")
	if err == nil {
		t.Error("Expected error")
	}
	if m.Text() != "tailor your summary" {
		t.Error("Failed write should keep previous text")
	}
}
