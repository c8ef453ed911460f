package controller

import (
	"context"

	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/pkg/errors"
)

// Action is a user action on the page.
type Action string

const (
	ActionCopy        Action = "copy"
	ActionExport      Action = "export"
	ActionToggleTheme Action = "toggle-theme"
)

// Outcome reports what an action produced.
type Outcome struct {
	Path  string
	Theme theme.Theme
}

// ParseAction maps a name to an Action.
func ParseAction(name string) (a Action, err error) {
	a = Action(name)
	switch a {
	case ActionCopy, ActionExport, ActionToggleTheme:
		return a, err
	}
	err = errors.Errorf("unknown action: %q", name)
	return a, err
}

// Dispatch runs an action against the report current at call time.
func (c *Controller) Dispatch(ctx context.Context, action Action) (out Outcome, err error) {
	switch action {
	case ActionCopy:
		err = c.Copy(ctx)
	case ActionExport:
		out.Path, err = c.Export(ctx)
	case ActionToggleTheme:
		out.Theme, err = c.ToggleTheme(ctx)
	default:
		err = errors.Errorf("unknown action: %q", action)
	}
	return out, err
}
