package render

import (
	"fmt"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
)

// Mode selects between the published page and the builder canvas.
type Mode string

const (
	// ModeView renders only visible blocks, without editing chrome.
	ModeView Mode = "view"
	// ModeEdit renders every block with its chrome (hidden badge, controls).
	ModeEdit Mode = "edit"
)

// ParseMode parses "view" or "edit". The empty string means view.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeView:
		return ModeView, nil
	case ModeEdit:
		return ModeEdit, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// Context carries the shared, non-persistent render state.
type Context struct {
	Theme domain.Theme
	Mode  Mode

	// CheckoutPath returns the endpoint a CTA posts to. When nil, buttons link
	// straight to their buttonUrl.
	CheckoutPath func(blockID string) string

	// Hovered is the id of the block under the pointer.
	Hovered string

	// Loaded records image blocks whose source finished loading.
	Loaded map[string]bool

	// Countdown holds the remaining time of countdown blocks, ticked by the caller.
	Countdown map[string]time.Duration
}

// NewContext returns a context with the theme defaulted.
func NewContext(theme domain.Theme, mode Mode) *Context {
	return &Context{
		Theme:     theme.WithDefaults(),
		Mode:      mode,
		Loaded:    make(map[string]bool),
		Countdown: make(map[string]time.Duration),
	}
}

func (rc *Context) checkout(blockID string) string {
	if rc == nil || rc.CheckoutPath == nil {
		return ""
	}
	return rc.CheckoutPath(blockID)
}

func (rc *Context) theme() domain.Theme {
	if rc == nil {
		return domain.DefaultTheme()
	}
	return rc.Theme.WithDefaults()
}

// result returns the quiz-result style for a variant; ok is false for the default variant.
func (rc *Context) result(variant string) (domain.ResultStyle, bool) {
	t := rc.theme()
	switch variant {
	case "primary":
		return t.Result.Primary, true
	case "secondary":
		return t.Result.Secondary, true
	}
	return domain.ResultStyle{}, false
}

func (rc *Context) remaining(blockID string, fallback time.Duration) time.Duration {
	if rc != nil {
		if d, ok := rc.Countdown[blockID]; ok {
			return d
		}
	}
	return fallback
}
