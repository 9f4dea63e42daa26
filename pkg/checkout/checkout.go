// Package checkout guards CTA buttons that send the visitor to a payment page.
//
// Each button owns its guard: a click disables the button until the navigation resolves
// (and an optional cooldown elapses). There is no shared, process-wide flag, so two
// buttons, or the same button on two pages, never block each other.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrInFlight is returned when the button is still disabled by a previous click.
	ErrInFlight = errors.New("checkout already in progress")
	// ErrNoURL is returned when the button has no target.
	ErrNoURL = errors.New("checkout url not configured")
)

// Navigator performs the outbound side effect (redirect, browser navigation).
type Navigator func(ctx context.Context, url string) error

// Button is the disabled-until-resolved state of one CTA button.
type Button struct {
	mu       sync.Mutex
	url      string
	busy     bool
	until    time.Time
	cooldown time.Duration
	now      func() time.Time
}

// Option configures buttons.
type Option func(*Button)

// WithCooldown keeps the button disabled for d after each navigation.
func WithCooldown(d time.Duration) Option {
	return func(b *Button) {
		b.cooldown = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Button) {
		b.now = now
	}
}

// NewButton creates a button targeting url.
func NewButton(url string, opts ...Option) *Button {
	b := &Button{url: url, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// URL returns the current target.
func (b *Button) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// SetURL retargets the button, e.g. after the block was edited.
func (b *Button) SetURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
}

// Disabled reports whether a click would be rejected right now.
func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled()
}

func (b *Button) disabled() bool {
	return b.busy || b.now().Before(b.until)
}

// Click runs navigate once. While it runs, and during the cooldown afterwards, other
// clicks fail with ErrInFlight. The button re-enables whatever navigate returns.
func (b *Button) Click(ctx context.Context, navigate Navigator) error {
	url, err := b.begin()
	if err != nil {
		return err
	}
	defer b.finish()
	return navigate(ctx, url)
}

func (b *Button) begin() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.url == "" {
		return "", ErrNoURL
	}
	if b.disabled() {
		return "", ErrInFlight
	}
	b.busy = true
	return b.url, nil
}

func (b *Button) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
	b.until = b.now().Add(b.cooldown)
}

// Registry keeps one Button per CTA block and visitor.
type Registry struct {
	mu      sync.Mutex
	buttons map[string]*Button
	opts    []Option
}

// NewRegistry creates a registry whose buttons are built with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		buttons: make(map[string]*Button),
		opts:    opts,
	}
}

// Button returns the button of key (typically block id + visitor), creating it on first use.
// The target is refreshed to url.
func (r *Registry) Button(key, url string) *Button {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buttons[key]
	if !ok {
		b = NewButton(url, r.opts...)
		r.buttons[key] = b
		return b
	}
	b.SetURL(url)
	return b
}

// Click clicks the button of key, targeting url. Idle buttons of other keys are dropped on
// the way, so the registry only holds buttons that are in flight or cooling down.
func (r *Registry) Click(ctx context.Context, key, url string, navigate Navigator) error {
	r.mu.Lock()
	r.prune()
	b, ok := r.buttons[key]
	if !ok {
		b = NewButton(url, r.opts...)
		r.buttons[key] = b
	} else {
		b.SetURL(url)
	}
	target, err := b.begin()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	defer b.finish()
	return navigate(ctx, target)
}

// Prune forgets every button that is not disabled. An idle button carries no state, so
// the next click on its key simply creates a fresh one.
func (r *Registry) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
}

func (r *Registry) prune() {
	for k, b := range r.buttons {
		if !b.Disabled() {
			delete(r.buttons, k)
		}
	}
}

// Len returns the number of live buttons.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buttons)
}
