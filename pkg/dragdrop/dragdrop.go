// Package dragdrop translates pointer and keyboard drag gestures into list reorders.
//
// The controller tracks a single gesture at a time. It never touches the list while the
// gesture is in progress: Reorder is called once, on drop, and only when the final
// position differs from the start position.
package dragdrop

import (
	"fmt"
	"sync"
)

// Reorderer is the list being reordered (blocklist.List satisfies it).
type Reorderer interface {
	Len() int
	Reorder(from, to int) bool
}

// Key is a keyboard input relevant to reordering.
type Key string

const (
	KeySpace  Key = "space"
	KeyEnter  Key = "enter"
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyHome   Key = "home"
	KeyEnd    Key = "end"
	KeyEscape Key = "escape"
)

// ParseKey maps DOM-style key names ("ArrowUp", " ", "Escape") to a Key.
func ParseKey(s string) (Key, bool) {
	switch s {
	case " ", "Space", "space", "Spacebar":
		return KeySpace, true
	case "Enter", "enter":
		return KeyEnter, true
	case "ArrowUp", "Up", "up":
		return KeyUp, true
	case "ArrowDown", "Down", "down":
		return KeyDown, true
	case "Home", "home":
		return KeyHome, true
	case "End", "end":
		return KeyEnd, true
	case "Escape", "Esc", "escape":
		return KeyEscape, true
	}
	return "", false
}

// Controller is the drag state machine of one list view.
type Controller struct {
	mu   sync.Mutex
	list Reorderer

	active       bool
	from, over   int
	announcement string
}

// New creates a controller over list.
func New(list Reorderer) *Controller {
	return &Controller{list: list}
}

// Start picks up the item at index. Returns false if index is out of range
// or a gesture is already in progress.
func (c *Controller) Start(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start(index)
}

// Over records the index currently under the dragged item. It is clamped to the list.
func (c *Controller) Over(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveTo(index)
}

// Drop ends the gesture. It reports whether the list was reordered.
func (c *Controller) Drop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop()
}

// Cancel abandons the gesture. The list is not touched.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
}

// Key handles keyboard reordering. Space or Enter picks up the focused item and drops
// it on the second press; arrows, Home and End move it; Escape cancels.
// It reports whether the key was consumed.
func (c *Controller) Key(k Key, focused int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch k {
	case KeySpace, KeyEnter:
		if c.active {
			c.drop()
			return true
		}
		return c.start(focused)
	}
	if !c.active {
		return false
	}
	switch k {
	case KeyUp:
		c.moveTo(c.over - 1)
	case KeyDown:
		c.moveTo(c.over + 1)
	case KeyHome:
		c.moveTo(0)
	case KeyEnd:
		c.moveTo(c.list.Len() - 1)
	case KeyEscape:
		c.cancel()
	default:
		return false
	}
	return true
}

// Active returns the start and current index of the gesture in progress.
func (c *Controller) Active() (from, over int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.over, c.active
}

// Announcement returns the last live-region message for assistive technology.
func (c *Controller) Announcement() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.announcement
}

func (c *Controller) start(index int) bool {
	n := c.list.Len()
	if c.active || index < 0 || index >= n {
		return false
	}
	c.active = true
	c.from, c.over = index, index
	c.announcement = fmt.Sprintf("Picked up block at position %d of %d. Use the arrow keys to move, space to drop, escape to cancel.", index+1, n)
	return true
}

func (c *Controller) moveTo(index int) {
	if !c.active {
		return
	}
	n := c.list.Len()
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}
	if index == c.over {
		return
	}
	c.over = index
	c.announcement = fmt.Sprintf("Block moved to position %d of %d.", index+1, n)
}

func (c *Controller) drop() bool {
	if !c.active {
		return false
	}
	from, to := c.from, c.over
	c.active = false

	if from == to {
		c.announcement = fmt.Sprintf("Block dropped at its original position %d.", from+1)
		return false
	}
	if !c.list.Reorder(from, to) {
		c.announcement = "The list changed while dragging. The block was not moved."
		return false
	}
	c.announcement = fmt.Sprintf("Block moved from position %d to position %d.", from+1, to+1)
	return true
}

func (c *Controller) cancel() {
	if !c.active {
		return
	}
	c.active = false
	c.announcement = fmt.Sprintf("Reordering cancelled. Block returned to position %d.", c.from+1)
}
