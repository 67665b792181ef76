package uistate

import "sync"

// DropdownFocus tracks the focused dropdown id. Every id that loses focus
// through SetActiveAndRemember is pushed on a stack so nested opens unwind
// in order.
type DropdownFocus struct {
	mu       sync.RWMutex
	active   string
	previous []string
}

func NewDropdownFocus() *DropdownFocus {
	return &DropdownFocus{}
}

// SetActiveAndRemember focuses id and remembers the previously focused
// dropdown. Focusing the already active id changes nothing.
func (d *DropdownFocus) SetActiveAndRemember(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == id {
		return
	}
	d.previous = append(d.previous, d.active)
	d.active = id
}

// RestorePrevious focuses the most recently remembered dropdown and
// returns it. With nothing remembered the focus is cleared.
func (d *DropdownFocus) RestorePrevious() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.previous); n > 0 {
		d.active = d.previous[n-1]
		d.previous = d.previous[:n-1]
	} else {
		d.active = ""
	}
	return d.active
}

// Active returns the focused dropdown id, "" when none.
func (d *DropdownFocus) Active() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Depth is the number of remembered ids.
func (d *DropdownFocus) Depth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.previous)
}
