package uistate

import "sync"

// ClickOutsideListener is one keyed click-outside listener. Listeners start
// activated.
type ClickOutsideListener struct {
	id        string
	mu        sync.RWMutex
	activated bool
}

func (l *ClickOutsideListener) ID() string { return l.id }

func (l *ClickOutsideListener) SetActivated(activated bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activated = activated
}

// Toggle flips the listener and returns the new state.
func (l *ClickOutsideListener) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activated = !l.activated
	return l.activated
}

func (l *ClickOutsideListener) Activated() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.activated
}

// ClickOutsideListeners hands out listeners by id; the same id always
// returns the same listener.
type ClickOutsideListeners struct {
	mu        sync.Mutex
	listeners map[string]*ClickOutsideListener
}

func NewClickOutsideListeners() *ClickOutsideListeners {
	return &ClickOutsideListeners{listeners: make(map[string]*ClickOutsideListener)}
}

func (c *ClickOutsideListeners) Listener(id string) *ClickOutsideListener {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.listeners[id]
	if !ok {
		l = &ClickOutsideListener{id: id, activated: true}
		c.listeners[id] = l
	}
	return l
}

// DragSelection gates whether a mouse drag may start a multi-cell
// selection.
type DragSelection struct {
	mu      sync.RWMutex
	enabled bool
}

func NewDragSelection() *DragSelection {
	return &DragSelection{enabled: true}
}

func (d *DragSelection) SetStartEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

func (d *DragSelection) StartEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}
