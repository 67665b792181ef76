package uistate

import (
	"maps"
	"sync"

	"tedrecords/internal/cellopen"
)

// HotkeyScopes holds the single active hotkey scope. Activating a scope
// replaces the previous one; nothing is restored automatically.
type HotkeyScopes struct {
	mu       sync.RWMutex
	current  cellopen.HotkeyScope
	onChange func(cellopen.HotkeyScope)
}

func NewHotkeyScopes(initial string) *HotkeyScopes {
	return &HotkeyScopes{current: cellopen.HotkeyScope{Scope: initial}}
}

// OnChange registers fn to run after the active scope changes.
func (h *HotkeyScopes) OnChange(fn func(cellopen.HotkeyScope)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Activate makes scope the active scope. Re-activating the active scope
// with the same custom scopes is a no-op.
func (h *HotkeyScopes) Activate(scope string, customScopes map[string]bool) {
	h.mu.Lock()
	if h.current.Scope == scope && maps.Equal(h.current.CustomScopes, customScopes) {
		h.mu.Unlock()
		return
	}
	h.current = cellopen.HotkeyScope{Scope: scope, CustomScopes: maps.Clone(customScopes)}
	next, fn := h.current, h.onChange
	h.mu.Unlock()

	if fn != nil {
		fn(next)
	}
}

// Current returns the active scope.
func (h *HotkeyScopes) Current() cellopen.HotkeyScope {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cellopen.HotkeyScope{Scope: h.current.Scope, CustomScopes: maps.Clone(h.current.CustomScopes)}
}

// Is reports whether scope is active.
func (h *HotkeyScopes) Is(scope string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Scope == scope
}

// Allows reports whether the active scope enables a custom scope.
func (h *HotkeyScopes) Allows(customScope string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.CustomScopes[customScope]
}
