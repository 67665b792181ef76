// Package uistate holds the process-wide single-value UI state of a record
// table: active hotkey scope, focused dropdown, click-outside listeners,
// drag selection, drawer record, open-in preference, edit cursor and field
// drafts. Each handle is safe for use from the draw goroutine but expects
// one logical writer, the UI event goroutine.
package uistate

import (
	"tedrecords/internal/cellopen"
)

// Hotkey scopes other than cellopen.ScopeCellEditMode.
const (
	ScopeTableFocus  = "table-focus"
	ScopeRightDrawer = "right-drawer"
	ScopeCommandMenu = "command-menu"
	ScopeRecordPage  = "record-page"
)

// Custom scopes layered on top of the active scope.
const (
	CustomScopeCommandMenu = "commandMenu"
	CustomScopeGoto        = "goto"
)

// Click-outside listener ids.
const (
	ListenerRecordTable = "record-table"
	ListenerSoftFocus   = "soft-focus-click-outside"
)

// State bundles the handles shared by one table instance.
type State struct {
	Scopes       *HotkeyScopes
	Dropdowns    *DropdownFocus
	ClickOutside *ClickOutsideListeners
	Drag         *DragSelection
	Viewable     *ViewableRecord
	OpenIn       *OpenRecordInPreference
	Cursor       *EditCursor
	Drafts       *Drafts
}

// New returns state in Browsing mode with the table focus scope active.
func New(openIn cellopen.OpenRecordIn) *State {
	return &State{
		Scopes:       NewHotkeyScopes(ScopeTableFocus),
		Dropdowns:    NewDropdownFocus(),
		ClickOutside: NewClickOutsideListeners(),
		Drag:         NewDragSelection(),
		Viewable:     &ViewableRecord{},
		OpenIn:       NewOpenRecordInPreference(openIn),
		Cursor:       &EditCursor{},
		Drafts:       NewDrafts(),
	}
}

var (
	_ cellopen.HotkeyScopeRegistry   = (*HotkeyScopes)(nil)
	_ cellopen.DropdownFocusRegistry = (*DropdownFocus)(nil)
	_ cellopen.ClickOutsideListener  = (*ClickOutsideListener)(nil)
	_ cellopen.DragSelection         = (*DragSelection)(nil)
	_ cellopen.OpenRecordInReader    = (*OpenRecordInPreference)(nil)
)
