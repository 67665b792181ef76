package cellopen

import (
	"tedrecords/internal/recordstore"
)

// RecordStore reads field values.
type RecordStore interface {
	FieldValue(recordID, fieldName string) any
	IsFieldValueEmpty(def recordstore.FieldDefinition, value any) bool
}

// Router navigates to a record's page.
type Router interface {
	NavigateToRecordPage(recordID string)
}

// RecordPreview opens a record in the command menu side panel.
type RecordPreview interface {
	OpenInCommandMenu(recordID, objectNameSingular string)
}

// Drawer shows a record in the right drawer.
type Drawer interface {
	SetViewableRecord(recordID, objectNameSingular string)
	OpenViewRecordPage(recordID, objectNameSingular string)
}

// FocusCoordinator owns the table's focus and edit cursor.
type FocusCoordinator interface {
	ReleaseTableFocus()
	MoveEditCursor(pos CellPosition)
}

// FieldEditor mounts the inline editor and holds its draft.
type FieldEditor interface {
	Mount(def recordstore.FieldDefinition, recordID string)
	SeedDraft(value any, recordID string, def recordstore.FieldDefinition)
}

// HotkeyScopeRegistry switches the active hotkey scope.
type HotkeyScopeRegistry interface {
	Activate(scope string, customScopes map[string]bool)
}

// ClickOutsideListener turns one click-outside listener on or off.
type ClickOutsideListener interface {
	SetActivated(activated bool)
}

// DragSelection gates the start of a multi-cell drag.
type DragSelection interface {
	SetStartEnabled(enabled bool)
}

// DropdownFocusRegistry tracks the focused dropdown and remembers the
// previous one.
type DropdownFocusRegistry interface {
	SetActiveAndRemember(id string)
}

// OpenRecordInReader reads the open-in preference at decision time.
type OpenRecordInReader interface {
	OpenRecordIn() OpenRecordIn
}
