// Package cellopen decides what opening a record table cell does and
// performs it: navigate to the record, open the record drawer, or put the
// cell in edit mode.
package cellopen

import (
	"fmt"
	"strings"

	"tedrecords/internal/recordstore"
)

// DropdownContextTableCell tags dropdown focus ids owned by table cells.
const DropdownContextTableCell = "table-cell"

// CellPosition identifies a table cell. Column 0 is the identifier column.
type CellPosition struct {
	Row    int
	Column int
}

// IsIdentifierColumn reports whether the cell holds the record's label.
func (p CellPosition) IsIdentifierColumn() bool {
	return p.Column == 0
}

func (p CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// HotkeyScope names the active set of keyboard shortcuts.
type HotkeyScope struct {
	Scope        string
	CustomScopes map[string]bool
}

// OpenRecordIn is where a navigated record opens.
type OpenRecordIn int

const (
	OpenRecordInRecordPage OpenRecordIn = iota
	OpenRecordInSidePanel
)

func (o OpenRecordIn) String() string {
	switch o {
	case OpenRecordInRecordPage:
		return "record-page"
	case OpenRecordInSidePanel:
		return "side-panel"
	default:
		return fmt.Sprintf("OpenRecordIn(%d)", int(o))
	}
}

// ParseOpenRecordIn accepts "record-page" and "side-panel" (case and
// separator insensitive, so RECORD_PAGE works too).
func ParseOpenRecordIn(s string) (OpenRecordIn, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	switch normalized {
	case "record-page", "page":
		return OpenRecordInRecordPage, nil
	case "side-panel", "panel":
		return OpenRecordInSidePanel, nil
	default:
		return 0, fmt.Errorf("unknown open-record-in value %q (want record-page or side-panel)", s)
	}
}

// OpenRequest describes one open gesture on a cell.
type OpenRequest struct {
	CellPosition        CellPosition
	RecordID            string
	FieldDefinition     recordstore.FieldDefinition
	InitialValue        *string // typed character that started the edit, if any
	IsReadOnly          bool
	IsActionButtonClick bool
	IsNavigating        bool
	CustomHotkeyScope   *HotkeyScope
	ObjectNameSingular  string
}

// DropdownFocusID is the focus id of a field input dropdown.
func DropdownFocusID(recordID, fieldMetadataID, context string) string {
	return fmt.Sprintf("field-input-%s-%s-%s", context, recordID, fieldMetadataID)
}
