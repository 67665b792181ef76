package main

import (
	"fmt"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/recordstore"
)

// buildOpenRequest turns a gesture on a table cell into an open request.
// A read-only field stays openable only as a populated identifier clicked
// without typing, which navigates or opens the drawer; every other open of
// it is a no-op.
func buildOpenRequest(fields []recordstore.FieldDefinition, records []recordstore.Record, objectName string,
	row, col int, gesture openGesture, typed *string,
	isEmpty func(recordID string, def recordstore.FieldDefinition) bool) (cellopen.OpenRequest, bool) {
	if row < 0 || row >= len(records) || col < 0 || col >= len(fields) {
		return cellopen.OpenRequest{}, false
	}

	pos := cellopen.CellPosition{Row: row, Column: col}
	def := fields[col]
	recordID := records[row].ID
	readOnly := def.ReadOnly
	if readOnly && pos.IsIdentifierColumn() && typed == nil {
		readOnly = isEmpty(recordID, def)
	}
	return cellopen.OpenRequest{
		CellPosition:        pos,
		RecordID:            recordID,
		FieldDefinition:     def,
		InitialValue:        typed,
		IsReadOnly:          readOnly,
		IsActionButtonClick: gesture == gestureActionButton,
		IsNavigating:        gesture == gestureNavigate,
		ObjectNameSingular:  objectName,
	}, true
}

// openCell opens the cell at row, col and reports what it resolved to.
func (e *Editor) openCell(row, col int, gesture openGesture, typed *string) cellopen.Intent {
	req, ok := buildOpenRequest(e.fields, e.records, e.store.ObjectNameSingular(), row, col, gesture, typed, e.isCellEmpty)
	if !ok {
		return cellopen.IntentNone
	}
	debugLog("open cell %s gesture=%s\n", req.CellPosition, gesture)

	intent := e.cells.Open(req)
	if breadcrumbs != nil {
		breadcrumbs.RecordCellOpen(intent.String(), row, col, req.FieldDefinition.Metadata.FieldName)
	}
	if intent == cellopen.IntentNone {
		e.SetStatusMessage(fmt.Sprintf("%s is read-only", req.FieldDefinition.Label))
		return intent
	}
	e.table.ClearRange()
	return intent
}

func (e *Editor) isCellEmpty(recordID string, def recordstore.FieldDefinition) bool {
	return e.store.IsFieldValueEmpty(def, e.store.FieldValue(recordID, def.Metadata.FieldName))
}

// recordRouter navigates to the record page.
type recordRouter struct{ e *Editor }

func (r recordRouter) NavigateToRecordPage(recordID string) {
	r.e.showRecordPage(recordID)
}

// commandMenuPreview opens a record in the command menu panel.
type commandMenuPreview struct{ e *Editor }

func (p commandMenuPreview) OpenInCommandMenu(recordID, objectNameSingular string) {
	p.e.openCommandMenu(recordID, objectNameSingular)
}

// recordDrawer shows a record in the right drawer.
type recordDrawer struct{ e *Editor }

func (d recordDrawer) SetViewableRecord(recordID, objectNameSingular string) {
	d.e.state.Viewable.Set(recordID, objectNameSingular)
}

func (d recordDrawer) OpenViewRecordPage(recordID, objectNameSingular string) {
	d.e.showDrawer(recordID, objectNameSingular)
}

// tableFocus keeps the edit cursor and the table's highlight in step.
type tableFocus struct{ e *Editor }

func (f tableFocus) ReleaseTableFocus() {
	f.e.state.Cursor.Release()
	f.e.table.SetEditing(nil)
}

func (f tableFocus) MoveEditCursor(pos cellopen.CellPosition) {
	f.e.state.Cursor.MoveTo(pos)
	f.e.table.Select(pos.Row, pos.Column)
	f.e.table.SetEditing(&pos)
}

var (
	_ cellopen.Router           = recordRouter{}
	_ cellopen.RecordPreview    = commandMenuPreview{}
	_ cellopen.Drawer           = recordDrawer{}
	_ cellopen.FocusCoordinator = tableFocus{}
	_ cellopen.FieldEditor      = (*fieldEditor)(nil)
)
