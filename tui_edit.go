package main

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/recordstore"
	"tedrecords/internal/uistate"
)

const maxEditorLines = 6

// editorOverlay floats a text area over the cell under the edit cursor.
type editorOverlay struct {
	*tview.Box
	table    *TableView
	cursor   *uistate.EditCursor
	textArea *tview.TextArea
}

func newEditorOverlay(table *TableView, cursor *uistate.EditCursor, textArea *tview.TextArea) *editorOverlay {
	return &editorOverlay{
		Box:      tview.NewBox(),
		table:    table,
		cursor:   cursor,
		textArea: textArea,
	}
}

// Draw sizes the text area to its content, at least the cell's width and at
// most the rest of the screen.
func (o *editorOverlay) Draw(screen tcell.Screen) {
	pos, ok := o.cursor.Position()
	if !ok {
		return
	}
	x, y, cellWidth := o.table.CellScreenRect(pos.Row, pos.Column)
	screenWidth, screenHeight := screen.Size()

	text := o.textArea.GetText()
	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		longest = max(longest, len([]rune(line)))
	}

	width := min(max(cellWidth, longest+1), max(1, screenWidth-x))
	height := min(len(lines), maxEditorLines, max(1, screenHeight-y))

	o.Box.SetRect(x, y, width, height)
	o.textArea.SetRect(x, y, width, height)
	o.textArea.Draw(screen)
}

func (o *editorOverlay) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return o.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if handler := o.textArea.InputHandler(); handler != nil {
			handler(event, setFocus)
		}
	})
}

func (o *editorOverlay) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
	return o.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
		if !o.textArea.InRect(event.Position()) {
			return false, nil
		}
		return o.textArea.MouseHandler()(action, event, setFocus)
	})
}

func (o *editorOverlay) Focus(delegate func(p tview.Primitive)) {
	delegate(o.textArea)
}

func (o *editorOverlay) HasFocus() bool {
	return o.textArea.HasFocus()
}

// fieldEditor is the inline editor of one cell at a time.
type fieldEditor struct {
	e        *Editor
	textArea *tview.TextArea
	overlay  *editorOverlay

	def      recordstore.FieldDefinition
	recordID string
	mounted  bool
}

func newFieldEditor(e *Editor) *fieldEditor {
	return &fieldEditor{e: e}
}

// Mount opens an empty editor for the field. A previous editor is dropped
// without committing.
func (f *fieldEditor) Mount(def recordstore.FieldDefinition, recordID string) {
	if f.mounted {
		f.e.pages.RemovePage(pageEditor)
		f.e.state.Drafts.Delete(f.draftKey())
	}

	f.def, f.recordID = def, recordID
	f.textArea = tview.NewTextArea().SetWrap(true)
	f.textArea.SetBorder(false).SetBackgroundColor(tcell.ColorDarkGreen)
	f.textArea.SetInputCapture(f.handleKey)
	f.overlay = newEditorOverlay(f.e.table, f.e.state.Cursor, f.textArea)

	f.e.pages.AddPage(pageEditor, f.overlay, false, true)
	f.mounted = true
}

// SeedDraft fills the editor with its starting value and focuses it.
func (f *fieldEditor) SeedDraft(value any, recordID string, def recordstore.FieldDefinition) {
	key := uistate.DraftKey{RecordID: recordID, FieldName: def.Metadata.FieldName}
	f.e.state.Drafts.Set(key, value)

	text := draftText(value)
	style := tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite)
	f.textArea.SetTextStyle(style.Italic(value == nil))
	f.textArea.SetText(text, true)
	f.textArea.SetChangedFunc(func() {
		current := f.textArea.GetText()
		f.e.state.Drafts.Set(key, current)
		f.textArea.SetTextStyle(style.Italic(false))
		f.e.updateStatusForEditMode(f.def, current)
	})

	f.e.app.SetFocus(f.overlay)
	f.e.app.SetAfterDrawFunc(func(screen tcell.Screen) {
		screen.SetCursorStyle(tcell.CursorStyleBlinkingBar)
	})
	f.e.updateStatusForEditMode(def, text)
}

func (f *fieldEditor) draftKey() uistate.DraftKey {
	return uistate.DraftKey{RecordID: f.recordID, FieldName: f.def.Metadata.FieldName}
}

func (f *fieldEditor) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter:
		if event.Modifiers()&tcell.ModAlt != 0 && isMultilineField(f.def) {
			return event
		}
		f.commit()
		return nil
	case tcell.KeyTab:
		pos, ok := f.e.state.Cursor.Position()
		f.commit()
		if ok {
			f.e.openNextCell(pos)
		}
		return nil
	case tcell.KeyEscape:
		f.cancel()
		return nil
	}
	return event
}

// commit stages the draft into the store and closes the editor.
func (f *fieldEditor) commit() {
	if !f.mounted {
		return
	}
	draft, ok := f.e.state.Drafts.Get(f.draftKey())
	if !ok {
		f.close()
		return
	}
	if text, isText := draft.(string); isText {
		draft = parseDraft(f.def, text)
	}
	f.e.store.StageValue(f.recordID, f.def.Metadata.FieldName, draft)
	f.e.refreshRecord(f.recordID)
	f.e.log.V(1).Info("committed cell", "recordID", f.recordID, "field", f.def.Metadata.FieldName)
	f.close()
}

func (f *fieldEditor) cancel() {
	if f.mounted {
		f.close()
	}
}

// close unmounts the editor and hands focus back to the table.
func (f *fieldEditor) close() {
	state := f.e.state
	state.Drafts.Delete(f.draftKey())
	f.e.pages.RemovePage(pageEditor)
	f.mounted = false

	state.Cursor.Release()
	f.e.table.SetEditing(nil)
	state.Drag.SetStartEnabled(true)
	state.ClickOutside.Listener(uistate.ListenerSoftFocus).SetActivated(false)
	state.ClickOutside.Listener(uistate.ListenerRecordTable).SetActivated(true)
	state.Scopes.Activate(uistate.ScopeTableFocus, nil)
	state.Dropdowns.RestorePrevious()

	f.e.app.SetAfterDrawFunc(nil)
	f.e.app.SetFocus(f.e.table)
	f.e.updateStatusWithCellContent()
}

// openNextCell opens the cell right of pos, wrapping to the next row's
// first editable column.
func (e *Editor) openNextCell(pos cellopen.CellPosition) {
	row, col := pos.Row, pos.Column+1
	if col >= len(e.fields) {
		row, col = row+1, 1
	}
	if row >= len(e.records) || col >= len(e.fields) {
		return
	}
	e.table.Select(row, col)
	e.openCell(row, col, gestureSelect, nil)
}

// draftText is the editable text of a stored value.
func draftText(value any) string {
	if value == nil {
		return ""
	}
	text, _ := formatCellValue(value, tcell.StyleDefault)
	return text
}

// parseDraft converts edited text back to the field's value type. Empty
// text clears nullable fields; text that does not parse is kept as typed.
func parseDraft(def recordstore.FieldDefinition, text string) any {
	if text == "" && def.Metadata.Nullable {
		return nil
	}
	switch def.Type {
	case recordstore.FieldTypeNumber:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return n
		}
	case recordstore.FieldTypeBoolean:
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	}
	return text
}

func isMultilineField(def recordstore.FieldDefinition) bool {
	return def.Type == recordstore.FieldTypeText || def.Type == recordstore.FieldTypeRawJSON
}
