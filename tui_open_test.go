package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/recordstore"
	"tedrecords/internal/uistate"
)

// Columns of the test table in display order.
const (
	colName = iota
	colID
	colDomain
	colEmployees
)

func setupTestEditor(t *testing.T, openIn cellopen.OpenRecordIn) *Editor {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE companies (
			id INTEGER PRIMARY KEY,
			name TEXT,
			domain TEXT,
			employees INTEGER
		);
		INSERT INTO companies VALUES (1, 'Acme', 'acme.com', 12);
		INSERT INTO companies VALUES (2, '', NULL, NULL);
	`)
	require.NoError(t, err)

	store, err := recordstore.Open(ctx, db, recordstore.SQLite, "companies")
	require.NoError(t, err)

	e, err := newEditor(ctx, EditorOptions{
		DBName:  "crm",
		Dialect: recordstore.SQLite,
		Store:   store,
		State:   uistate.New(openIn),
	})
	require.NoError(t, err)
	return e
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestBuildOpenRequest(t *testing.T) {
	fields := []recordstore.FieldDefinition{
		{FieldMetadataID: "people.name", Metadata: recordstore.FieldMetadata{FieldName: "name"}, ReadOnly: true},
		{FieldMetadataID: "people.id", Metadata: recordstore.FieldMetadata{FieldName: "id"}, ReadOnly: true},
		{FieldMetadataID: "people.email", Metadata: recordstore.FieldMetadata{FieldName: "email"}},
	}
	records := []recordstore.Record{{ID: "7"}}
	typed := "a"

	tests := []struct {
		name     string
		col      int
		gesture  openGesture
		typed    *string
		empty    bool
		readOnly bool
		action   bool
		navigate bool
	}{
		{name: "populated read-only identifier", col: 0, gesture: gestureSelect},
		{name: "empty read-only identifier", col: 0, gesture: gestureSelect, empty: true, readOnly: true},
		{name: "typing into read-only identifier", col: 0, gesture: gestureSelect, typed: &typed, readOnly: true},
		{name: "action button", col: 0, gesture: gestureActionButton, action: true},
		{name: "navigate", col: 0, gesture: gestureNavigate, navigate: true},
		{name: "read-only field", col: 1, gesture: gestureSelect, readOnly: true},
		{name: "typing into read-only field", col: 1, gesture: gestureSelect, typed: &typed, readOnly: true},
		{name: "writable field", col: 2, gesture: gestureSelect},
		{name: "empty writable field", col: 2, gesture: gestureSelect, empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isEmpty := func(recordID string, def recordstore.FieldDefinition) bool {
				assert.Equal(t, "7", recordID)
				return tt.empty
			}
			req, ok := buildOpenRequest(fields, records, "person", 0, tt.col, tt.gesture, tt.typed, isEmpty)
			require.True(t, ok)
			assert.Equal(t, "7", req.RecordID)
			assert.Equal(t, fields[tt.col], req.FieldDefinition)
			assert.Equal(t, cellopen.CellPosition{Row: 0, Column: tt.col}, req.CellPosition)
			assert.Equal(t, "person", req.ObjectNameSingular)
			assert.Equal(t, tt.typed, req.InitialValue)
			assert.Equal(t, tt.readOnly, req.IsReadOnly)
			assert.Equal(t, tt.action, req.IsActionButtonClick)
			assert.Equal(t, tt.navigate, req.IsNavigating)
		})
	}

	never := func(string, recordstore.FieldDefinition) bool { return false }
	_, ok := buildOpenRequest(fields, records, "person", 1, 0, gestureSelect, nil, never)
	assert.False(t, ok, "row out of range")
	_, ok = buildOpenRequest(fields, records, "person", 0, 3, gestureSelect, nil, never)
	assert.False(t, ok, "column out of range")
}

func TestEditor_ColumnsPutIdentifierFirst(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	headers := e.table.GetHeaders()
	require.Len(t, headers, 4)
	assert.Equal(t, "Name", headers[colName].Name)
	assert.True(t, headers[colID].IsKey)
	assert.True(t, headers[colID].ReadOnly)
	assert.Equal(t, "acme.com", e.table.GetCell(0, colDomain))
	assert.Equal(t, 2, e.table.RowCount())
}

func TestEditor_IdentifierNavigatesToRecordPage(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	intent := e.openCell(0, colName, gestureSelect, nil)

	assert.Equal(t, cellopen.IntentNavigate, intent)
	assert.True(t, e.isPageVisible(pageRecord))
	assert.Equal(t, " /object/company/1 ", e.recordPage.GetTitle())
	assert.Contains(t, e.recordPage.GetText(true), "acme.com")
	assert.True(t, e.state.Scopes.Is(uistate.ScopeRecordPage))
	assert.False(t, e.state.ClickOutside.Listener(uistate.ListenerRecordTable).Activated())
	assert.Equal(t, uistate.Browsing, e.state.Cursor.Mode())

	e.closePanel(pageRecord)
	assert.False(t, e.isPageVisible(pageRecord))
	assert.True(t, e.state.Scopes.Is(uistate.ScopeTableFocus))
	assert.True(t, e.state.ClickOutside.Listener(uistate.ListenerRecordTable).Activated())
}

func TestEditor_SidePanelPreferenceOpensCommandMenu(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInSidePanel)

	intent := e.openCell(0, colName, gestureSelect, nil)

	assert.Equal(t, cellopen.IntentNavigate, intent)
	assert.True(t, e.isPageVisible(pageCommandMenu))
	assert.False(t, e.isPageVisible(pageRecord))
	assert.True(t, e.state.Scopes.Is(uistate.ScopeCommandMenu))
	assert.True(t, e.state.Scopes.Allows(uistate.CustomScopeCommandMenu))
	_, err := uuid.Parse(e.menuPageID)
	assert.NoError(t, err)

	e.selectMenuField("Domain: acme.com")
	assert.False(t, e.isPageVisible(pageCommandMenu))
	row, col := e.table.GetSelection()
	assert.Equal(t, 0, row)
	assert.Equal(t, colDomain, col)
}

func TestEditor_PreferenceIsReadAtOpenTime(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	e.setOpenRecordIn(cellopen.OpenRecordInSidePanel)
	e.openCell(0, colName, gestureSelect, nil)

	assert.True(t, e.isPageVisible(pageCommandMenu))
	assert.False(t, e.isPageVisible(pageRecord))
}

func TestEditor_ActionButtonOpensDrawer(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	intent := e.openCell(0, colName, gestureActionButton, nil)

	assert.Equal(t, cellopen.IntentOpenDrawer, intent)
	assert.True(t, e.isPageVisible(pageDrawer))
	assert.Equal(t, " View company ", e.drawer.GetTitle())
	id, object, ok := e.state.Viewable.Get()
	assert.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, "company", object)
	assert.True(t, e.state.Scopes.Is(uistate.ScopeRightDrawer))

	e.closePanel(pageDrawer)
	_, _, ok = e.state.Viewable.Get()
	assert.False(t, ok)
}

func TestEditor_NavigateGestureFromAnyCell(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	intent := e.openCell(0, colEmployees, gestureNavigate, nil)

	assert.Equal(t, cellopen.IntentNavigate, intent)
	assert.True(t, e.isPageVisible(pageRecord))
}

func TestEditor_EditAndCommit(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)
	typed := "n"

	intent := e.openCell(0, colDomain, gestureSelect, &typed)

	require.Equal(t, cellopen.IntentEdit, intent)
	assert.True(t, e.editor.mounted)
	assert.True(t, e.isPageVisible(pageEditor))
	assert.Equal(t, "n", e.editor.textArea.GetText())
	pos, ok := e.state.Cursor.Position()
	assert.True(t, ok)
	assert.Equal(t, cellopen.CellPosition{Row: 0, Column: colDomain}, pos)
	assert.True(t, e.state.Scopes.Is(cellopen.ScopeCellEditMode))
	assert.Equal(t, cellopen.DropdownFocusID("1", "companies.domain", cellopen.DropdownContextTableCell),
		e.state.Dropdowns.Active())
	assert.False(t, e.state.Drag.StartEnabled())
	assert.True(t, e.state.ClickOutside.Listener(uistate.ListenerSoftFocus).Activated())
	draft, ok := e.state.Drafts.Get(uistate.DraftKey{RecordID: "1", FieldName: "domain"})
	assert.True(t, ok)
	assert.Equal(t, "n", draft)

	assert.Nil(t, e.editor.handleKey(key(tcell.KeyEnter)))

	assert.Equal(t, "n", e.store.FieldValue("1", "domain"))
	assert.Equal(t, "n", e.table.GetCell(0, colDomain))
	assert.False(t, e.editor.mounted)
	assert.False(t, e.isPageVisible(pageEditor))
	assert.Equal(t, uistate.Browsing, e.state.Cursor.Mode())
	assert.True(t, e.state.Scopes.Is(uistate.ScopeTableFocus))
	assert.Empty(t, e.state.Dropdowns.Active())
	assert.True(t, e.state.Drag.StartEnabled())
	assert.False(t, e.state.ClickOutside.Listener(uistate.ListenerSoftFocus).Activated())
	assert.True(t, e.state.ClickOutside.Listener(uistate.ListenerRecordTable).Activated())
	_, ok = e.state.Drafts.Get(uistate.DraftKey{RecordID: "1", FieldName: "domain"})
	assert.False(t, ok)
}

func TestEditor_SeedsStoredValue(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	require.Equal(t, cellopen.IntentEdit, e.openCell(0, colEmployees, gestureSelect, nil))
	assert.Equal(t, "12", e.editor.textArea.GetText())

	e.editor.handleKey(key(tcell.KeyEnter))
	assert.Equal(t, int64(12), e.store.FieldValue("1", "employees"))
}

func TestEditor_EscapeCancels(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)
	typed := "x"

	e.openCell(0, colDomain, gestureSelect, &typed)
	assert.Nil(t, e.editor.handleKey(key(tcell.KeyEscape)))

	assert.Equal(t, "acme.com", e.store.FieldValue("1", "domain"))
	assert.False(t, e.editor.mounted)
	assert.True(t, e.state.Scopes.Is(uistate.ScopeTableFocus))
}

func TestEditor_TabCommitsAndOpensNextCell(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)
	typed := "z"

	e.openCell(0, colDomain, gestureSelect, &typed)
	e.editor.handleKey(key(tcell.KeyTab))

	assert.Equal(t, "z", e.store.FieldValue("1", "domain"))
	require.True(t, e.editor.mounted)
	pos, ok := e.state.Cursor.Position()
	assert.True(t, ok)
	assert.Equal(t, cellopen.CellPosition{Row: 0, Column: colEmployees}, pos)
	assert.Equal(t, "12", e.editor.textArea.GetText())
	assert.Equal(t, 1, e.state.Dropdowns.Depth())
}

func TestEditor_EmptyIdentifierEdits(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	intent := e.openCell(1, colName, gestureSelect, nil)

	assert.Equal(t, cellopen.IntentEdit, intent)
	assert.False(t, e.isPageVisible(pageRecord))
}

func TestEditor_ReadOnlyCellIsIgnored(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	intent := e.openCell(0, colID, gestureSelect, nil)

	assert.Equal(t, cellopen.IntentNone, intent)
	assert.False(t, e.editor.mounted)
	assert.True(t, e.state.ClickOutside.Listener(uistate.ListenerRecordTable).Activated())
	assert.Contains(t, e.statusBar.GetText(true), "Id is read-only")
}

func TestEditor_ReadOnlyCellKeepsRangeSelection(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)
	selection := CellRange{
		Start: cellopen.CellPosition{Row: 0, Column: colDomain},
		End:   cellopen.CellPosition{Row: 1, Column: colEmployees},
	}
	e.table.selection = &selection

	e.openCell(0, colID, gestureSelect, nil)
	r, ok := e.table.GetRange()
	require.True(t, ok)
	assert.Equal(t, selection, r)

	e.openCell(0, colName, gestureSelect, nil)
	_, ok = e.table.GetRange()
	assert.False(t, ok)
}

func setupGeneratedNameEditor(t *testing.T) *Editor {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "people.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE people (
			id INTEGER PRIMARY KEY,
			first TEXT,
			name TEXT GENERATED ALWAYS AS (first) VIRTUAL
		);
		INSERT INTO people (id, first) VALUES (1, 'Ada');
		INSERT INTO people (id, first) VALUES (2, NULL);
	`)
	require.NoError(t, err)

	store, err := recordstore.Open(ctx, db, recordstore.SQLite, "people")
	require.NoError(t, err)

	e, err := newEditor(ctx, EditorOptions{
		DBName:  "crm",
		Dialect: recordstore.SQLite,
		Store:   store,
		State:   uistate.New(cellopen.OpenRecordInRecordPage),
	})
	require.NoError(t, err)
	return e
}

func TestEditor_EmptyReadOnlyIdentifierIsIgnored(t *testing.T) {
	e := setupGeneratedNameEditor(t)
	require.Equal(t, "name", e.fields[0].Metadata.FieldName)
	require.True(t, e.fields[0].ReadOnly)

	intent := e.openCell(1, 0, gestureSelect, nil)

	assert.Equal(t, cellopen.IntentNone, intent)
	assert.False(t, e.editor.mounted)
	assert.True(t, e.state.Scopes.Is(uistate.ScopeTableFocus))
	assert.Nil(t, e.store.FieldValue("2", "name"))
}

func TestEditor_PopulatedReadOnlyIdentifierNavigates(t *testing.T) {
	e := setupGeneratedNameEditor(t)

	assert.Equal(t, cellopen.IntentNavigate, e.openCell(0, 0, gestureSelect, nil))
	assert.True(t, e.isPageVisible(pageRecord))

	typed := "x"
	assert.Equal(t, cellopen.IntentNone, e.openCell(0, 0, gestureSelect, &typed))
}

func TestEditor_ClickOutsideCommitsEdit(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)
	typed := "q"

	e.openCell(0, colDomain, gestureSelect, &typed)
	event, _ := e.captureMouse(tcell.NewEventMouse(70, 20, tcell.Button1, tcell.ModNone), tview.MouseLeftDown)

	assert.NotNil(t, event, "the press still reaches the table")
	assert.False(t, e.editor.mounted)
	assert.Equal(t, "q", e.store.FieldValue("1", "domain"))
}

func TestEditor_ClickOutsideClosesDrawer(t *testing.T) {
	e := setupTestEditor(t, cellopen.OpenRecordInRecordPage)

	e.openCell(0, colName, gestureActionButton, nil)
	event, _ := e.captureMouse(tcell.NewEventMouse(70, 20, tcell.Button1, tcell.ModNone), tview.MouseLeftDown)

	assert.Nil(t, event)
	assert.False(t, e.isPageVisible(pageDrawer))
	assert.True(t, e.state.Scopes.Is(uistate.ScopeTableFocus))
}

func TestRecordPagePath(t *testing.T) {
	assert.Equal(t, "/object/company/42", recordPagePath("company", "42"))
}
