package uistate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/recordstore"
)

// tableSurface stands in for the table view: it owns the store values, the
// router and drawer, and drives the state handles like the TUI does.
type tableSurface struct {
	state    *State
	values   map[string]any
	routed   []string
	previews []string
	editing  string
}

func (s *tableSurface) FieldValue(recordID, fieldName string) any {
	return s.values[recordID+"/"+fieldName]
}

func (s *tableSurface) IsFieldValueEmpty(def recordstore.FieldDefinition, value any) bool {
	return recordstore.IsFieldValueEmpty(def, value)
}

func (s *tableSurface) NavigateToRecordPage(recordID string) { s.routed = append(s.routed, recordID) }

func (s *tableSurface) OpenInCommandMenu(recordID, _ string) {
	s.previews = append(s.previews, recordID)
}

func (s *tableSurface) SetViewableRecord(recordID, objectNameSingular string) {
	s.state.Viewable.Set(recordID, objectNameSingular)
}

func (s *tableSurface) OpenViewRecordPage(string, string) {
	s.state.Scopes.Activate(ScopeRightDrawer, nil)
}

func (s *tableSurface) ReleaseTableFocus() { s.state.Cursor.Release() }

func (s *tableSurface) MoveEditCursor(pos cellopen.CellPosition) { s.state.Cursor.MoveTo(pos) }

func (s *tableSurface) Mount(def recordstore.FieldDefinition, recordID string) {
	s.editing = recordID + "/" + def.Metadata.FieldName
}

func (s *tableSurface) SeedDraft(value any, recordID string, def recordstore.FieldDefinition) {
	s.state.Drafts.Set(DraftKey{RecordID: recordID, FieldName: def.Metadata.FieldName}, value)
}

func newSurface(t *testing.T, openIn cellopen.OpenRecordIn) (*tableSurface, *cellopen.Controller) {
	t.Helper()
	st := New(openIn)
	s := &tableSurface{state: st, values: map[string]any{
		"1/name":      "Acme",
		"1/employees": int64(12),
		"2/name":      "",
	}}
	c, err := cellopen.NewController(cellopen.Config{
		Store:                 s,
		Router:                s,
		Preview:               s,
		Drawer:                s,
		Focus:                 s,
		Editor:                s,
		Scopes:                st.Scopes,
		TableClickOutside:     st.ClickOutside.Listener(ListenerRecordTable),
		SoftFocusClickOutside: st.ClickOutside.Listener(ListenerSoftFocus),
		DragSelection:         st.Drag,
		Dropdowns:             st.Dropdowns,
		OpenIn:                st.OpenIn,
	})
	require.NoError(t, err)
	return s, c
}

func nameField() recordstore.FieldDefinition {
	return recordstore.FieldDefinition{
		FieldMetadataID: "companies.name",
		Type:            recordstore.FieldTypeText,
		Metadata:        recordstore.FieldMetadata{FieldName: "name", ObjectNameSingular: "company"},
	}
}

func TestState_EditFlowsThroughHandles(t *testing.T) {
	s, c := newSurface(t, cellopen.OpenRecordInRecordPage)
	st := s.state

	intent := c.Open(cellopen.OpenRequest{
		CellPosition:       cellopen.CellPosition{Row: 1, Column: 0},
		RecordID:           "2",
		FieldDefinition:    nameField(),
		ObjectNameSingular: "company",
	})

	assert.Equal(t, cellopen.IntentEdit, intent)
	assert.Equal(t, "2/name", s.editing)
	assert.False(t, st.ClickOutside.Listener(ListenerRecordTable).Activated())
	assert.True(t, st.ClickOutside.Listener(ListenerSoftFocus).Activated())
	assert.False(t, st.Drag.StartEnabled())
	assert.True(t, st.Scopes.Is(cellopen.ScopeCellEditMode))
	assert.Equal(t, "field-input-table-cell-2-companies.name", st.Dropdowns.Active())

	pos, ok := st.Cursor.Position()
	require.True(t, ok)
	assert.Equal(t, cellopen.CellPosition{Row: 1, Column: 0}, pos)

	draft, ok := st.Drafts.Get(DraftKey{RecordID: "2", FieldName: "name"})
	require.True(t, ok)
	assert.Equal(t, "", draft)

	// Closing the editor unwinds dropdown focus to what was focused before.
	assert.Equal(t, "", st.Dropdowns.RestorePrevious())
}

func TestState_NavigateHonoursLivePreference(t *testing.T) {
	s, c := newSurface(t, cellopen.OpenRecordInRecordPage)
	req := cellopen.OpenRequest{
		CellPosition:       cellopen.CellPosition{Row: 0, Column: 0},
		RecordID:           "1",
		FieldDefinition:    nameField(),
		ObjectNameSingular: "company",
	}

	assert.Equal(t, cellopen.IntentNavigate, c.Open(req))
	s.state.OpenIn.Set(cellopen.OpenRecordInSidePanel)
	assert.Equal(t, cellopen.IntentNavigate, c.Open(req))

	assert.Equal(t, []string{"1"}, s.routed)
	assert.Equal(t, []string{"1"}, s.previews)
	assert.Equal(t, Browsing, s.state.Cursor.Mode())
}

func TestState_ActionButtonOpensDrawer(t *testing.T) {
	s, c := newSurface(t, cellopen.OpenRecordInRecordPage)

	intent := c.Open(cellopen.OpenRequest{
		CellPosition:        cellopen.CellPosition{Row: 0, Column: 0},
		RecordID:            "1",
		FieldDefinition:     nameField(),
		IsActionButtonClick: true,
		ObjectNameSingular:  "company",
	})

	assert.Equal(t, cellopen.IntentOpenDrawer, intent)
	id, name, ok := s.state.Viewable.Get()
	require.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, "company", name)
	assert.True(t, s.state.Scopes.Is(ScopeRightDrawer))
	assert.Equal(t, "", s.state.Dropdowns.Active())
}
