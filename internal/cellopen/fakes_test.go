package cellopen

import (
	"fmt"

	"tedrecords/internal/recordstore"
)

// recorder implements every collaborator and logs each call in order.
type recorder struct {
	calls  []string
	values map[string]any // "<recordID>/<field>" -> value
	openIn OpenRecordIn

	scope      HotkeyScope
	dropdownID string
	draft      any
	cursor     *CellPosition
}

func newRecorder() *recorder {
	return &recorder{values: make(map[string]any)}
}

func (r *recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) FieldValue(recordID, fieldName string) any {
	r.record("Store.FieldValue(%s,%s)", recordID, fieldName)
	return r.values[recordID+"/"+fieldName]
}

func (r *recorder) IsFieldValueEmpty(def recordstore.FieldDefinition, value any) bool {
	return recordstore.IsFieldValueEmpty(def, value)
}

func (r *recorder) NavigateToRecordPage(recordID string) {
	r.record("Router.NavigateToRecordPage(%s)", recordID)
}

func (r *recorder) OpenInCommandMenu(recordID, objectNameSingular string) {
	r.record("RecordPreview.OpenInCommandMenu(%s,%s)", recordID, objectNameSingular)
}

func (r *recorder) SetViewableRecord(recordID, objectNameSingular string) {
	r.record("Drawer.SetViewableRecord(%s,%s)", recordID, objectNameSingular)
}

func (r *recorder) OpenViewRecordPage(recordID, objectNameSingular string) {
	r.record("Drawer.OpenViewRecordPage(%s,%s)", recordID, objectNameSingular)
}

func (r *recorder) ReleaseTableFocus() {
	r.record("Focus.ReleaseTableFocus()")
	r.cursor = nil
}

func (r *recorder) MoveEditCursor(pos CellPosition) {
	r.record("Focus.MoveEditCursor%s", pos)
	r.cursor = &pos
}

func (r *recorder) Mount(def recordstore.FieldDefinition, recordID string) {
	r.record("FieldEditor.Mount(%s,%s)", def.FieldMetadataID, recordID)
}

func (r *recorder) SeedDraft(value any, recordID string, def recordstore.FieldDefinition) {
	r.record("FieldEditor.SeedDraft(%v,%s,%s)", value, recordID, def.FieldMetadataID)
	r.draft = value
}

func (r *recorder) Activate(scope string, customScopes map[string]bool) {
	r.record("Scopes.Activate(%s)", scope)
	r.scope = HotkeyScope{Scope: scope, CustomScopes: customScopes}
}

func (r *recorder) SetStartEnabled(enabled bool) {
	r.record("DragSelection.SetStartEnabled(%v)", enabled)
}

func (r *recorder) SetActiveAndRemember(id string) {
	r.record("Dropdowns.SetActiveAndRemember(%s)", id)
	r.dropdownID = id
}

func (r *recorder) OpenRecordIn() OpenRecordIn {
	return r.openIn
}

type listener struct {
	name string
	r    *recorder
}

func (l listener) SetActivated(activated bool) {
	l.r.record("ClickOutside(%s).SetActivated(%v)", l.name, activated)
}

func testConfig(r *recorder) Config {
	return Config{
		Store:                 r,
		Router:                r,
		Preview:               r,
		Drawer:                r,
		Focus:                 r,
		Editor:                r,
		Scopes:                r,
		TableClickOutside:     listener{name: "table", r: r},
		SoftFocusClickOutside: listener{name: "soft-focus", r: r},
		DragSelection:         r,
		Dropdowns:             r,
		OpenIn:                r,
	}
}

func newTestController(r *recorder) *Controller {
	c, err := NewController(testConfig(r))
	if err != nil {
		panic(err)
	}
	return c
}

// effects filters out store reads.
func (r *recorder) effects() []string {
	var out []string
	for _, c := range r.calls {
		if len(c) >= 6 && c[:6] == "Store." {
			continue
		}
		out = append(out, c)
	}
	return out
}
