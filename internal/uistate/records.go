package uistate

import (
	"sync"

	"tedrecords/internal/cellopen"
)

// ViewableRecord is the record shown by the right drawer.
type ViewableRecord struct {
	mu                 sync.RWMutex
	recordID           string
	objectNameSingular string
}

func (v *ViewableRecord) Set(recordID, objectNameSingular string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recordID = recordID
	v.objectNameSingular = objectNameSingular
}

// Get returns the viewable record; ok is false when none is set.
func (v *ViewableRecord) Get() (recordID, objectNameSingular string, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.recordID, v.objectNameSingular, v.recordID != ""
}

func (v *ViewableRecord) Clear() {
	v.Set("", "")
}

// OpenRecordInPreference is the global open-in preference.
type OpenRecordInPreference struct {
	mu    sync.RWMutex
	value cellopen.OpenRecordIn
}

func NewOpenRecordInPreference(value cellopen.OpenRecordIn) *OpenRecordInPreference {
	return &OpenRecordInPreference{value: value}
}

func (p *OpenRecordInPreference) OpenRecordIn() cellopen.OpenRecordIn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

func (p *OpenRecordInPreference) Set(value cellopen.OpenRecordIn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = value
}

// Mode is the externally visible table mode.
type Mode int

const (
	Browsing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "browsing"
}

// EditCursor is the table's logical edit position. Moving it to a new cell
// ends editing of the previous one.
type EditCursor struct {
	mu   sync.RWMutex
	mode Mode
	pos  cellopen.CellPosition
}

func (c *EditCursor) MoveTo(pos cellopen.CellPosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Editing
	c.pos = pos
}

// Release returns the table to Browsing.
func (c *EditCursor) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Browsing
}

func (c *EditCursor) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Position returns the edited cell; ok is false while browsing.
func (c *EditCursor) Position() (pos cellopen.CellPosition, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos, c.mode == Editing
}

// DraftKey addresses the draft of one field of one record.
type DraftKey struct {
	RecordID  string
	FieldName string
}

// Drafts holds uncommitted edit values.
type Drafts struct {
	mu     sync.RWMutex
	values map[DraftKey]any
}

func NewDrafts() *Drafts {
	return &Drafts{values: make(map[DraftKey]any)}
}

func (d *Drafts) Set(key DraftKey, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
}

func (d *Drafts) Get(key DraftKey) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

func (d *Drafts) Delete(key DraftKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, key)
}
