package uistate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropdownFocus_NestedRestore(t *testing.T) {
	d := NewDropdownFocus()
	assert.Equal(t, "", d.Active())

	d.SetActiveAndRemember("field-input-table-cell-r1-companies.name")
	d.SetActiveAndRemember("field-input-table-cell-r1-companies.tags")
	d.SetActiveAndRemember("relation-picker")
	assert.Equal(t, 3, d.Depth())

	assert.Equal(t, "field-input-table-cell-r1-companies.tags", d.RestorePrevious())
	assert.Equal(t, "field-input-table-cell-r1-companies.name", d.RestorePrevious())
	assert.Equal(t, "", d.RestorePrevious())
	assert.Equal(t, "", d.RestorePrevious())
	assert.Equal(t, 0, d.Depth())
}

func TestDropdownFocus_SameIDIsIdempotent(t *testing.T) {
	d := NewDropdownFocus()
	d.SetActiveAndRemember("a")
	d.SetActiveAndRemember("a")
	assert.Equal(t, 1, d.Depth())
	assert.Equal(t, "", d.RestorePrevious())
}
