package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tedrecords/internal/recordstore"
)

// updateStatusForEditMode sets helpful status bar text based on the field's
// type and constraints
func (e *Editor) updateStatusForEditMode(def recordstore.FieldDefinition, text string) {
	var parts []string

	if len(def.Metadata.Options) > 0 {
		parts = append(parts, "ENUM: "+formatEnumValuesWithHighlight(def.Metadata.Options, text))
	} else if hint := getTypeHint(def.Type); hint != "" {
		parts = append(parts, hint)
	}

	if !def.Metadata.Nullable {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, "empty for null")
	}

	if isMultilineField(def) {
		parts = append(parts, "Alt+Enter for newline")
	}
	parts = append(parts, "Enter to save · Tab next · Esc to cancel")

	e.SetStatusMessage(strings.Join(parts, " · "))
}

// formatEnumValuesWithHighlight formats enum values and highlights the
// matching one. At most five values or sixty characters are shown.
func formatEnumValuesWithHighlight(values []string, currentValue string) string {
	if len(values) == 0 {
		return ""
	}

	const (
		maxDisplay = 5
		maxLength  = 60
	)

	var parts []string
	totalLen := 0
	foundMatch := false

	for i, val := range values {
		if i >= maxDisplay {
			parts = append(parts, "...")
			break
		}

		displayVal := val
		if len([]rune(displayVal)) > 20 {
			displayVal = string([]rune(displayVal)[:17]) + "..."
		}

		plainLen := len(displayVal) + 2
		if totalLen+plainLen+2 > maxLength && i > 0 {
			parts = append(parts, "...")
			break
		}

		formatted := "'" + tview.Escape(displayVal) + "'"
		if val == currentValue {
			formatted = "[green]" + formatted + "[black]"
			foundMatch = true
		}
		parts = append(parts, formatted)
		totalLen += plainLen + 2
	}

	joined := strings.Join(parts, ", ")
	if foundMatch || currentValue == "" {
		return joined
	}
	for _, val := range values {
		if strings.HasPrefix(val, currentValue) {
			return joined + " [yellow](typing...)[black]"
		}
	}
	return joined + " [yellow](invalid)[black]"
}

// getTypeHint returns a user-friendly hint for a field type
func getTypeHint(t recordstore.FieldType) string {
	switch t {
	case recordstore.FieldTypeBoolean:
		return "Boolean (true/false, 1/0, t/f)"
	case recordstore.FieldTypeNumber:
		return "Number"
	case recordstore.FieldTypeDateTime:
		return "Date/time (YYYY-MM-DD HH:MM:SS)"
	case recordstore.FieldTypeUUID:
		return "UUID"
	case recordstore.FieldTypeRawJSON:
		return "JSON"
	case recordstore.FieldTypeMultiSelect:
		return "Comma-separated values"
	default:
		return ""
	}
}

func (e *Editor) SetStatusMessage(message string) {
	e.statusBar.SetTextColor(tcell.ColorBlack)
	e.statusBar.SetText(message)
}

func (e *Editor) SetStatusError(message string) {
	e.statusBar.SetTextColor(tcell.ColorRed)
	e.statusBar.SetText(tview.Escape(message))
}

// SetStatusErrorWithSentry shows err and reports it
func (e *Editor) SetStatusErrorWithSentry(err error) {
	e.log.Error(err, "status error")
	CaptureError(err)
	e.SetStatusError(err.Error())
}

// updateStatusWithCellContent shows the database, the active scope and the
// selected cell's field and value.
func (e *Editor) updateStatusWithCellContent() {
	prefix := fmt.Sprintf("%s %s · [::d]%s[::-]", dialectIcons[e.dialect], tview.Escape(e.dbName),
		e.state.Scopes.Current().Scope)

	row, col := e.table.GetSelection()
	recordID, ok := e.recordAt(row)
	if !ok || col < 0 || col >= len(e.fields) {
		e.SetStatusMessage(prefix + " · no records")
		return
	}

	def := e.fields[col]
	text, _ := formatCellValue(e.table.GetCell(row, col), tcell.StyleDefault)
	text = strings.ReplaceAll(text, "\n", "⏎")
	if len([]rune(text)) > 80 {
		text = string([]rune(text)[:79]) + "…"
	}

	var hint string
	switch {
	case col == 0 && !e.store.IsFieldValueEmpty(def, e.table.GetCell(row, col)):
		hint = "Enter to open · click ↗ to view"
	case def.ReadOnly:
		hint = "read-only"
	default:
		hint = "Enter to edit"
	}
	e.SetStatusMessage(fmt.Sprintf("%s · %s %s · [::b]%s[::-]: %s · %s", prefix,
		e.store.ObjectNameSingular(), tview.Escape(recordID), tview.Escape(def.Label), tview.Escape(text), hint))
}
