package main

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tedrecords/internal/uistate"
)

func (e *Editor) setupKeyBindings() {
	e.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Ctrl+Q sends DC1 (17) or 'q' depending on terminal
		if event.Key() == tcell.KeyCtrlQ || (event.Rune() == 'q' && event.Modifiers()&tcell.ModCtrl != 0) {
			e.app.Stop()
			return nil
		}
		return event
	})
	e.app.SetMouseCapture(e.captureMouse)

	e.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		key := event.Key()
		rune := event.Rune()
		mod := event.Modifiers()

		if breadcrumbs != nil {
			keyStr := fmt.Sprintf("%v", key)
			if key == tcell.KeyRune {
				keyStr = string(rune)
			}
			modStr := ""
			if mod&tcell.ModCtrl != 0 {
				modStr += "Ctrl+"
			}
			if mod&tcell.ModShift != 0 {
				modStr += "Shift+"
			}
			if mod&tcell.ModAlt != 0 {
				modStr += "Alt+"
			}
			breadcrumbs.RecordKeyboard(keyStr, modStr)
		}

		if !e.state.Scopes.Is(uistate.ScopeTableFocus) {
			return event
		}
		row, col := e.table.GetSelection()

		switch {
		// Ctrl+O sends SI (15) or 'o' depending on terminal
		case key == tcell.KeyCtrlO || (rune == 'o' && mod&tcell.ModCtrl != 0):
			e.openCell(row, col, gestureNavigate, nil)
			return nil
		case key == tcell.KeyEscape:
			e.table.ClearRange()
			return nil
		case key == tcell.KeyRune && rune == '=' && mod&tcell.ModCtrl != 0:
			e.adjustColumnWidth(col, 1)
			return nil
		case key == tcell.KeyRune && rune == '-' && mod&tcell.ModCtrl != 0:
			e.adjustColumnWidth(col, -1)
			return nil
		case key == tcell.KeyBackspace, key == tcell.KeyBackspace2, key == tcell.KeyDelete:
			empty := ""
			e.openCell(row, col, gestureSelect, &empty)
			return nil
		case key == tcell.KeyTab:
			e.table.Select(row, col+1)
			return nil
		case key == tcell.KeyBacktab:
			e.table.Select(row, col-1)
			return nil
		case key == tcell.KeyRune && mod&(tcell.ModCtrl|tcell.ModAlt) == 0:
			if e.vimMode {
				return e.handleVimKey(rune, row, col)
			}
			if unicode.IsPrint(rune) {
				typed := string(rune)
				e.openCell(row, col, gestureSelect, &typed)
				return nil
			}
		}
		return event
	})
}

// handleVimKey maps normal-mode keys; anything unmapped is swallowed.
func (e *Editor) handleVimKey(r rune, row, col int) *tcell.EventKey {
	switch r {
	case 'h':
		e.table.Select(row, col-1)
	case 'l':
		e.table.Select(row, col+1)
	case 'j':
		e.table.Select(row+1, col)
	case 'k':
		e.table.Select(row-1, col)
	case '0':
		e.table.Select(row, 0)
	case '$':
		e.table.Select(row, len(e.fields)-1)
	case 'g':
		e.table.Select(0, col)
	case 'G':
		e.table.Select(e.table.RowCount()-1, col)
	case 'i':
		e.openCell(row, col, gestureSelect, nil)
	case 'o':
		e.openCell(row, col, gestureNavigate, nil)
	case 'x':
		empty := ""
		e.openCell(row, col, gestureSelect, &empty)
	}
	return nil
}

func (e *Editor) adjustColumnWidth(col, delta int) {
	e.table.SetColumnWidth(col, e.table.GetColumnWidth(col)+delta)
	e.table.ensureColumnVisible(col)
}

// captureMouse runs before any widget sees a mouse event. A press outside
// the active field editor commits it; a press outside an open side panel
// closes the panel.
func (e *Editor) captureMouse(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	if breadcrumbs != nil && action != tview.MouseMove {
		breadcrumbs.RecordMouse(mouseActionString(action))
	}
	if action != tview.MouseLeftDown {
		return event, action
	}

	x, y := event.Position()
	listeners := e.state.ClickOutside

	if e.editor.mounted && listeners.Listener(uistate.ListenerSoftFocus).Activated() {
		if !e.editor.textArea.InRect(x, y) {
			e.editor.commit()
		}
		return event, action
	}

	if page, ok := e.visiblePanel(); ok && page != pageRecord {
		if !e.panelContains(page, x, y) {
			e.closePanel(page)
			return nil, action
		}
		return event, action
	}

	if listeners.Listener(uistate.ListenerRecordTable).Activated() && !e.table.InRect(x, y) {
		e.table.ClearRange()
	}
	return event, action
}

func (e *Editor) panelContains(page string, x, y int) bool {
	switch page {
	case pageDrawer:
		return e.drawer.InRect(x, y)
	case pageCommandMenu:
		return e.commandMenu.InRect(x, y)
	}
	return false
}
