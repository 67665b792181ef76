package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rivo/tview"

	"tedrecords/internal/uistate"
)

const panelWidth = 56

// recordPagePath is the location of a record's page.
func recordPagePath(objectNameSingular, recordID string) string {
	return fmt.Sprintf("/object/%s/%s", objectNameSingular, recordID)
}

func (e *Editor) setupPanels() {
	e.recordPage = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	e.recordPage.SetBorder(true).SetBorderPadding(1, 1, 2, 2)
	e.recordPage.SetInputCapture(e.panelKeys(pageRecord))

	e.drawer = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	e.drawer.SetBorder(true).SetBorderPadding(0, 0, 1, 1)
	e.drawer.SetInputCapture(e.panelKeys(pageDrawer))

	e.commandMenu = NewFuzzySelector(nil, "Search fields...", e.selectMenuField, func() {
		e.closePanel(pageCommandMenu)
	})
	e.commandMenu.SetBorder(true)
}

// addPanelPages adds the hidden record page, drawer and command menu.
func (e *Editor) addPanelPages() {
	e.pages.AddPage(pageRecord, e.recordPage, true, false)
	e.pages.AddPage(pageDrawer, rightPanel(e.drawer), true, false)
	e.pages.AddPage(pageCommandMenu, rightPanel(e.commandMenu), true, false)
}

// rightPanel docks p to the right edge of the screen.
func rightPanel(p tview.Primitive) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(p, panelWidth, 0, true)
}

func (e *Editor) panelKeys(page string) func(event *tcell.EventKey) *tcell.EventKey {
	return func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape,
			event.Key() == tcell.KeyRune && event.Rune() == 'q':
			e.closePanel(page)
			return nil
		}
		return event
	}
}

// recordFieldsText lists every field of a record, staged edits included.
func (e *Editor) recordFieldsText(recordID string) string {
	var b strings.Builder
	for _, f := range e.fields {
		text, _ := formatCellValue(e.store.FieldValue(recordID, f.Metadata.FieldName), tcell.StyleDefault)
		fmt.Fprintf(&b, "[::b]%s[::-]\n%s\n\n", tview.Escape(f.Label), tview.Escape(text))
	}
	return b.String()
}

// showRecordPage opens the full-screen page of a record.
func (e *Editor) showRecordPage(recordID string) {
	if _, err := e.store.Record(e.ctx, recordID); err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}

	path := recordPagePath(e.store.ObjectNameSingular(), recordID)
	e.recordPage.SetTitle(" " + path + " ")
	e.recordPage.SetText(e.recordFieldsText(recordID)).ScrollToBeginning()

	e.pages.ShowPage(pageRecord)
	e.app.SetFocus(e.recordPage)
	e.state.Scopes.Activate(uistate.ScopeRecordPage, nil)
	if breadcrumbs != nil {
		breadcrumbs.RecordNavigation(uistate.ScopeRecordPage, path)
	}
	e.SetStatusMessage(path + " · Esc to go back")
}

// showDrawer opens the right drawer on the viewable record.
func (e *Editor) showDrawer(recordID, objectNameSingular string) {
	e.drawer.SetTitle(fmt.Sprintf(" View %s ", objectNameSingular))
	e.drawer.SetText(e.recordFieldsText(recordID)).ScrollToBeginning()

	e.pages.ShowPage(pageDrawer)
	e.app.SetFocus(e.drawer)
	e.state.Scopes.Activate(uistate.ScopeRightDrawer, nil)
	e.SetStatusMessage(fmt.Sprintf("Viewing %s %s · Esc to close", objectNameSingular, recordID))
}

// openCommandMenu previews a record in the command menu. Each opening is
// a new menu instance.
func (e *Editor) openCommandMenu(recordID, objectNameSingular string) {
	e.menuRecordID = recordID
	e.menuPageID = uuid.NewString()

	items := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		text, _ := formatCellValue(e.store.FieldValue(recordID, f.Metadata.FieldName), tcell.StyleDefault)
		items = append(items, f.Label+": "+text)
	}
	e.commandMenu.SetItems(items)
	e.commandMenu.SetTitle(fmt.Sprintf(" %s %s ", objectNameSingular, recordID))

	e.pages.ShowPage(pageCommandMenu)
	e.app.SetFocus(e.commandMenu)
	e.state.Scopes.Activate(uistate.ScopeCommandMenu, map[string]bool{uistate.CustomScopeCommandMenu: true})
	e.log.V(1).Info("command menu opened", "pageID", e.menuPageID, "recordID", recordID)
	e.SetStatusMessage(fmt.Sprintf("%s %s · type to find a field · Esc to close", objectNameSingular, recordID))
}

// selectMenuField jumps the table to the chosen field of the previewed
// record.
func (e *Editor) selectMenuField(item string) {
	recordID := e.menuRecordID
	e.closePanel(pageCommandMenu)
	label, _, _ := strings.Cut(item, ": ")
	for row, rec := range e.records {
		if rec.ID != recordID {
			continue
		}
		for col, f := range e.fields {
			if f.Label == label {
				e.table.Select(row, col)
				return
			}
		}
	}
}

// closePanel hides a panel page and returns focus to the table.
func (e *Editor) closePanel(page string) {
	if !e.pages.HasPage(page) {
		return
	}
	e.pages.HidePage(page)
	switch page {
	case pageDrawer:
		e.state.Viewable.Clear()
	case pageCommandMenu:
		e.menuRecordID, e.menuPageID = "", ""
	}

	e.state.ClickOutside.Listener(uistate.ListenerRecordTable).SetActivated(true)
	e.state.Scopes.Activate(uistate.ScopeTableFocus, nil)
	e.app.SetFocus(e.table)
	e.updateStatusWithCellContent()
}

// visiblePanel returns the open panel page, if any.
func (e *Editor) visiblePanel() (string, bool) {
	for _, page := range []string{pageCommandMenu, pageDrawer, pageRecord} {
		if e.isPageVisible(page) {
			return page, true
		}
	}
	return "", false
}

func (e *Editor) isPageVisible(page string) bool {
	for _, name := range e.pages.GetPageNames(true) {
		if name == page {
			return true
		}
	}
	return false
}
