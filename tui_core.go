package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-logr/logr"
	"github.com/rivo/tview"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/recordstore"
	"tedrecords/internal/uistate"
)

const (
	DefaultColumnWidth = 12
	MaxColumnWidth     = 40
	DefaultRecordLimit = 500
	settingsDebounce   = 200 * time.Millisecond

	pageTable       = "table"
	pageEditor      = "editor"
	pageRecord      = "record"
	pageDrawer      = "drawer"
	pageCommandMenu = "command-menu"
)

// Editor is the record table application: one table of one database.
type Editor struct {
	app       *tview.Application
	pages     *tview.Pages
	table     *TableView
	statusBar *tview.TextView
	layout    *tview.Flex

	store   *recordstore.Store
	fields  []recordstore.FieldDefinition
	records []recordstore.Record

	state  *uistate.State
	cells  *cellopen.Controller
	editor *fieldEditor

	recordPage  *tview.TextView
	drawer      *tview.TextView
	commandMenu *FuzzySelector
	// menuRecordID is the record previewed in the command menu.
	menuRecordID string
	// menuPageID identifies the command menu instance in logs.
	menuPageID string

	dbName  string
	dialect recordstore.Dialect
	vimMode bool
	log     logr.Logger
	ctx     context.Context
}

// EditorOptions configures newEditor.
type EditorOptions struct {
	DBName  string
	Dialect recordstore.Dialect
	Store   *recordstore.Store
	State   *uistate.State
	VimMode bool
	Limit   int
	Logger  logr.Logger
}

// mouseActionString converts tview.MouseAction to a human-readable string
func mouseActionString(action tview.MouseAction) string {
	switch action {
	case tview.MouseLeftDown:
		return "LeftDown"
	case tview.MouseLeftUp:
		return "LeftUp"
	case tview.MouseLeftClick:
		return "LeftClick"
	case tview.MouseLeftDoubleClick:
		return "LeftDoubleClick"
	case tview.MouseRightClick:
		return "RightClick"
	case tview.MouseScrollUp:
		return "ScrollUp"
	case tview.MouseScrollDown:
		return "ScrollDown"
	case tview.MouseMove:
		return "Move"
	default:
		return fmt.Sprintf("Unknown(%d)", action)
	}
}

// newEditor loads the records and builds every widget. It does not start
// the application.
func newEditor(ctx context.Context, opts EditorOptions) (*Editor, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if opts.State == nil {
		opts.State = uistate.New(cellopen.OpenRecordInRecordPage)
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecordLimit
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}

	records, err := opts.Store.Records(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}
	if breadcrumbs != nil {
		breadcrumbs.RecordDatabase(fmt.Sprintf("load %d %s records", len(records), opts.Store.ObjectNameSingular()))
	}

	e := &Editor{
		app:     tview.NewApplication().EnableMouse(true),
		pages:   tview.NewPages(),
		store:   opts.Store,
		fields:  opts.Store.Fields(),
		records: records,
		state:   opts.State,
		dbName:  opts.DBName,
		dialect: opts.Dialect,
		vimMode: opts.VimMode,
		log:     opts.Logger.WithName("editor"),
		ctx:     ctx,
	}

	e.editor = newFieldEditor(e)
	e.cells, err = cellopen.NewController(cellopen.Config{
		Store:                 e.store,
		Router:                recordRouter{e},
		Preview:               commandMenuPreview{e},
		Drawer:                recordDrawer{e},
		Focus:                 tableFocus{e},
		Editor:                e.editor,
		Scopes:                e.state.Scopes,
		TableClickOutside:     e.state.ClickOutside.Listener(uistate.ListenerRecordTable),
		SoftFocusClickOutside: e.state.ClickOutside.Listener(uistate.ListenerSoftFocus),
		DragSelection:         e.state.Drag,
		Dropdowns:             e.state.Dropdowns,
		OpenIn:                e.state.OpenIn,
		Logger:                e.log,
	})
	if err != nil {
		return nil, err
	}

	e.setupTable()
	e.setupStatusBar()
	e.setupPanels()
	e.setupKeyBindings()

	e.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.table, 0, 1, true).
		AddItem(e.statusBar, 1, 0, false)
	e.pages.AddPage(pageTable, e.layout, true, true)
	e.addPanelPages()

	e.state.Scopes.OnChange(func(scope cellopen.HotkeyScope) {
		if breadcrumbs != nil {
			breadcrumbs.RecordNavigation(scope.Scope, "hotkey scope changed")
		}
		e.log.V(1).Info("hotkey scope", "scope", scope.Scope, "custom", scope.CustomScopes)
	})

	e.app.SetRoot(e.pages, true).SetFocus(e.table)
	e.updateStatusWithCellContent()
	return e, nil
}

func (e *Editor) setupTable() {
	headers := make([]Column, 0, len(e.fields))
	for _, f := range e.fields {
		headers = append(headers, Column{
			Name:     f.Label,
			Width:    DefaultColumnWidth,
			IsKey:    f.Metadata.FieldName == e.store.IDField(),
			ReadOnly: f.ReadOnly,
		})
	}

	e.table = NewTableView().
		SetHeaders(headers).
		SetTableName(e.store.Table()).
		SetVimMode(e.vimMode).
		SetData(e.tableData()).
		SetOpenFunc(func(row, col int, gesture openGesture) {
			e.openCell(row, col, gesture, nil)
		}).
		SetDragStartEnabled(e.state.Drag.StartEnabled).
		SetSelectionChangeFunc(func(row, col int) {
			e.table.ensureColumnVisible(col)
			e.updateStatusWithCellContent()
		})
	e.autoSizeColumns()
}

// tableData renders every record in field order, staged edits included.
func (e *Editor) tableData() [][]any {
	data := make([][]any, len(e.records))
	for i, rec := range e.records {
		data[i] = e.rowValues(rec.ID)
	}
	return data
}

func (e *Editor) rowValues(recordID string) []any {
	values := make([]any, len(e.fields))
	for i, f := range e.fields {
		values[i] = e.store.FieldValue(recordID, f.Metadata.FieldName)
	}
	return values
}

// refreshRecord redraws the row of recordID after an edit.
func (e *Editor) refreshRecord(recordID string) {
	for row, rec := range e.records {
		if rec.ID == recordID {
			e.table.SetRow(row, e.rowValues(recordID))
			return
		}
	}
}

// autoSizeColumns fits each column to its header and first rows.
func (e *Editor) autoSizeColumns() {
	for col, f := range e.fields {
		width := max(len([]rune(f.Label))+1, minCellWidth)
		for row := 0; row < min(e.table.RowCount(), 50); row++ {
			text, _ := formatCellValue(e.table.GetCell(row, col), tcell.StyleDefault)
			width = max(width, len([]rune(text)))
		}
		if col == 0 {
			width += 2 // action button
		}
		e.table.SetColumnWidth(col, min(width, MaxColumnWidth))
	}
}

// recordAt returns the id of the record shown in row.
func (e *Editor) recordAt(row int) (string, bool) {
	if row < 0 || row >= len(e.records) {
		return "", false
	}
	return e.records[row].ID, true
}

func (e *Editor) setupStatusBar() {
	e.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWrap(false)

	e.statusBar.SetBackgroundColor(tcell.ColorLightGray)
	e.statusBar.SetTextColor(tcell.ColorBlack)
	e.statusBar.SetText("Ready")
}

// runEditor connects, opens table narrowed to query when one is given, and
// runs the editor until it quits.
func runEditor(ctx context.Context, config *Config, dbName, table string, query *recordstore.Query,
	state *uistate.State, watchPreference bool, log logr.Logger) error {
	tview.Styles.ContrastBackgroundColor = tcell.ColorBlack

	db, dialect, err := config.connect(ctx)
	if err != nil {
		CaptureError(err)
		return err
	}
	defer db.Close()

	if table == "" {
		tables, err := GetTables(ctx, db, dialect)
		if err != nil {
			CaptureError(err)
			return err
		}
		if table, err = pickTable(tables); err != nil {
			return err
		}
	}

	store, err := recordstore.Open(ctx, db, dialect, table)
	if err != nil {
		CaptureError(err)
		return err
	}
	if query != nil {
		if err := store.Narrow(query); err != nil {
			return err
		}
	}

	editor, err := newEditor(ctx, EditorOptions{
		DBName:  dbName,
		Dialect: dialect,
		Store:   store,
		State:   state,
		VimMode: config.VimMode,
		Limit:   config.Limit,
		Logger:  log,
	})
	if err != nil {
		CaptureError(err)
		return err
	}

	if watchPreference {
		if path, err := getSettingsPath(); err == nil {
			watcher, err := WatchSettings(path, settingsDebounce, log, func(s *Settings) {
				editor.app.QueueUpdateDraw(func() {
					editor.setOpenRecordIn(s.OpenRecordInPreference())
				})
			})
			if err != nil {
				log.Error(err, "live settings reload disabled")
			} else {
				defer watcher.Stop()
			}
		}
	}

	if err := editor.app.Run(); err != nil {
		CaptureError(err)
		return err
	}
	return nil
}

// pickTable runs a one-off fuzzy selector over the database's tables.
func pickTable(tables []string) (string, error) {
	if len(tables) == 0 {
		return "", fmt.Errorf("database has no tables")
	}

	var chosen string
	app := tview.NewApplication().EnableMouse(true)
	picker := NewFuzzySelector(tables, "Open table...", func(table string) {
		chosen = table
		app.Stop()
	}, app.Stop)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(picker, 14, 0, true).
		AddItem(nil, 0, 1, false)

	if err := app.SetRoot(layout, true).SetFocus(picker).Run(); err != nil {
		return "", err
	}
	if chosen == "" {
		return "", fmt.Errorf("no table selected")
	}
	return chosen, nil
}

// setOpenRecordIn applies a changed open-in preference.
func (e *Editor) setOpenRecordIn(openIn cellopen.OpenRecordIn) {
	if e.state.OpenIn.OpenRecordIn() == openIn {
		return
	}
	e.state.OpenIn.Set(openIn)
	e.log.Info("open-record-in preference changed", "openIn", openIn.String())
	e.SetStatusMessage(fmt.Sprintf("Records now open in the %s", openIn))
}
