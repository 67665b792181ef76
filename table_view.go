package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tedrecords/internal/cellopen"
)

const (
	nullGlyph    = "NULL"
	actionGlyph  = '↗'
	minCellWidth = 3
)

// Viewport handles horizontal scrolling for the table
type Viewport struct {
	scrollX     int
	screen      tcell.Screen
	tableWidth  int
	screenWidth int
}

// SetDimensions sets the table and screen dimensions for scroll limiting
func (v *Viewport) SetDimensions(tableWidth, screenWidth int) {
	v.tableWidth = tableWidth
	v.screenWidth = screenWidth
	if v.tableWidth <= v.screenWidth {
		v.scrollX = 0
	} else if maxScroll := v.tableWidth - v.screenWidth; v.scrollX > maxScroll {
		v.scrollX = maxScroll
	}
}

// SetContent calls screen.SetContent with x adjusted by scrollX
func (v *Viewport) SetContent(x, y int, ch rune, style tcell.Style) {
	if v.screen != nil {
		v.screen.SetContent(x-v.scrollX, y, ch, nil, style)
	}
}

func (v *Viewport) ScrollLeft() {
	if v.scrollX > 0 {
		v.scrollX--
	}
}

func (v *Viewport) ScrollRight() {
	if v.tableWidth > v.screenWidth && v.scrollX < v.tableWidth-v.screenWidth {
		v.scrollX++
	}
}

// EnsureColumnVisible adjusts scrollX so that [startX, endX) is visible
func (v *Viewport) EnsureColumnVisible(startX, endX, screenWidth int) {
	switch {
	case endX-startX >= screenWidth:
		v.scrollX = startX
	case startX < v.scrollX:
		v.scrollX = startX
	case endX > v.scrollX+screenWidth:
		v.scrollX = endX - screenWidth
	}
	if v.scrollX < 0 {
		v.scrollX = 0
	}
}

// Column is one table header.
type Column struct {
	Name     string
	Width    int
	IsKey    bool
	ReadOnly bool
}

// CellRange is a rectangular selection, inclusive on both ends.
type CellRange struct {
	Start, End cellopen.CellPosition
}

// Contains reports whether the range covers row, col.
func (r CellRange) Contains(row, col int) bool {
	minRow, maxRow := min(r.Start.Row, r.End.Row), max(r.Start.Row, r.End.Row)
	minCol, maxCol := min(r.Start.Column, r.End.Column), max(r.Start.Column, r.End.Column)
	return row >= minRow && row <= maxRow && col >= minCol && col <= maxCol
}

// Single reports whether the range covers one cell.
func (r CellRange) Single() bool {
	return r.Start == r.End
}

// openGesture is how the user asked to open a cell.
type openGesture int

const (
	gestureSelect       openGesture = iota // click or Enter
	gestureActionButton                    // click on the identifier's ↗ button
	gestureNavigate                        // ctrl-click or Ctrl+O
)

func (g openGesture) String() string {
	switch g {
	case gestureActionButton:
		return "action-button"
	case gestureNavigate:
		return "navigate"
	default:
		return "select"
	}
}

// TableView draws records as a bordered grid with a heavy header separator
type TableView struct {
	*tview.Box

	headers   []Column
	data      [][]any
	tableName string

	cellPadding   int
	borderColor   tcell.Color
	headerColor   tcell.Color
	headerBgColor tcell.Color
	vimMode       bool

	selectedRow int
	selectedCol int
	// selection is the drag-selected range; nil when none.
	selection *CellRange
	dragging  bool
	editing   *cellopen.CellPosition

	openFunc            func(row, col int, gesture openGesture)
	selectionChangeFunc func(row, col int)
	dragStartEnabled    func() bool

	resizingColumn   int
	resizeStartX     int
	resizeStartWidth int

	viewport *Viewport
}

// NewTableView creates an empty table view
func NewTableView() *TableView {
	tv := &TableView{
		Box:            tview.NewBox(),
		cellPadding:    1,
		borderColor:    tcell.ColorWhite,
		headerColor:    tcell.ColorWhite,
		headerBgColor:  tcell.ColorDarkSlateGray,
		resizingColumn: -1,
		viewport:       &Viewport{},
	}
	tv.SetBorder(false)
	return tv
}

func (tv *TableView) SetHeaders(headers []Column) *TableView {
	tv.headers = append([]Column(nil), headers...)
	return tv
}

func (tv *TableView) GetHeaders() []Column {
	return tv.headers
}

func (tv *TableView) SetTableName(name string) *TableView {
	tv.tableName = name
	return tv
}

func (tv *TableView) SetVimMode(enabled bool) *TableView {
	tv.vimMode = enabled
	return tv
}

// SetData replaces the rows. The table keeps the slices.
func (tv *TableView) SetData(data [][]any) *TableView {
	tv.data = data
	if tv.selectedRow >= len(data) {
		tv.selectedRow = max(0, len(data)-1)
	}
	return tv
}

// SetRow replaces one row.
func (tv *TableView) SetRow(row int, values []any) {
	if row >= 0 && row < len(tv.data) {
		tv.data[row] = values
	}
}

func (tv *TableView) GetCell(row, col int) any {
	if row >= 0 && row < len(tv.data) && col >= 0 && col < len(tv.data[row]) {
		return tv.data[row][col]
	}
	return nil
}

func (tv *TableView) RowCount() int {
	return len(tv.data)
}

// SetOpenFunc sets the handler for open gestures on a cell.
func (tv *TableView) SetOpenFunc(handler func(row, col int, gesture openGesture)) *TableView {
	tv.openFunc = handler
	return tv
}

func (tv *TableView) SetSelectionChangeFunc(handler func(row, col int)) *TableView {
	tv.selectionChangeFunc = handler
	return tv
}

// SetDragStartEnabled sets the gate consulted when a drag starts.
func (tv *TableView) SetDragStartEnabled(enabled func() bool) *TableView {
	tv.dragStartEnabled = enabled
	return tv
}

// SetEditing marks the cell under the field editor; nil clears it.
func (tv *TableView) SetEditing(pos *cellopen.CellPosition) {
	tv.editing = pos
}

func (tv *TableView) GetSelection() (row, col int) {
	return tv.selectedRow, tv.selectedCol
}

// GetRange returns the drag-selected range, if any.
func (tv *TableView) GetRange() (CellRange, bool) {
	if tv.selection == nil {
		return CellRange{}, false
	}
	return *tv.selection, true
}

func (tv *TableView) ClearRange() {
	tv.selection = nil
	tv.dragging = false
}

// Select moves the cursor to a data cell
func (tv *TableView) Select(row, col int) *TableView {
	if row < 0 || row >= len(tv.data) || col < 0 || col >= len(tv.headers) {
		return tv
	}
	changed := tv.selectedRow != row || tv.selectedCol != col
	tv.selectedRow, tv.selectedCol = row, col
	if changed && tv.selectionChangeFunc != nil {
		tv.selectionChangeFunc(row, col)
	}
	return tv
}

func (tv *TableView) GetColumnWidth(col int) int {
	if col >= 0 && col < len(tv.headers) {
		return tv.headers[col].Width
	}
	return 0
}

func (tv *TableView) SetColumnWidth(col int, width int) *TableView {
	if col >= 0 && col < len(tv.headers) {
		tv.headers[col].Width = max(minCellWidth, width)
	}
	return tv
}

// headerOffset is the number of lines above the first data row.
func (tv *TableView) headerOffset() int {
	if tv.tableName != "" {
		return 4
	}
	return 3
}

// Draw renders the table view
func (tv *TableView) Draw(screen tcell.Screen) {
	tv.Box.DrawForSubclass(screen, tv)
	x, y, width, height := tv.GetInnerRect()
	if len(tv.headers) == 0 || width <= 0 || height <= 0 {
		return
	}

	tv.viewport.screen = screen
	tableWidth := tv.calculateTableWidth()
	tv.viewport.SetDimensions(tableWidth, width)

	currentY := y
	if tv.tableName != "" {
		tv.drawTableNameHeader(x, currentY, tableWidth)
		currentY++
	}
	tv.drawRule(x, currentY, '┌', '─', '┬', '┐')
	currentY++
	if currentY < y+height {
		tv.drawHeaderRow(x, currentY)
		currentY++
	}
	if currentY < y+height {
		tv.drawRule(x, currentY, '┝', '━', '┿', '┥')
		currentY++
	}
	for i := 0; i < len(tv.data) && currentY < y+height-1; i++ {
		tv.drawDataRow(x, currentY, i)
		currentY++
	}
	if currentY < y+height {
		tv.drawRule(x, currentY, '└', '─', '┴', '┘')
	}
}

func (tv *TableView) calculateTableWidth() int {
	width := 1
	for i, header := range tv.headers {
		width += header.Width + 2*tv.cellPadding
		if i < len(tv.headers)-1 {
			width++
		}
	}
	return width + 1
}

func (tv *TableView) drawTableNameHeader(x, y, tableWidth int) {
	style := tcell.StyleDefault.Foreground(tv.headerColor)
	left := []rune(fmt.Sprintf(" %s (%d)", tv.tableName, len(tv.data)))
	var right []rune
	if tv.vimMode {
		right = []rune("vim mode ")
	}
	for i := 0; i < tableWidth; i++ {
		ch := ' '
		switch {
		case i < len(left):
			ch = left[i]
		case i >= tableWidth-len(right):
			ch = right[i-(tableWidth-len(right))]
		}
		tv.viewport.SetContent(x+i, y, ch, style)
	}
}

// drawRule draws a horizontal border line.
func (tv *TableView) drawRule(x, y int, left, fill, junction, right rune) {
	style := tcell.StyleDefault.Foreground(tv.borderColor)
	tv.viewport.SetContent(x, y, left, style)
	pos := x + 1
	for i, header := range tv.headers {
		for j := 0; j < header.Width+2*tv.cellPadding; j++ {
			tv.viewport.SetContent(pos, y, fill, style)
			pos++
		}
		if i < len(tv.headers)-1 {
			tv.viewport.SetContent(pos, y, junction, style)
			pos++
		}
	}
	tv.viewport.SetContent(pos, y, right, style)
}

func (tv *TableView) drawHeaderRow(x, y int) {
	border := tcell.StyleDefault.Foreground(tv.borderColor)
	style := tcell.StyleDefault.Foreground(tv.headerColor).Background(tv.headerBgColor)

	tv.viewport.SetContent(x, y, '│', border)
	pos := x + 1
	for i, header := range tv.headers {
		lead := ' '
		if header.IsKey {
			lead = '✦'
		}
		tv.viewport.SetContent(pos, y, lead, style)
		pos += tv.cellPadding

		textStyle := style.Bold(true)
		if header.ReadOnly {
			textStyle = textStyle.Italic(true)
		}
		for _, ch := range padCellToWidth(header.Name, header.Width) {
			tv.viewport.SetContent(pos, y, ch, textStyle)
			pos++
		}
		tv.viewport.SetContent(pos, y, ' ', style)
		pos += tv.cellPadding

		if i < len(tv.headers)-1 {
			tv.viewport.SetContent(pos, y, '│', border)
			pos++
		}
	}
	tv.viewport.SetContent(pos, y, '│', border)
}

func (tv *TableView) cellStyle(row, col int) tcell.Style {
	style := tcell.StyleDefault
	switch {
	case tv.editing != nil && tv.editing.Row == row && tv.editing.Column == col:
		style = style.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite)
	case row == tv.selectedRow && col == tv.selectedCol:
		style = style.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	case tv.selection != nil && tv.selection.Contains(row, col):
		style = style.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	}
	return style
}

func (tv *TableView) drawDataRow(x, y, rowIdx int) {
	border := tcell.StyleDefault.Foreground(tv.borderColor)
	tv.viewport.SetContent(x, y, '│', border)
	pos := x + 1

	for i, header := range tv.headers {
		style := tv.cellStyle(rowIdx, i)
		for j := 0; j < tv.cellPadding; j++ {
			tv.viewport.SetContent(pos, y, ' ', style)
			pos++
		}

		text, textStyle := formatCellValue(tv.GetCell(rowIdx, i), style)
		content := []rune(padCellToWidth(text, header.Width))
		if i == 0 && text != "" && text != nullGlyph && header.Width > 2 {
			content = []rune(padCellToWidth(text, header.Width-2))
			content = append(content, ' ', actionGlyph)
		}
		for j, ch := range content {
			chStyle := textStyle
			if ch == actionGlyph && j == len(content)-1 {
				chStyle = style.Foreground(tcell.ColorAqua).Bold(true)
			}
			tv.viewport.SetContent(pos, y, ch, chStyle)
			pos++
		}

		for j := 0; j < tv.cellPadding; j++ {
			tv.viewport.SetContent(pos, y, ' ', style)
			pos++
		}
		if i < len(tv.headers)-1 {
			tv.viewport.SetContent(pos, y, '│', border)
			pos++
		}
	}
	tv.viewport.SetContent(pos, y, '│', border)
}

// InputHandler handles keyboard navigation
func (tv *TableView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return tv.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		row, col := tv.selectedRow, tv.selectedCol
		switch event.Key() {
		case tcell.KeyUp:
			row--
		case tcell.KeyDown:
			row++
		case tcell.KeyLeft:
			col--
		case tcell.KeyRight:
			col++
		case tcell.KeyHome:
			col = 0
		case tcell.KeyEnd:
			col = len(tv.headers) - 1
		case tcell.KeyEnter:
			if tv.openFunc != nil && len(tv.data) > 0 {
				tv.openFunc(row, col, gestureSelect)
			}
			return
		default:
			return
		}
		tv.ClearRange()
		tv.Select(row, col)
	})
}

// MouseHandler handles clicks, drags and column resizing
func (tv *TableView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return tv.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		if !tv.InRect(x, y) && tv.resizingColumn < 0 && !tv.dragging {
			return false, nil
		}

		switch action {
		case tview.MouseLeftDown:
			setFocus(tv)
			if sep := tv.GetColumnSeparatorAtPosition(x, y); sep >= 0 {
				tv.resizingColumn = sep
				tv.resizeStartX = x
				tv.resizeStartWidth = tv.headers[sep].Width
				return true, tv
			}
			row, col := tv.GetCellAtPosition(x, y)
			if row < 0 {
				return true, nil
			}
			tv.ClearRange()
			tv.Select(row, col)
			if tv.dragStartEnabled == nil || tv.dragStartEnabled() {
				pos := cellopen.CellPosition{Row: row, Column: col}
				tv.selection = &CellRange{Start: pos, End: pos}
				tv.dragging = true
				return true, tv
			}
			return true, nil

		case tview.MouseMove:
			if tv.resizingColumn >= 0 {
				tv.SetColumnWidth(tv.resizingColumn, tv.resizeStartWidth+x-tv.resizeStartX)
				return true, tv
			}
			if tv.dragging {
				if row, col := tv.GetCellAtPosition(x, y); row >= 0 {
					tv.selection.End = cellopen.CellPosition{Row: row, Column: col}
				}
				return true, tv
			}

		case tview.MouseLeftUp:
			if tv.resizingColumn >= 0 {
				tv.resizingColumn = -1
				return true, nil
			}
			if tv.dragging {
				tv.dragging = false
				if tv.selection != nil && tv.selection.Single() {
					tv.selection = nil
				}
				return true, nil
			}

		case tview.MouseLeftClick:
			if tv.selection != nil {
				// The press ended a range selection, not a click.
				return true, nil
			}
			row, col := tv.GetCellAtPosition(x, y)
			if row < 0 || tv.openFunc == nil {
				return true, nil
			}
			gesture := gestureSelect
			switch {
			case event.Modifiers()&tcell.ModCtrl != 0:
				gesture = gestureNavigate
			case col == 0 && tv.isActionButtonAt(x, row):
				gesture = gestureActionButton
			}
			tv.openFunc(row, col, gesture)
			return true, nil

		case tview.MouseScrollUp:
			tv.Select(tv.selectedRow-1, tv.selectedCol)
			return true, nil
		case tview.MouseScrollDown:
			tv.Select(tv.selectedRow+1, tv.selectedCol)
			return true, nil
		case tview.MouseScrollLeft:
			tv.viewport.ScrollLeft()
			return true, nil
		case tview.MouseScrollRight:
			tv.viewport.ScrollRight()
			return true, nil
		}
		return false, nil
	})
}

// isActionButtonAt reports whether screen column x hits the ↗ button of the
// identifier cell in row.
func (tv *TableView) isActionButtonAt(x, row int) bool {
	text, _ := formatCellValue(tv.GetCell(row, 0), tcell.StyleDefault)
	if text == "" || text == nullGlyph || len(tv.headers) == 0 || tv.headers[0].Width <= 2 {
		return false
	}
	innerX, _, _, _ := tv.GetInnerRect()
	_, endX := tv.GetColumnPosition(0)
	buttonX := innerX + endX - tv.cellPadding - 1 - tv.viewport.scrollX
	return x == buttonX
}

// GetColumnPosition returns the start and end x positions of a column
// relative to the table, padding included
func (tv *TableView) GetColumnPosition(col int) (startX, endX int) {
	if col < 0 || col >= len(tv.headers) {
		return 0, 0
	}
	pos := 1
	for i := 0; i < col; i++ {
		pos += tv.headers[i].Width + 2*tv.cellPadding + 1
	}
	return pos, pos + tv.headers[col].Width + 2*tv.cellPadding
}

// CellScreenRect returns where a cell's content is drawn on screen.
func (tv *TableView) CellScreenRect(row, col int) (x, y, width int) {
	innerX, innerY, _, _ := tv.GetInnerRect()
	startX, _ := tv.GetColumnPosition(col)
	return innerX + startX + tv.cellPadding - tv.viewport.scrollX,
		innerY + tv.headerOffset() + row,
		tv.GetColumnWidth(col)
}

// GetCellAtPosition returns the data row and column for screen
// coordinates, or (-1, -1) outside the data cells
func (tv *TableView) GetCellAtPosition(screenX, screenY int) (row, col int) {
	x, y, width, height := tv.GetInnerRect()
	if screenX < x || screenX >= x+width || screenY < y || screenY >= y+height {
		return -1, -1
	}

	dataRow := screenY - y - tv.headerOffset()
	if dataRow < 0 || dataRow >= len(tv.data) {
		return -1, -1
	}

	relativeX := screenX - x + tv.viewport.scrollX
	currentX := 1
	for i, header := range tv.headers {
		cellWidth := header.Width + 2*tv.cellPadding
		if relativeX >= currentX && relativeX < currentX+cellWidth {
			return dataRow, i
		}
		currentX += cellWidth + 1
	}
	return -1, -1
}

// GetColumnSeparatorAtPosition returns the column left of the separator
// under the mouse in the header row, or -1
func (tv *TableView) GetColumnSeparatorAtPosition(screenX, screenY int) int {
	x, y, width, _ := tv.GetInnerRect()
	if screenX < x || screenX >= x+width || screenY-y != tv.headerOffset()-2 {
		return -1
	}

	relativeX := screenX - x + tv.viewport.scrollX
	currentX := 1
	for i, header := range tv.headers[:max(0, len(tv.headers)-1)] {
		currentX += header.Width + 2*tv.cellPadding
		if relativeX >= currentX-1 && relativeX <= currentX+1 {
			return i
		}
		currentX++
	}
	return -1
}

// ensureColumnVisible scrolls so the column and its borders are visible
func (tv *TableView) ensureColumnVisible(col int) {
	_, _, width, _ := tv.GetInnerRect()
	if col < 0 || col >= len(tv.headers) || width <= 0 {
		return
	}
	startX, endX := tv.GetColumnPosition(col)
	tv.viewport.EnsureColumnVisible(startX-1, endX+1, width)
}

func formatCellValue(value any, style tcell.Style) (string, tcell.Style) {
	switch v := value.(type) {
	case nil:
		return nullGlyph, style.Italic(true).Foreground(tcell.ColorGray)
	case []byte:
		return string(v), style
	case string:
		return v, style
	case int64:
		return strconv.FormatInt(v, 10), style
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), style
	case bool:
		return strconv.FormatBool(v), style
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly), style
		}
		return v.Format(time.RFC3339), style
	default:
		return fmt.Sprint(v), style
	}
}

// padCellToWidth pads text to width runes, truncating with an ellipsis
func padCellToWidth(text string, width int) string {
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\t' {
			runes[i] = ' '
		}
	}
	if len(runes) > width {
		if width >= minCellWidth {
			return string(runes[:width-1]) + "…"
		}
		return string(runes[:max(0, width)])
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}
