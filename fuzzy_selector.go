package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// fuzzyMatch reports whether the runes of search appear in order in text,
// ignoring case, and returns their rune positions in text.
func fuzzyMatch(search, text string) (bool, []int) {
	needle := []rune(strings.ToLower(search))
	var positions []int
	i := 0
	for pos, r := range []rune(strings.ToLower(text)) {
		if i < len(needle) && r == needle[i] {
			positions = append(positions, pos)
			i++
		}
	}
	return i == len(needle), positions
}

// isPrefixMatch reports whether text starts with search, ignoring case.
func isPrefixMatch(search, text string) bool {
	return strings.HasPrefix(strings.ToLower(text), strings.ToLower(search))
}

// highlightMatches wraps the runes at positions in tview color tags.
func highlightMatches(item string, positions []int) string {
	if len(positions) == 0 {
		return tview.Escape(item)
	}
	highlight := make(map[int]bool, len(positions))
	for _, pos := range positions {
		highlight[pos] = true
	}

	var b strings.Builder
	for i, r := range []rune(item) {
		if highlight[i] {
			b.WriteString("[darkgreen::b]")
			b.WriteString(tview.Escape(string(r)))
			b.WriteString("[-::-]")
		} else {
			b.WriteString(tview.Escape(string(r)))
		}
	}
	return b.String()
}

// cleanItems drops blank items and flattens newlines
func cleanItems(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if name := strings.TrimSpace(strings.ReplaceAll(item, "\n", " ")); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

// FuzzySelector is a search field over a dropdown list. The command menu
// uses it to pick a field of the previewed record.
type FuzzySelector struct {
	*tview.Box
	items         []string
	placeholder   string
	searchText    string
	selectedIndex int
	dropdownList  *tview.List
	maxVisible    int
	inputField    *tview.InputField
	innerFlex     *tview.Flex
	dropdownFlex  *tview.Flex

	onSelect func(item string)
	onClose  func()
}

// NewFuzzySelector creates a selector over items.
func NewFuzzySelector(items []string, placeholder string, onSelect func(string), onClose func()) *FuzzySelector {
	fs := &FuzzySelector{
		Box:         tview.NewBox(),
		items:       cleanItems(items),
		placeholder: placeholder,
		maxVisible:  12,
		onSelect:    onSelect,
		onClose:     onClose,
	}

	filtered, matchPositions, _ := fs.calculateFiltered("")
	fs.buildInnerLayout(filtered, matchPositions)
	return fs
}

// SetItems replaces the items and clears the search.
func (fs *FuzzySelector) SetItems(items []string) {
	fs.items = cleanItems(items)
	fs.clearSearchText()
}

// calculateFiltered returns the items matching search, prefix matches
// first, each group in item order. prefixCount is the size of the first
// group.
func (fs *FuzzySelector) calculateFiltered(search string) (filtered []string, matchPositions map[int][]int, prefixCount int) {
	matchPositions = make(map[int][]int)
	if search == "" {
		for i := range fs.items {
			matchPositions[i] = nil
		}
		return fs.items, matchPositions, len(fs.items)
	}

	var prefix, fuzzy []string
	var prefixPos, fuzzyPos [][]int
	for _, item := range fs.items {
		matches, positions := fuzzyMatch(search, item)
		if !matches {
			continue
		}
		if isPrefixMatch(search, item) {
			prefix = append(prefix, item)
			prefixPos = append(prefixPos, positions)
		} else {
			fuzzy = append(fuzzy, item)
			fuzzyPos = append(fuzzyPos, positions)
		}
	}

	filtered = append(prefix, fuzzy...)
	for i, positions := range append(prefixPos, fuzzyPos...) {
		matchPositions[i] = positions
	}
	return filtered, matchPositions, len(prefix)
}

// Draw filters on every frame so typing needs no extra redraw plumbing.
func (fs *FuzzySelector) Draw(screen tcell.Screen) {
	debugLog("drawing fuzzy selector %q\n", fs.searchText)
	fs.Box.DrawForSubclass(screen, fs)

	filtered, matchPositions, _ := fs.calculateFiltered(fs.searchText)
	if fs.innerFlex == nil {
		fs.buildInnerLayout(filtered, matchPositions)
	} else {
		fs.updateDropdownList(filtered, matchPositions)
	}

	x, y, width, height := fs.GetInnerRect()
	fs.innerFlex.SetRect(x, y, width, height)
	fs.innerFlex.Draw(screen)
}

// InputHandler forwards keys to the search field.
func (fs *FuzzySelector) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return fs.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if fs.inputField == nil {
			return
		}
		if handler := fs.inputField.InputHandler(); handler != nil {
			handler(event, setFocus)
		}
	})
}

// MouseHandler highlights hovered items and selects clicked ones.
func (fs *FuzzySelector) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
	return fs.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
		mouseX, mouseY := event.Position()

		if fs.dropdownList != nil && fs.dropdownList.InRect(mouseX, mouseY) {
			filtered, _, _ := fs.calculateFiltered(fs.searchText)
			_, listY, _, _ := fs.dropdownList.GetRect()
			itemIndex := mouseY - listY
			if itemIndex >= 0 && itemIndex < len(filtered) {
				switch action {
				case tview.MouseMove:
					fs.dropdownList.SetCurrentItem(itemIndex)
					fs.selectedIndex = itemIndex
					return true, nil
				case tview.MouseLeftClick:
					fs.choose(filtered[itemIndex])
					return true, nil
				}
			}
		}

		if fs.innerFlex != nil {
			if consumed, capture := fs.innerFlex.MouseHandler()(action, event, setFocus); consumed {
				return true, capture
			}
		}
		return false, nil
	})
}

// Focus delegates to the search field.
func (fs *FuzzySelector) Focus(delegate func(p tview.Primitive)) {
	if fs.inputField != nil {
		delegate(fs.inputField)
	}
}

func (fs *FuzzySelector) HasFocus() bool {
	return fs.inputField != nil && fs.inputField.HasFocus()
}

func (fs *FuzzySelector) choose(item string) {
	if fs.onSelect != nil {
		fs.clearSearchText()
		fs.onSelect(item)
	}
}

func (fs *FuzzySelector) listHeight(filtered []string) int {
	return min(max(len(filtered), 1), fs.maxVisible)
}

func (fs *FuzzySelector) buildInnerLayout(filtered []string, matchPositions map[int][]int) {
	inputField := fs.createInputField()
	fs.createDropdownListWithData(filtered, matchPositions)

	fs.dropdownFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(inputField, 1, 0, true).
		AddItem(fs.dropdownList, fs.listHeight(filtered), 0, false)

	fs.innerFlex = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(fs.dropdownFlex, 0, 1, true)
}

// updateDropdownList swaps the list without touching the search field.
func (fs *FuzzySelector) updateDropdownList(filtered []string, matchPositions map[int][]int) {
	fs.dropdownFlex.RemoveItem(fs.dropdownList)
	fs.createDropdownListWithData(filtered, matchPositions)
	fs.dropdownFlex.AddItem(fs.dropdownList, fs.listHeight(filtered), 0, false)
}

func (fs *FuzzySelector) createInputField() *tview.InputField {
	inputField := tview.NewInputField().
		SetLabel("").
		SetText(fs.searchText).
		SetPlaceholder(fs.placeholder).
		SetFieldWidth(0)
	fs.inputField = inputField

	inputField.SetChangedFunc(func(text string) {
		fs.searchText = text
		fs.selectedIndex = 0
	})

	inputField.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		debugLog("fuzzy selector key: %v\n", event.Key())
		filtered, _, _ := fs.calculateFiltered(fs.searchText)

		switch event.Key() {
		case tcell.KeyEscape:
			if fs.onClose != nil {
				fs.onClose()
			}
			return nil
		case tcell.KeyDown, tcell.KeyTab:
			if len(filtered) > 0 {
				fs.selectedIndex = (fs.selectedIndex + 1) % len(filtered)
				fs.dropdownList.SetCurrentItem(fs.selectedIndex)
			}
			return nil
		case tcell.KeyUp, tcell.KeyBacktab:
			if len(filtered) > 0 {
				fs.selectedIndex = (fs.selectedIndex - 1 + len(filtered)) % len(filtered)
				fs.dropdownList.SetCurrentItem(fs.selectedIndex)
			}
			return nil
		case tcell.KeyEnter:
			if fs.selectedIndex >= 0 && fs.selectedIndex < len(filtered) {
				fs.choose(filtered[fs.selectedIndex])
			}
			return nil
		}
		return event
	})

	return inputField
}

// clearSearchText resets the search and the highlighted item.
func (fs *FuzzySelector) clearSearchText() {
	fs.searchText = ""
	if fs.inputField != nil {
		fs.inputField.SetText("")
	}
	fs.selectedIndex = 0
}

func (fs *FuzzySelector) createDropdownListWithData(filtered []string, matchPositions map[int][]int) {
	fs.dropdownList = tview.NewList().
		SetWrapAround(true).
		ShowSecondaryText(false)

	if len(filtered) == 0 {
		fs.dropdownList.AddItem("No results", "", 0, nil)
		return
	}
	for i, item := range filtered {
		item := item
		fs.dropdownList.AddItem(highlightMatches(item, matchPositions[i]), "", 0, func() {
			fs.choose(item)
		})
	}
	if fs.selectedIndex < len(filtered) {
		fs.dropdownList.SetCurrentItem(fs.selectedIndex)
	}
}
