package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tedrecords/internal/workflow"
)

// newStepInputView renders a step's input tree into a scrollable view.
// Rendering an empty step context is a caller bug and panics before any
// screen is set up.
func newStepInputView(run *workflow.Run, stepID string) *tview.TextView {
	tree := workflow.MustRenderStepInputDetail(run, stepID)

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	view.SetBorder(true).SetTitle(" " + run.Name + " · " + stepID + " input ")
	if tree == "" {
		view.SetText("[::d]No input recorded for this run[::-]")
	} else {
		view.SetText(tview.TranslateANSI(tree))
	}
	return view
}

// showStepInputDetail shows the input tree until Esc or q.
func showStepInputDetail(run *workflow.Run, stepID string) error {
	view := newStepInputView(run, stepID)

	app := tview.NewApplication()
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})
	return app.SetRoot(view, true).Run()
}
