package cellopen

// Intent is the single effect an open gesture resolves to.
type Intent int

const (
	IntentNone Intent = iota
	IntentNavigate
	IntentOpenDrawer
	IntentEdit
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentNavigate:
		return "navigate"
	case IntentOpenDrawer:
		return "open-drawer"
	case IntentEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Decide resolves a request to an intent. isEmpty is the emptiness of the
// cell's current value.
//
// A populated identifier cell navigates unless the gesture came from its
// action button, which opens the drawer instead. IsNavigating forces
// navigation from any cell. Everything else edits.
func Decide(req OpenRequest, isEmpty bool) Intent {
	if req.IsReadOnly {
		return IntentNone
	}

	populatedIdentifier := req.CellPosition.IsIdentifierColumn() && !isEmpty

	switch {
	case (populatedIdentifier && !req.IsActionButtonClick) || req.IsNavigating:
		return IntentNavigate
	case populatedIdentifier && req.IsActionButtonClick:
		return IntentOpenDrawer
	default:
		return IntentEdit
	}
}
