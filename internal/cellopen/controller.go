package cellopen

import (
	"errors"

	"github.com/go-logr/logr"
)

// ScopeCellEditMode is the hotkey scope of a cell in edit mode.
const ScopeCellEditMode = "cell-edit-mode"

// DefaultCellScope is activated when a request brings no custom scope.
var DefaultCellScope = HotkeyScope{Scope: ScopeCellEditMode}

// Config wires a Controller to its collaborators. All collaborators are
// required.
type Config struct {
	Store                 RecordStore
	Router                Router
	Preview               RecordPreview
	Drawer                Drawer
	Focus                 FocusCoordinator
	Editor                FieldEditor
	Scopes                HotkeyScopeRegistry
	TableClickOutside     ClickOutsideListener
	SoftFocusClickOutside ClickOutsideListener
	DragSelection         DragSelection
	Dropdowns             DropdownFocusRegistry
	OpenIn                OpenRecordInReader

	// DefaultScope overrides DefaultCellScope for this table.
	DefaultScope *HotkeyScope
	Logger       logr.Logger
}

// Controller handles open gestures for one table. Open runs synchronously
// on the UI goroutine and must not be re-entered.
type Controller struct {
	cfg          Config
	defaultScope HotkeyScope
	log          logr.Logger
}

// NewController validates cfg and returns a controller.
func NewController(cfg Config) (*Controller, error) {
	var missing []error
	require := func(ok bool, name string) {
		if !ok {
			missing = append(missing, errors.New(name+" is required"))
		}
	}
	require(cfg.Store != nil, "record store")
	require(cfg.Router != nil, "router")
	require(cfg.Preview != nil, "record preview")
	require(cfg.Drawer != nil, "drawer")
	require(cfg.Focus != nil, "focus coordinator")
	require(cfg.Editor != nil, "field editor")
	require(cfg.Scopes != nil, "hotkey scope registry")
	require(cfg.TableClickOutside != nil, "table click-outside listener")
	require(cfg.SoftFocusClickOutside != nil, "soft focus click-outside listener")
	require(cfg.DragSelection != nil, "drag selection")
	require(cfg.Dropdowns != nil, "dropdown focus registry")
	require(cfg.OpenIn != nil, "open-record-in preference")
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:          cfg,
		defaultScope: DefaultCellScope,
		log:          cfg.Logger,
	}
	if cfg.DefaultScope != nil {
		c.defaultScope = *cfg.DefaultScope
	}
	if c.log.GetSink() == nil {
		c.log = logr.Discard()
	}
	return c, nil
}

// Open performs the effect of an open gesture and returns the intent it
// resolved to. Read-only requests touch nothing and return IntentNone.
func (c *Controller) Open(req OpenRequest) Intent {
	if req.IsReadOnly {
		return IntentNone
	}

	// The gesture that opens the cell must not also count as a click
	// outside the table.
	c.cfg.TableClickOutside.SetActivated(false)

	value := c.cfg.Store.FieldValue(req.RecordID, req.FieldDefinition.Metadata.FieldName)
	isEmpty := c.cfg.Store.IsFieldValueEmpty(req.FieldDefinition, value)

	intent := Decide(req, isEmpty)
	c.log.V(1).Info("open table cell",
		"intent", intent.String(),
		"cell", req.CellPosition.String(),
		"recordID", req.RecordID,
		"field", req.FieldDefinition.Metadata.FieldName,
		"empty", isEmpty)

	switch intent {
	case IntentNavigate:
		c.navigate(req)
	case IntentOpenDrawer:
		c.openDrawer(req)
	case IntentEdit:
		c.edit(req, value)
	}
	return intent
}

func (c *Controller) navigate(req OpenRequest) {
	c.cfg.Focus.ReleaseTableFocus()

	switch openIn := c.cfg.OpenIn.OpenRecordIn(); openIn {
	case OpenRecordInRecordPage:
		c.cfg.Router.NavigateToRecordPage(req.RecordID)
	case OpenRecordInSidePanel:
		c.cfg.Preview.OpenInCommandMenu(req.RecordID, req.ObjectNameSingular)
	default:
		c.log.Info("unknown open-record-in preference, ignoring navigation", "openIn", openIn.String())
	}
}

func (c *Controller) openDrawer(req OpenRequest) {
	c.cfg.Focus.ReleaseTableFocus()
	c.cfg.Drawer.SetViewableRecord(req.RecordID, req.ObjectNameSingular)
	c.cfg.Drawer.OpenViewRecordPage(req.RecordID, req.ObjectNameSingular)
}

// edit enters edit mode. The order of these calls is observable by the
// collaborators and must not change.
func (c *Controller) edit(req OpenRequest, storedValue any) {
	c.cfg.DragSelection.SetStartEnabled(false)

	c.cfg.Editor.Mount(req.FieldDefinition, req.RecordID)
	c.cfg.Focus.MoveEditCursor(req.CellPosition)

	var draft any = storedValue
	if req.InitialValue != nil {
		draft = *req.InitialValue
	}
	c.cfg.Editor.SeedDraft(draft, req.RecordID, req.FieldDefinition)

	c.cfg.SoftFocusClickOutside.SetActivated(true)

	scope := c.defaultScope
	if req.CustomHotkeyScope != nil {
		scope = *req.CustomHotkeyScope
	}
	c.cfg.Scopes.Activate(scope.Scope, scope.CustomScopes)

	c.cfg.Dropdowns.SetActiveAndRemember(DropdownFocusID(
		req.RecordID,
		req.FieldDefinition.FieldMetadataID,
		DropdownContextTableCell,
	))
}
