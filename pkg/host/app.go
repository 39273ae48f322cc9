package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notebook"
)

// Host is what note commands need from the notebook application.
type Host interface {
	// Execute runs a registered command and returns when the command has
	// finished. For run-cell that means the execution was started, not that
	// its output is complete.
	Execute(ctx context.Context, id string) error

	// CurrentPanel returns the focused notebook panel, or nil.
	CurrentPanel() *Panel
}

// Runner executes code cells. Implementations clear the cell's outputs and
// may keep appending to them after Execute returns.
type Runner interface {
	Execute(ctx context.Context, cell *notebook.Cell) error
}

// App is an in-process Host.
type App struct {
	registry *Registry
	runner   Runner
	logger   *logging.Logger

	mu      sync.RWMutex
	panels  []*Panel
	current *Panel
	hooks   []PanelHook
}

// AppOption configures an App.
type AppOption func(*App)

// WithLogger sets the app logger.
func WithLogger(logger *logging.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates an app with the notebook commands registered. runner may
// be nil, in which case run-cell only works on non-code cells.
func NewApp(runner Runner, opts ...AppOption) *App {
	a := &App{
		registry: NewRegistry(),
		runner:   runner,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.registerNotebookCommands()
	return a
}

// Commands returns the command registry.
func (a *App) Commands() *Registry {
	return a.registry
}

// Execute runs a command by id.
func (a *App) Execute(ctx context.Context, id string) error {
	a.logger.Debugf("execute %s", id)
	if err := a.registry.Execute(ctx, id); err != nil {
		a.logger.Errorf("command %s failed: %v", id, err)
		return err
	}
	return nil
}

// CurrentPanel returns the focused panel.
func (a *App) CurrentPanel() *Panel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Panels returns all open panels.
func (a *App) Panels() []*Panel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Panel(nil), a.panels...)
}

// AddPanel opens nb in a new panel, focuses it, and runs the panel hooks.
func (a *App) AddPanel(name, path string, nb *notebook.Notebook) *Panel {
	p := &Panel{
		Name:     name,
		Path:     path,
		Notebook: nb,
		Toolbar:  NewToolbar(),
	}

	a.mu.Lock()
	a.panels = append(a.panels, p)
	a.current = p
	hooks := append([]PanelHook(nil), a.hooks...)
	a.mu.Unlock()

	for _, hook := range hooks {
		hook(p)
	}
	a.logger.Infof("opened panel %s (%d cells)", name, nb.Len())
	return p
}

// Activate focuses the panel with the given name.
func (a *App) Activate(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.panels {
		if p.Name == name {
			a.current = p
			return true
		}
	}
	return false
}

// OnPanelAdded installs hook for current and future panels.
func (a *App) OnPanelAdded(hook PanelHook) {
	a.mu.Lock()
	a.hooks = append(a.hooks, hook)
	existing := append([]*Panel(nil), a.panels...)
	a.mu.Unlock()

	for _, p := range existing {
		hook(p)
	}
}

func (a *App) registerNotebookCommands() {
	commands := []Command{
		{ID: CmdInsertCellAbove, Label: "Insert Cell Above", Run: a.withNotebook(insertAbove)},
		{ID: CmdInsertCellBelow, Label: "Insert Cell Below", Run: a.withNotebook(insertBelow)},
		{ID: CmdChangeCellToMarkdown, Label: "Change to Markdown Cell Type", Run: a.withNotebook(changeKind(notebook.KindMarkdown))},
		{ID: CmdChangeCellToCode, Label: "Change to Code Cell Type", Run: a.withNotebook(changeKind(notebook.KindCode))},
		{ID: CmdRunCell, Label: "Run Selected Cell", Run: a.withNotebook(a.runActive)},
		{ID: CmdDeleteCell, Label: "Delete Cell", Run: a.withNotebook(deleteActive)},
		{ID: CmdEnterEditMode, Label: "Enter Edit Mode", Run: a.withNotebook(enterEdit)},
	}
	for _, cmd := range commands {
		// Ids are constants; a duplicate is a programming error.
		if err := a.registry.Register(cmd); err != nil {
			panic(err)
		}
	}
}

type notebookAction func(ctx context.Context, nb *notebook.Notebook) error

func (a *App) withNotebook(action notebookAction) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		p := a.CurrentPanel()
		if p == nil || p.Notebook == nil {
			return ErrNoPanel
		}
		return action(ctx, p.Notebook)
	}
}

func insertAbove(_ context.Context, nb *notebook.Notebook) error {
	at := nb.ActiveIndex()
	if at < 0 {
		at = 0
	}
	nb.InsertAt(at, notebook.NewCell(notebook.KindCode, ""))
	nb.SetActiveIndex(at)
	nb.SetMode(notebook.ModeCommand)
	return nil
}

func insertBelow(_ context.Context, nb *notebook.Notebook) error {
	at := nb.ActiveIndex() + 1
	at = nb.InsertAt(at, notebook.NewCell(notebook.KindCode, ""))
	nb.SetActiveIndex(at)
	nb.SetMode(notebook.ModeCommand)
	return nil
}

func changeKind(kind notebook.CellKind) notebookAction {
	return func(_ context.Context, nb *notebook.Notebook) error {
		cell := nb.ActiveCell()
		if cell == nil {
			return fmt.Errorf("change cell type: no active cell")
		}
		cell.SetKind(kind)
		return nil
	}
}

func (a *App) runActive(ctx context.Context, nb *notebook.Notebook) error {
	cell := nb.ActiveCell()
	if cell == nil {
		return fmt.Errorf("run cell: no active cell")
	}
	nb.SetMode(notebook.ModeCommand)
	if cell.Kind() != notebook.KindCode {
		return nil
	}
	if a.runner == nil {
		return fmt.Errorf("run cell: no kernel attached")
	}
	if err := a.runner.Execute(ctx, cell); err != nil {
		return fmt.Errorf("run cell %s: %w", cell.ID(), err)
	}
	return nil
}

func deleteActive(_ context.Context, nb *notebook.Notebook) error {
	if _, ok := nb.RemoveAt(nb.ActiveIndex()); !ok {
		return fmt.Errorf("delete cell: no active cell")
	}
	nb.SetMode(notebook.ModeCommand)
	return nil
}

func enterEdit(_ context.Context, nb *notebook.Notebook) error {
	if nb.ActiveCell() == nil {
		return fmt.Errorf("enter edit mode: no active cell")
	}
	nb.SetMode(notebook.ModeEdit)
	return nil
}
