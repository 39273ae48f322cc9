package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/docshelper/pkg/executor/tui/overlay"
	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/notebook"
	"github.com/entrhq/docshelper/pkg/types"
)

// model is the notebook view. Structural changes always go through host
// commands so the TUI and the note commands share one code path.
type model struct {
	ctx   context.Context
	app   *host.App
	panel *host.Panel

	// Bubble Tea components
	viewport viewport.Model
	editor   textarea.Model
	spinner  spinner.Model
	palette  *overlay.CommandPalette

	highlighter *highlighter

	// editing is the id of the cell open in the editor, if any.
	editing string

	// running counts commands executing in the background.
	running int

	status    string
	statusErr bool

	copyText func(string) error
	saveFile func(path string, nb *notebook.Notebook) error

	width  int
	height int
	ready  bool
}

// noteEventMsg carries an orchestrator event into the update loop.
type noteEventMsg struct {
	event *types.NoteEvent
}

// commandDoneMsg reports a background command's completion.
type commandDoneMsg struct {
	id  string
	err error
}

func newModel(ctx context.Context, app *host.App, panel *host.Panel) *model {
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cursorStyle

	return &model{
		ctx:         ctx,
		app:         app,
		panel:       panel,
		editor:      editor,
		spinner:     s,
		palette:     overlay.NewCommandPalette(app.Commands().Palette()),
		highlighter: newHighlighter(notebookLanguage(panel.Notebook)),
		status:      "Ready",
		copyText:    clipboard.WriteAll,
		saveFile:    notebook.SaveFile,
	}
}

// Init starts the spinner.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) notebook() *notebook.Notebook {
	return m.panel.Notebook
}

// runAsync executes a command off the update loop. Used for commands that
// block, such as the AI note flow.
func (m *model) runAsync(id string) tea.Cmd {
	m.running++
	ctx := m.ctx
	app := m.app
	return func() tea.Msg {
		return commandDoneMsg{id: id, err: app.Execute(ctx, id)}
	}
}

// runSync executes a quick command inline.
func (m *model) runSync(id string) {
	if err := m.app.Execute(m.ctx, id); err != nil {
		m.setError(err)
		return
	}
	m.syncEditor()
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) setError(err error) {
	m.status = "Error: " + err.Error()
	m.statusErr = true
}

// syncEditor opens the editor when the notebook entered edit mode.
func (m *model) syncEditor() {
	nb := m.notebook()
	if m.editing != "" || nb.Mode() != notebook.ModeEdit {
		return
	}
	cell := nb.ActiveCell()
	if cell == nil {
		nb.SetMode(notebook.ModeCommand)
		return
	}
	m.editing = cell.ID()
	m.editor.SetValue(cell.Source())
	m.editor.Focus()
	m.layout()
}

// closeEditor writes the editor content back to the cell it was opened on.
func (m *model) closeEditor() {
	nb := m.notebook()
	if cell, ok := nb.Lookup(m.editing); ok {
		cell.SetSource(m.editor.Value())
	}
	m.editing = ""
	m.editor.Blur()
	m.editor.Reset()
	nb.SetMode(notebook.ModeCommand)
	m.layout()
}
