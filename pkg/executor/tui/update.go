package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/notes"
)

const editorHeight = 8

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.ready = true
		}
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// Kernel output arrives without messages; redraw on every tick.
		m.refresh()
		return m, cmd

	case noteEventMsg:
		m.handleNoteEvent(msg.event)
		m.refresh()
		return m, nil

	case commandDoneMsg:
		if m.running > 0 {
			m.running--
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.syncEditor()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case m.palette.IsActive():
			cmd = m.updatePalette(msg)
		case m.editing != "":
			cmd = m.updateEditor(msg)
		default:
			cmd = m.handleKey(msg)
		}
		m.refresh()
		return m, cmd
	}

	return m, nil
}

// handleKey handles keys in command mode.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	nb := m.notebook()

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "ctrl+p":
		m.palette.SetCommands(m.app.Commands().Palette())
		m.palette.Activate()
	case "n":
		m.runSync(notes.CmdInsertNote)
	case "a":
		m.setStatus("Generating AI note...")
		return m.runAsync(notes.CmdAIMarkdown)
	case "r":
		m.runSync(host.CmdRunCell)
	case "enter":
		m.runSync(host.CmdEnterEditMode)
	case "m":
		m.runSync(host.CmdChangeCellToMarkdown)
	case "c":
		m.runSync(host.CmdChangeCellToCode)
	case "x":
		m.runSync(host.CmdDeleteCell)
	case "y":
		cell := nb.ActiveCell()
		if cell == nil {
			m.setStatus("No active cell")
			return nil
		}
		if err := m.copyText(cell.Source()); err != nil {
			m.setError(fmt.Errorf("copy: %w", err))
			return nil
		}
		m.setStatus(fmt.Sprintf("Copied cell %d", nb.ActiveIndex()))
	case "s":
		if err := m.saveFile(m.panel.Path, nb); err != nil {
			m.setError(err)
			return nil
		}
		m.setStatus("Saved " + m.panel.Path)
	}
	return nil
}

func (m *model) updatePalette(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.palette.Deactivate()
	case tea.KeyUp:
		m.palette.SelectPrev()
	case tea.KeyDown:
		m.palette.SelectNext()
	case tea.KeyBackspace:
		m.palette.Backspace()
	case tea.KeySpace:
		m.palette.AppendFilter(" ")
	case tea.KeyRunes:
		m.palette.AppendFilter(string(msg.Runes))
	case tea.KeyEnter:
		selected := m.palette.GetSelected()
		m.palette.Deactivate()
		if selected == nil {
			return nil
		}
		m.setStatus(selected.Label + "...")
		return m.runAsync(selected.ID)
	}
	return nil
}

func (m *model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		m.closeEditor()
		m.setStatus("Cell updated")
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *model) move(delta int) {
	nb := m.notebook()
	if nb.Len() == 0 {
		return
	}
	i := nb.ActiveIndex()
	if i < 0 {
		i = 0
	} else {
		i += delta
	}
	nb.SetActiveIndex(i)
}

// layout sizes the viewport and editor to the window.
func (m *model) layout() {
	if !m.ready {
		return
	}
	// header, toolbar with its rule, status and help lines
	chrome := 5
	if m.editing != "" {
		chrome += editorHeight + 2
	}
	height := m.height - chrome
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.editor.SetWidth(max(m.width-4, 10))
	m.editor.SetHeight(editorHeight)
	m.refresh()
}

// refresh re-renders the cells and keeps the active cell in view.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	content, starts := m.renderCells()
	m.viewport.SetContent(content)

	active := m.notebook().ActiveIndex()
	if active < 0 || active >= len(starts) {
		return
	}
	start := starts[active]
	end := m.viewport.TotalLineCount() - 1
	if active+1 < len(starts) {
		end = starts[active+1] - 1
	}

	switch {
	case start < m.viewport.YOffset:
		m.viewport.SetYOffset(start)
	case end >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(min(start, end-m.viewport.Height+1))
	}
}
