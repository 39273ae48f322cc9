package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/docshelper/pkg/harvest"
	"github.com/entrhq/docshelper/pkg/markdown"
	"github.com/entrhq/docshelper/pkg/notebook"
)

const maxOutputLines = 3

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.buildHeader(),
		m.buildToolbar(),
		m.buildBody(),
	}
	if m.editing != "" {
		sections = append(sections, editorStyle.Width(m.width-2).Render(m.editor.View()))
	}
	sections = append(sections, m.buildStatus(), m.buildHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	nb := m.notebook()
	return headerStyle.Render(fmt.Sprintf(" docshelper · %s", m.panel.Name)) +
		tipsStyle.Render(fmt.Sprintf("  %d cells · %s mode", nb.Len(), nb.Mode()))
}

func (m *model) buildToolbar() string {
	var buttons []string
	for _, item := range m.panel.Toolbar.Items() {
		buttons = append(buttons, "["+item.Label+"]")
	}
	if len(buttons) == 0 {
		buttons = append(buttons, " ")
	}
	return toolbarStyle.Width(m.width).Render(" " + strings.Join(buttons, " "))
}

// buildBody shows the palette over the cell list when it is open.
func (m *model) buildBody() string {
	if m.palette.IsActive() {
		return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Top, m.palette.Render(m.width))
	}
	return m.viewport.View()
}

func (m *model) buildStatus() string {
	style := statusBarStyle
	if m.statusErr {
		style = style.Foreground(salmonPink)
	}
	prefix := ""
	if m.running > 0 {
		prefix = m.spinner.View() + " "
	}
	return style.Width(m.width).Render(prefix + m.status)
}

func (m *model) buildHelp() string {
	if m.editing != "" {
		return tipsStyle.Render("  esc to finish editing")
	}
	return tipsStyle.Render("  ↑/↓ move • n note • a AI note • ctrl+p commands • enter edit • r run • m/c cell type • x delete • y copy • s save • q quit")
}

// renderCells renders every cell and returns the line each cell starts on.
func (m *model) renderCells() (string, []int) {
	nb := m.notebook()
	active := nb.ActiveIndex()

	var lines []string
	starts := make([]int, 0, nb.Len())
	for i, cell := range nb.Cells() {
		starts = append(starts, len(lines))

		gutter := "  "
		if i == active {
			gutter = cursorStyle.Render("▌ ")
		}
		for _, line := range m.renderCell(i, cell) {
			lines = append(lines, gutter+line)
		}
		lines = append(lines, "")
	}

	if len(lines) == 0 {
		lines = append(lines, tipsStyle.Render("  Empty notebook. Press n to add a note."))
	}
	return strings.Join(lines, "\n"), starts
}

func (m *model) renderCell(i int, cell *notebook.Cell) []string {
	source := cell.Source()
	label := fmt.Sprintf("[%d] %s", i, cell.Kind())
	if cell.ID() == m.editing {
		label += " (editing)"
	}
	lines := []string{promptStyle.Render(label)}

	switch cell.Kind() {
	case notebook.KindCode:
		if strings.TrimSpace(source) == "" {
			lines = append(lines, promptStyle.Render("(empty)"))
		} else {
			lines = append(lines, strings.Split(m.highlighter.Highlight(source), "\n")...)
		}
		lines = append(lines, renderOutputs(cell.Outputs())...)
	default:
		for _, line := range strings.Split(source, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				lines = append(lines, titleStyle.Render(markdown.Title(line)))
				continue
			}
			lines = append(lines, markdownStyle.Render(line))
		}
	}
	return lines
}

// renderOutputs shows the harvestable text of a code cell, or its error.
func renderOutputs(outputs *notebook.Outputs) []string {
	if outputs == nil || outputs.Len() == 0 {
		return nil
	}

	if last, ok := outputs.At(outputs.Len() - 1).(*notebook.ErrorRecord); ok {
		return []string{errorStyle.Render("✗ " + last.Error())}
	}

	text := harvest.ExtractFrom(outputs)
	if text == "" {
		return nil
	}
	outLines := strings.Split(text, "\n")
	if len(outLines) > maxOutputLines {
		outLines = append(outLines[:maxOutputLines], fmt.Sprintf("… %d more lines", len(outLines)-maxOutputLines))
	}
	rendered := make([]string, 0, len(outLines))
	for _, line := range outLines {
		rendered = append(rendered, outputStyle.Render("→ "+line))
	}
	return rendered
}
