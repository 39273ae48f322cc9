// Package overlay holds TUI components drawn on top of the notebook view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/docshelper/pkg/host"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mutedGray  = lipgloss.Color("#6B7280")
	paletteBg  = lipgloss.Color("#374151")
)

// CommandPalette lists palette commands and filters them as the user types.
type CommandPalette struct {
	commands         []host.Command
	filteredCommands []host.Command
	selectedIndex    int
	filter           string
	active           bool
}

// NewCommandPalette creates a new command palette
func NewCommandPalette(commands []host.Command) *CommandPalette {
	return &CommandPalette{
		commands:         commands,
		filteredCommands: commands,
	}
}

// SetCommands replaces the listed commands and resets the selection.
func (cp *CommandPalette) SetCommands(commands []host.Command) {
	cp.commands = commands
	cp.selectedIndex = 0
	cp.updateFiltered()
}

// Activate shows the command palette
func (cp *CommandPalette) Activate() {
	cp.active = true
	cp.filter = ""
	cp.selectedIndex = 0
	cp.updateFiltered()
}

// Deactivate hides the command palette
func (cp *CommandPalette) Deactivate() {
	cp.active = false
	cp.filter = ""
	cp.selectedIndex = 0
}

// Filter returns the current filter text.
func (cp *CommandPalette) Filter() string {
	return cp.filter
}

// UpdateFilter updates the filter string and refreshes filtered commands
func (cp *CommandPalette) UpdateFilter(filter string) {
	newFilter := strings.ToLower(filter)
	// Only reset selection if the filter actually changed
	if newFilter != cp.filter {
		cp.filter = newFilter
		cp.selectedIndex = 0
		cp.updateFiltered()
	}
}

// AppendFilter adds typed text to the filter.
func (cp *CommandPalette) AppendFilter(s string) {
	cp.UpdateFilter(cp.filter + s)
}

// Backspace removes the last rune of the filter.
func (cp *CommandPalette) Backspace() {
	if cp.filter == "" {
		return
	}
	runes := []rune(cp.filter)
	cp.UpdateFilter(string(runes[:len(runes)-1]))
}

// updateFiltered ranks label matches before id-only matches so typing part
// of a label surfaces the intended command first.
func (cp *CommandPalette) updateFiltered() {
	needle := strings.TrimSpace(cp.filter)
	if needle == "" {
		cp.filteredCommands = cp.commands
		return
	}

	var labelMatches, idMatches []host.Command
	for _, cmd := range cp.commands {
		switch {
		case strings.Contains(strings.ToLower(cmd.Label), needle):
			labelMatches = append(labelMatches, cmd)
		case strings.Contains(strings.ToLower(cmd.ID), needle):
			idMatches = append(idMatches, cmd)
		}
	}
	cp.filteredCommands = append(labelMatches, idMatches...)

	if cp.selectedIndex >= len(cp.filteredCommands) {
		cp.selectedIndex = 0
	}
}

// SelectNext moves selection down
func (cp *CommandPalette) SelectNext() {
	if len(cp.filteredCommands) == 0 {
		return
	}
	cp.selectedIndex = (cp.selectedIndex + 1) % len(cp.filteredCommands)
}

// SelectPrev moves selection up
func (cp *CommandPalette) SelectPrev() {
	if len(cp.filteredCommands) == 0 {
		return
	}
	cp.selectedIndex--
	if cp.selectedIndex < 0 {
		cp.selectedIndex = len(cp.filteredCommands) - 1
	}
}

// GetSelected returns the currently selected command
func (cp *CommandPalette) GetSelected() *host.Command {
	if cp.selectedIndex < 0 || cp.selectedIndex >= len(cp.filteredCommands) {
		return nil
	}
	return &cp.filteredCommands[cp.selectedIndex]
}

// Render renders the command palette
func (cp *CommandPalette) Render(width int) string {
	if !cp.active {
		return ""
	}

	paletteWidth := width * 80 / 100
	if paletteWidth > 80 {
		paletteWidth = 80
	}
	if paletteWidth < 40 {
		paletteWidth = 40
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(salmonPink).
		Bold(true).
		PaddingLeft(1)
	labelStyle := lipgloss.NewStyle().Foreground(salmonPink)
	idStyle := lipgloss.NewStyle().Foreground(mutedGray)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("> " + cp.filter))
	sb.WriteString("\n")

	if len(cp.filteredCommands) == 0 {
		sb.WriteString(idStyle.Italic(true).PaddingLeft(1).Render("No matching commands"))
		sb.WriteString("\n")
	}

	for i, cmd := range cp.filteredCommands {
		line := labelStyle.Bold(i == cp.selectedIndex).Render(cmd.Label) + "  " + idStyle.Render(cmd.ID)
		if i == cp.selectedIndex {
			line = lipgloss.NewStyle().
				Background(paletteBg).
				Width(paletteWidth - 4).
				Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	paletteStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(salmonPink).
		Width(paletteWidth).
		Padding(0, 1)

	return paletteStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// IsActive returns whether the palette is active
func (cp *CommandPalette) IsActive() bool {
	return cp.active
}
