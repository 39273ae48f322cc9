// Package host is a small in-process notebook application: a command
// registry, notebook panels with toolbars, and the seven structural notebook
// commands the note orchestrator drives.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Notebook command identifiers.
const (
	CmdInsertCellAbove      = "notebook:insert-cell-above"
	CmdInsertCellBelow      = "notebook:insert-cell-below"
	CmdChangeCellToMarkdown = "notebook:change-cell-to-markdown"
	CmdChangeCellToCode     = "notebook:change-cell-to-code"
	CmdRunCell              = "notebook:run-cell"
	CmdDeleteCell           = "notebook:delete-cell"
	CmdEnterEditMode        = "notebook:enter-edit-mode"
)

var (
	// ErrUnknownCommand is returned when executing an unregistered command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoPanel is returned by notebook commands when no panel is active.
	ErrNoPanel = errors.New("no active notebook panel")
)

// Command is a named, executable action.
type Command struct {
	ID    string
	Label string
	// Palette commands are listed in the command palette.
	Palette bool
	Run     func(ctx context.Context) error
}

// Registry stores commands by id.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Registering an existing id fails.
func (r *Registry) Register(cmd Command) error {
	if cmd.ID == "" || cmd.Run == nil {
		return fmt.Errorf("command must have an id and a run function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.ID]; exists {
		return fmt.Errorf("command %q already registered", cmd.ID)
	}
	r.commands[cmd.ID] = cmd
	return nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[id]
	return ok
}

// Execute runs the command with the given id.
func (r *Registry) Execute(ctx context.Context, id string) error {
	r.mu.RLock()
	cmd, ok := r.commands[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	return cmd.Run(ctx)
}

// Palette returns palette commands sorted by label.
func (r *Registry) Palette() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if cmd.Palette {
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Label < cmds[j].Label })
	return cmds
}
