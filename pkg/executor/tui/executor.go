// Package tui provides the interactive terminal executor: a notebook view
// with the note commands on a toolbar, a command palette and key bindings.
//
// The package is split into:
// - executor.go: Executor implementation and program lifecycle
// - model.go: Core model structure and state
// - update.go: Bubble Tea Update function and key handling
// - view.go: Bubble Tea View function and cell rendering
// - events.go: Note event processing
// - highlight.go: Code cell syntax highlighting
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notes"
	"github.com/entrhq/docshelper/pkg/types"
)

const eventBuffer = 64

// Executor runs the notebook TUI for the app's current panel.
type Executor struct {
	app          *host.App
	orchestrator *notes.Orchestrator
	logger       *logging.Logger
	events       chan *types.NoteEvent
	program      *tea.Program
}

// NewExecutor builds the note orchestrator for app and registers its
// commands. opts are applied before the executor's own logger and event
// emitter.
func NewExecutor(app *host.App, logger *logging.Logger, opts ...notes.Option) (*Executor, error) {
	e := &Executor{
		app:    app,
		logger: logger,
		events: make(chan *types.NoteEvent, eventBuffer),
	}

	opts = append(opts, notes.WithLogger(logger), notes.WithEventEmitter(e.emit))
	e.orchestrator = notes.New(app, opts...)
	if err := e.orchestrator.RegisterCommands(app); err != nil {
		return nil, fmt.Errorf("failed to register note commands: %w", err)
	}
	return e, nil
}

// Orchestrator returns the note orchestrator driving the commands.
func (e *Executor) Orchestrator() *notes.Orchestrator {
	return e.orchestrator
}

// emit queues an event for the UI. It never blocks: the orchestrator may
// call it from inside Update.
func (e *Executor) emit(event *types.NoteEvent) {
	select {
	case e.events <- event:
	default:
		e.logger.Warnf("dropped note event %s", event.Type)
	}
}

// Run starts the TUI and blocks until the user exits or ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	panel := e.app.CurrentPanel()
	if panel == nil {
		return host.ErrNoPanel
	}
	e.logger.Infof("TUI starting on %s", panel.Path)

	m := newModel(ctx, e.app, panel)
	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})
	defer close(done)
	go func() {
		// Forward note events to the TUI
		for {
			select {
			case event := <-e.events:
				e.program.Send(noteEventMsg{event: event})
			case <-done:
				return
			}
		}
	}()

	if _, err := e.program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	e.logger.Infof("TUI exited")
	return nil
}
