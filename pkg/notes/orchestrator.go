// Package notes inserts documentation notes above notebook cells.
//
// A plain note is a Markdown stub the user fills in. An AI note is produced
// by a temporary worker cell: its prompt runs on the kernel, the answer is
// harvested from the worker's outputs and moved into a placeholder cell, and
// the worker is deleted. Every position-dependent step resolves its cell by
// id first, because running and deleting cells shifts the indices of later
// cells.
package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/docshelper/pkg/harvest"
	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/markdown"
	"github.com/entrhq/docshelper/pkg/notebook"
	"github.com/entrhq/docshelper/pkg/prompt"
	"github.com/entrhq/docshelper/pkg/types"
)

// Defaults used when no configuration overrides them.
const (
	DefaultPlaceholder  = "_Generating documentation..._"
	DefaultStubTemplate = "## Notes\n\n- "
)

// State is a step of the AI note flow.
type State string

const (
	StateIdle                State = "idle"
	StatePlaceholderInserted State = "placeholder-inserted"
	StateWorkerInserted      State = "worker-inserted"
	StateWorkerRunning       State = "worker-running"
	StateHarvested           State = "harvested"
	StateTimedOut            State = "timed-out"
	StateConsolidated        State = "consolidated"
	StateLeftForInspection   State = "left-for-inspection"
)

var (
	// ErrBusy is returned when an AI note is requested for a notebook whose
	// previous AI note has not finished.
	ErrBusy = errors.New("an AI note is already in progress for this notebook")

	// ErrPanelChanged is returned when the focused panel changes while an AI
	// note is being inserted.
	ErrPanelChanged = errors.New("focused notebook panel changed")

	// ErrCellMissing is returned when a cell created by the flow was removed
	// before the flow needed it again.
	ErrCellMissing = errors.New("cell no longer in notebook")
)

// Result describes where an AI note request stopped.
type Result struct {
	State         State
	PlaceholderID string
	WorkerID      string
	Text          string
}

// Orchestrator drives note insertion through host commands.
type Orchestrator struct {
	host      host.Host
	harvester *harvest.Harvester
	prompts   *prompt.Builder
	logger    *logging.Logger
	emit      types.EventEmitter

	placeholder  string
	stubTemplate string

	mu   sync.Mutex
	busy map[*notebook.Notebook]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHarvester sets the harvester used to wait for the worker's output.
func WithHarvester(h *harvest.Harvester) Option {
	return func(o *Orchestrator) {
		if h != nil {
			o.harvester = h
		}
	}
}

// WithPromptBuilder sets the builder for worker cell sources.
func WithPromptBuilder(b *prompt.Builder) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.prompts = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEventEmitter registers a receiver for note events.
func WithEventEmitter(emit types.EventEmitter) Option {
	return func(o *Orchestrator) {
		o.emit = emit
	}
}

// WithPlaceholder overrides the text shown while an AI note is generated.
func WithPlaceholder(text string) Option {
	return func(o *Orchestrator) {
		if text != "" {
			o.placeholder = text
		}
	}
}

// WithStubTemplate overrides the source of plain notes.
func WithStubTemplate(stub string) Option {
	return func(o *Orchestrator) {
		if stub != "" {
			o.stubTemplate = stub
		}
	}
}

// New creates an Orchestrator for h.
func New(h host.Host, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		host:         h,
		harvester:    harvest.New(),
		prompts:      prompt.NewBuilder(),
		placeholder:  DefaultPlaceholder,
		stubTemplate: DefaultStubTemplate,
		busy:         make(map[*notebook.Notebook]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InsertNote inserts a Markdown stub above the active cell and enters edit
// mode in it. Without a focused panel it does nothing.
func (o *Orchestrator) InsertNote(ctx context.Context) error {
	p := o.host.CurrentPanel()
	if p == nil || p.Notebook == nil {
		o.logger.Infof("insert note: no active notebook panel")
		return nil
	}
	nb := p.Notebook
	normalizeSelection(nb)

	if err := o.run(ctx, p, host.CmdInsertCellAbove, host.CmdChangeCellToMarkdown); err != nil {
		return o.fail(p, "insert note", err)
	}
	cell := nb.ActiveCell()
	if cell == nil {
		return o.fail(p, "insert note", ErrCellMissing)
	}
	cell.SetSource(o.stubTemplate)

	if err := o.run(ctx, p, host.CmdEnterEditMode); err != nil {
		return o.fail(p, "insert note", err)
	}

	o.logger.Infof("inserted note %s in %s", cell.ID(), p.Name)
	o.notify(types.NewNoteInsertedEvent(p.Name, cell.ID(), o.stubTemplate))
	return nil
}

// InsertAINote documents the active cell with an AI note inserted above it.
//
// It blocks until the worker's output is harvested or the harvester times
// out. The returned Result reports the final state: StateConsolidated when
// the note was written, StateLeftForInspection when the placeholder and the
// worker were left in place, and StateIdle when there was nothing to do.
// A failed host command stops the flow with an error and leaves earlier
// edits in place.
func (o *Orchestrator) InsertAINote(ctx context.Context) (*Result, error) {
	res := &Result{State: StateIdle}

	p := o.host.CurrentPanel()
	if p == nil || p.Notebook == nil {
		o.logger.Infof("ai note: no active notebook panel")
		return res, nil
	}
	nb := p.Notebook
	target := nb.ActiveCell()
	if target == nil {
		o.logger.Infof("ai note: no active cell in %s", p.Name)
		return res, nil
	}

	if !o.acquire(nb) {
		o.logger.Warnf("ai note: %s is busy", p.Name)
		o.notify(types.NewBusyEvent(p.Name))
		return res, ErrBusy
	}
	defer o.release(nb)

	source := o.prompts.Build(target.Source())
	o.logger.Infof("ai note for cell %s in %s", target.ID(), p.Name)

	// Placeholder above the documented cell.
	if err := o.run(ctx, p, host.CmdInsertCellAbove, host.CmdChangeCellToMarkdown); err != nil {
		return res, o.fail(p, "insert placeholder", err)
	}
	placeholder := nb.ActiveCell()
	if placeholder == nil {
		return res, o.fail(p, "insert placeholder", ErrCellMissing)
	}
	placeholder.SetSource(o.placeholder)
	res.PlaceholderID = placeholder.ID()
	o.advance(res, p, types.NewPlaceholderInsertedEvent(p.Name, res.PlaceholderID), StatePlaceholderInserted)

	// Worker directly below the placeholder.
	if err := o.selectCell(nb, res.PlaceholderID); err != nil {
		return res, o.fail(p, "insert worker", err)
	}
	if err := o.run(ctx, p, host.CmdInsertCellBelow, host.CmdChangeCellToCode); err != nil {
		return res, o.fail(p, "insert worker", err)
	}
	worker := nb.ActiveCell()
	if worker == nil {
		return res, o.fail(p, "insert worker", ErrCellMissing)
	}
	worker.SetSource(source)
	res.WorkerID = worker.ID()
	o.advance(res, p, types.NewWorkerInsertedEvent(p.Name, res.WorkerID), StateWorkerInserted)

	if err := o.selectCell(nb, res.WorkerID); err != nil {
		return res, o.fail(p, "run worker", err)
	}
	if err := o.run(ctx, p, host.CmdRunCell); err != nil {
		return res, o.fail(p, "run worker", err)
	}
	o.advance(res, p, types.NewWorkerRunningEvent(p.Name, res.WorkerID), StateWorkerRunning)

	text, ok := o.harvester.Harvest(ctx, worker.Outputs())
	if ok {
		text = markdown.StripFences(text)
	}
	if text == "" {
		o.advance(res, p, types.NewTimedOutEvent(p.Name, res.WorkerID, o.harvester.Timeout()), StateTimedOut)
		return o.leaveForInspection(ctx, res, p)
	}
	res.Text = text
	o.advance(res, p, types.NewHarvestedEvent(p.Name, res.WorkerID, text), StateHarvested)

	if err := o.consolidate(ctx, res, p); err != nil {
		return res, o.fail(p, "consolidate note", err)
	}
	o.logger.Infof("ai note %q written to %s", markdown.Title(text), res.PlaceholderID)
	o.advance(res, p, types.NewConsolidatedEvent(p.Name, res.PlaceholderID, text), StateConsolidated)
	return res, nil
}

// Busy reports whether an AI note is in progress for nb.
func (o *Orchestrator) Busy(nb *notebook.Notebook) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy[nb]
}

// consolidate moves the harvested text into the placeholder and deletes the
// worker, looking both cells up by id.
func (o *Orchestrator) consolidate(ctx context.Context, res *Result, p *host.Panel) error {
	nb := p.Notebook

	placeholder, ok := nb.Lookup(res.PlaceholderID)
	if !ok {
		return fmt.Errorf("placeholder %s: %w", res.PlaceholderID, ErrCellMissing)
	}
	nb.Select(res.PlaceholderID)
	placeholder.SetSource(res.Text)

	if nb.Select(res.WorkerID) {
		if err := o.run(ctx, p, host.CmdDeleteCell); err != nil {
			return err
		}
	} else {
		o.logger.Warnf("worker %s already removed from %s", res.WorkerID, p.Name)
	}

	if err := o.selectCell(nb, res.PlaceholderID); err != nil {
		return err
	}
	return o.run(ctx, p, host.CmdEnterEditMode)
}

func (o *Orchestrator) leaveForInspection(ctx context.Context, res *Result, p *host.Panel) (*Result, error) {
	if !p.Notebook.Select(res.WorkerID) {
		o.logger.Warnf("worker %s no longer in %s", res.WorkerID, p.Name)
	}
	o.logger.Warnf("ai note left for inspection: placeholder %s, worker %s", res.PlaceholderID, res.WorkerID)
	o.advance(res, p, types.NewLeftForInspectionEvent(p.Name, res.PlaceholderID, res.WorkerID), StateLeftForInspection)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// run executes commands in order against the panel the flow started on.
func (o *Orchestrator) run(ctx context.Context, p *host.Panel, ids ...string) error {
	for _, id := range ids {
		if o.host.CurrentPanel() != p {
			return fmt.Errorf("%s: %w", id, ErrPanelChanged)
		}
		if err := o.host.Execute(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		o.logger.Debugf("%s done in %s (active %d of %d)", id, p.Name, p.Notebook.ActiveIndex(), p.Notebook.Len())
	}
	return nil
}

func (o *Orchestrator) selectCell(nb *notebook.Notebook, id string) error {
	if !nb.Select(id) {
		return fmt.Errorf("select %s: %w", id, ErrCellMissing)
	}
	return nil
}

func (o *Orchestrator) advance(res *Result, p *host.Panel, event *types.NoteEvent, state State) {
	res.State = state
	o.logger.Debugf("ai note in %s: %s", p.Name, state)
	o.notify(event)
}

func (o *Orchestrator) fail(p *host.Panel, step string, err error) error {
	err = fmt.Errorf("%s: %w", step, err)
	o.logger.Errorf("%v (panel %s)", err, p.Name)
	o.notify(types.NewErrorEvent(p.Name, err))
	return err
}

func (o *Orchestrator) notify(event *types.NoteEvent) {
	if o.emit != nil {
		o.emit(event)
	}
}

func (o *Orchestrator) acquire(nb *notebook.Notebook) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy[nb] {
		return false
	}
	o.busy[nb] = true
	return true
}

func (o *Orchestrator) release(nb *notebook.Notebook) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.busy, nb)
}

// normalizeSelection selects the first cell when cells exist but none is active.
func normalizeSelection(nb *notebook.Notebook) {
	if nb.ActiveIndex() < 0 && nb.Len() > 0 {
		nb.SetActiveIndex(0)
	}
}
