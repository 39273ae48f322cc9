package headless

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/entrhq/docshelper/pkg/harvest"
	"github.com/entrhq/docshelper/pkg/host"
	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notebook"
	"github.com/entrhq/docshelper/pkg/notes"
	"github.com/entrhq/docshelper/pkg/types"
)

const (
	statusSuccess        = "success"
	statusFailed         = "failed"
	statusPartialSuccess = "partial_success"
)

// Executor documents the selected cells of one notebook.
type Executor struct {
	config         *Config
	runner         host.Runner
	noteOptions    []notes.Option
	selector       *CellSelector
	artifactWriter *ArtifactWriter
	logger         *Logger
	fileLogger     *logging.Logger

	summary *ExecutionSummary
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithProgressLogger replaces the stdout progress logger.
func WithProgressLogger(logger *Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithFileLogger sets the session logger handed to the host and the orchestrator.
func WithFileLogger(logger *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.fileLogger = logger
	}
}

// WithNoteOptions passes orchestrator options through, typically the ones
// built from the notes config section.
func WithNoteOptions(opts ...notes.Option) ExecutorOption {
	return func(e *Executor) {
		e.noteOptions = append(e.noteOptions, opts...)
	}
}

// NewExecutor creates a headless executor that runs cells on runner.
func NewExecutor(runner host.Runner, config *Config, opts ...ExecutorOption) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	selector, err := NewCellSelector(config.Selection)
	if err != nil {
		return nil, fmt.Errorf("failed to create cell selector: %w", err)
	}

	// Artifacts live next to the output notebook
	artifactDir := config.Artifacts.OutputDir
	if !filepath.IsAbs(artifactDir) {
		artifactDir = filepath.Join(filepath.Dir(config.OutputPath()), artifactDir)
	}

	e := &Executor{
		config:         config,
		runner:         runner,
		selector:       selector,
		artifactWriter: NewArtifactWriter(artifactDir, config.Artifacts),
		logger:         NewLogger(parseLogLevel(config.Logging.Verbosity)),
		summary: &ExecutionSummary{
			Notebook: config.Notebook,
			Output:   config.OutputPath(),
			Status:   "running",
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run loads the notebook, documents every selected cell, saves the result
// and writes the artifacts.
func (e *Executor) Run(ctx context.Context) error {
	e.summary.StartTime = time.Now()
	e.logger.Header("docshelper headless run")
	e.logger.Infof("Notebook: %s", e.config.Notebook)

	nb, err := notebook.LoadFile(e.config.Notebook)
	if err != nil {
		return e.fail(err)
	}

	app := host.NewApp(e.runner, host.WithLogger(e.fileLogger))
	app.AddPanel(filepath.Base(e.config.Notebook), e.config.Notebook, nb)
	orchestrator := notes.New(app, e.orchestratorOptions()...)

	targets := e.selector.Select(nb)
	for _, i := range e.selector.Unmatched(nb) {
		e.logger.Warningf("index %d is not a non-empty code cell, skipped", i)
	}
	for _, i := range e.selector.Skipped(nb) {
		e.logger.Warningf("index %d matches a skip pattern, skipped", i)
	}
	e.summary.Metrics.CellsSelected = len(targets)
	if len(targets) == 0 {
		e.logger.Warningf("no cells selected")
		return e.finalize(nil)
	}

	e.logger.Section(fmt.Sprintf("Documenting %d cells", len(targets)))
	runErr := e.document(ctx, nb, orchestrator, targets)

	e.logger.Step("Saving " + e.config.OutputPath())
	if err := notebook.SaveFile(e.config.OutputPath(), nb); err != nil {
		return e.fail(errors.Join(runErr, fmt.Errorf("failed to save notebook: %w", err)))
	}
	e.logger.Successf("Saved %d cells", nb.Len())

	return e.finalize(runErr)
}

// document runs the AI note flow on each target, last cell first.
func (e *Executor) document(ctx context.Context, nb *notebook.Notebook, o *notes.Orchestrator, targets []Target) error {
	for i := len(targets) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("execution canceled: %w", err)
		}

		target := targets[i]
		e.logger.Step(fmt.Sprintf("Cell %d", target.Index))

		result := CellResult{CellID: target.CellID, Index: target.Index, State: notes.StateIdle}
		start := time.Now()

		var err error
		if !nb.Select(target.CellID) {
			err = fmt.Errorf("cell %s: %w", target.CellID, notes.ErrCellMissing)
		} else {
			var res *notes.Result
			res, err = o.InsertAINote(ctx)
			if res != nil {
				result.State = res.State
				result.PlaceholderID = res.PlaceholderID
				result.WorkerID = res.WorkerID
				result.Text = res.Text
			}
		}
		result.Duration = time.Since(start)
		if err != nil {
			result.Error = err.Error()
		}

		e.record(result)
		e.logger.CellDone(result)

		if err != nil && (e.config.StopOnError || ctx.Err() != nil) {
			return err
		}
	}
	return nil
}

func (e *Executor) record(result CellResult) {
	e.summary.Cells = append(e.summary.Cells, result)
	switch {
	case result.Error != "":
		e.summary.Metrics.Failed++
	case result.State == notes.StateConsolidated:
		e.summary.Metrics.NotesInserted++
	case result.State == notes.StateLeftForInspection:
		e.summary.Metrics.LeftForInspection++
	}
}

func (e *Executor) orchestratorOptions() []notes.Option {
	opts := append([]notes.Option(nil), e.noteOptions...)
	opts = append(opts, notes.WithLogger(e.fileLogger), notes.WithEventEmitter(e.onEvent))
	if e.config.Timeout > 0 {
		opts = append(opts, notes.WithHarvester(harvest.New(
			harvest.WithTimeout(e.config.Timeout),
			harvest.WithLogger(e.fileLogger),
		)))
	}
	return opts
}

func (e *Executor) onEvent(event *types.NoteEvent) {
	switch event.Type {
	case types.EventTypeWorkerRunning:
		e.logger.Verbosef("worker %s running", event.CellID)
	case types.EventTypeTimedOut:
		e.logger.Verbosef("no output from %s after %v", event.CellID, event.Metadata["timeout"])
	case types.EventTypeError:
		// reported with the cell result
	default:
		e.logger.Debugf("%s %s", event.Type, event.CellID)
	}
}

// Summary returns the execution summary.
func (e *Executor) Summary() *ExecutionSummary {
	return e.summary
}

// fail marks the run failed without per-cell results to report.
func (e *Executor) fail(err error) error {
	e.summary.Status = statusFailed
	e.summary.Error = err.Error()
	e.complete()
	return err
}

// finalize derives the status from the cell results and writes artifacts.
func (e *Executor) finalize(runErr error) error {
	m := e.summary.Metrics
	switch {
	case m.CellsSelected > 0 && m.NotesInserted == 0:
		e.summary.Status = statusFailed
	case runErr != nil || m.Failed > 0 || m.LeftForInspection > 0:
		e.summary.Status = statusPartialSuccess
	default:
		e.summary.Status = statusSuccess
	}
	if runErr != nil {
		e.summary.Error = runErr.Error()
	}

	e.complete()

	if e.summary.Status == statusFailed {
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("no notes inserted for %d selected cells", m.CellsSelected)
	}
	return nil
}

func (e *Executor) complete() {
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(e.summary.StartTime)

	if err := e.artifactWriter.WriteAll(e.summary); err != nil {
		e.logger.Warningf("failed to write artifacts: %v", err)
	}
	e.logger.Summary(e.summary)
}
