package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/docshelper/pkg/markdown"
	"github.com/entrhq/docshelper/pkg/notes"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard execution progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed execution information
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// Logger prints run progress for humans. Colors are dropped automatically
// when the writer is not a terminal.
type Logger struct {
	level  LogLevel
	writer io.Writer

	header  lipgloss.Style
	section lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style

	stepCount int
}

// NewLogger creates a logger writing to stdout.
func NewLogger(level LogLevel) *Logger {
	return NewWriterLogger(level, os.Stdout)
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	r := lipgloss.NewRenderer(w)
	return &Logger{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		section: r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#FFB3BA")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (l *Logger) println(style lipgloss.Style, s string) {
	fmt.Fprintln(l.writer, style.Render(s))
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(l.writer)
		l.println(l.header, rule)
		l.println(l.header, "  "+message)
		l.println(l.header, rule)
	}
}

// Section prints a section divider
func (l *Logger) Section(title string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintln(l.writer)
		l.println(l.section, "▶ "+title)
		l.println(l.muted, strings.Repeat("─", 50))
	}
}

// Step prints a numbered step in the execution
func (l *Logger) Step(message string) {
	if l.level >= LogLevelNormal {
		l.stepCount++
		fmt.Fprintln(l.writer)
		l.println(l.section, fmt.Sprintf("[%d] %s", l.stepCount, message))
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.info, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.println(l.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.println(l.failure, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.println(l.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.println(l.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// CellDone logs the outcome of one cell.
func (l *Logger) CellDone(result CellResult) {
	switch {
	case result.Error != "":
		l.Errorf("cell %d: %s", result.Index, result.Error)
	case result.State == notes.StateConsolidated:
		if l.level >= LogLevelNormal {
			l.println(l.success, fmt.Sprintf("  ✓ cell %d: %s", result.Index, markdown.Title(result.Text)))
		}
	case result.State == notes.StateLeftForInspection:
		l.Warningf("cell %d: no output, worker %s left for inspection", result.Index, result.WorkerID)
	default:
		l.Verbosef("cell %d: %s", result.Index, result.State)
	}
}

// Summary prints a final execution summary
func (l *Logger) Summary(summary *ExecutionSummary) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(l.writer)
	l.println(l.header, rule)
	l.println(l.header, "  EXECUTION SUMMARY")
	l.println(l.header, rule)

	fmt.Fprint(l.writer, "  Status: ")
	switch summary.Status {
	case statusSuccess:
		l.println(l.success, "✓ SUCCESS")
	case statusPartialSuccess:
		l.println(l.warning, "⚠ PARTIAL SUCCESS")
	case statusFailed:
		l.println(l.failure, "✗ FAILED")
	default:
		fmt.Fprintln(l.writer, summary.Status)
	}

	fmt.Fprintf(l.writer, "  Notebook: %s\n", summary.Notebook)
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Millisecond))

	m := summary.Metrics
	if m.CellsSelected > 0 {
		fmt.Fprintf(l.writer, "\n  📊 Metrics:\n")
		fmt.Fprintf(l.writer, "    Cells selected: %d\n", m.CellsSelected)
		fmt.Fprintf(l.writer, "    Notes inserted: %d\n", m.NotesInserted)
		if m.LeftForInspection > 0 {
			fmt.Fprintf(l.writer, "    Left for inspection: %d\n", m.LeftForInspection)
		}
		if m.Failed > 0 {
			fmt.Fprintf(l.writer, "    Failed: %d\n", m.Failed)
		}
	}

	if summary.Error != "" {
		fmt.Fprintln(l.writer)
		l.println(l.failure, "  Error Details:")
		l.println(l.failure, "    "+summary.Error)
	}

	l.println(l.header, rule)
	fmt.Fprintln(l.writer)
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}
