package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/docshelper/pkg/markdown"
	"github.com/entrhq/docshelper/pkg/notes"
)

// ArtifactWriter handles writing execution artifacts
type ArtifactWriter struct {
	outputDir string
	config    ArtifactConfig
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string, config ArtifactConfig) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
		config:    config,
	}
}

// WriteAll writes all configured artifact formats
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if !w.config.Enabled {
		return nil
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.config.JSON {
		if err := w.WriteExecutionJSON(summary); err != nil {
			return err
		}
	}

	if w.config.Markdown {
		if err := w.WriteSummaryMarkdown(summary); err != nil {
			return err
		}
	}

	return nil
}

// WriteExecutionJSON writes the full execution summary as JSON
func (w *ArtifactWriter) WriteExecutionJSON(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "execution.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write execution JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# Notebook Documentation Summary\n\n")
	fmt.Fprintf(&md, "**Notebook:** `%s`\n\n", summary.Notebook)
	if summary.Output != "" && summary.Output != summary.Notebook {
		fmt.Fprintf(&md, "**Output:** `%s`\n\n", summary.Output)
	}
	fmt.Fprintf(&md, "**Status:** %s\n\n", summary.Status)
	fmt.Fprintf(&md, "**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Duration:** %s\n\n", summary.Duration)

	md.WriteString("## Result\n\n")
	if summary.Error != "" {
		fmt.Fprintf(&md, "❌ **Error:** %s\n\n", summary.Error)
	} else {
		md.WriteString("✅ **Success**\n\n")
	}

	if len(summary.Cells) > 0 {
		md.WriteString("## Cells\n\n")
		md.WriteString("| Cell | State | Note |\n")
		md.WriteString("|---|---|---|\n")
		for _, cell := range summary.Cells {
			note := markdown.Title(cell.Text)
			if cell.Error != "" {
				note = cell.Error
			}
			fmt.Fprintf(&md, "| %d | %s | %s |\n", cell.Index, cell.State, escapeTableCell(note))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	fmt.Fprintf(&md, "- **Cells Selected:** %d\n", summary.Metrics.CellsSelected)
	fmt.Fprintf(&md, "- **Notes Inserted:** %d\n", summary.Metrics.NotesInserted)
	fmt.Fprintf(&md, "- **Left For Inspection:** %d\n", summary.Metrics.LeftForInspection)
	fmt.Fprintf(&md, "- **Failed:** %d\n", summary.Metrics.Failed)

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ExecutionSummary contains a complete summary of a headless run
type ExecutionSummary struct {
	Notebook  string           `json:"notebook"`
	Output    string           `json:"output"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Duration  time.Duration    `json:"duration"`
	Cells     []CellResult     `json:"cells"`
	Metrics   ExecutionMetrics `json:"metrics"`
}

// CellResult records what happened to one selected cell.
type CellResult struct {
	CellID        string        `json:"cell_id"`
	Index         int           `json:"index"`
	State         notes.State   `json:"state"`
	PlaceholderID string        `json:"placeholder_id,omitempty"`
	WorkerID      string        `json:"worker_id,omitempty"`
	Text          string        `json:"text,omitempty"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// ExecutionMetrics contains execution metrics
type ExecutionMetrics struct {
	CellsSelected     int `json:"cells_selected"`
	NotesInserted     int `json:"notes_inserted"`
	LeftForInspection int `json:"left_for_inspection"`
	Failed            int `json:"failed"`
}
