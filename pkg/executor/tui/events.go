package tui

import (
	"fmt"

	"github.com/entrhq/docshelper/pkg/markdown"
	"github.com/entrhq/docshelper/pkg/types"
)

// handleNoteEvent turns an orchestrator event into the status line.
func (m *model) handleNoteEvent(event *types.NoteEvent) {
	if event == nil {
		return
	}
	if event.IsErrorEvent() && event.Error != nil {
		m.setError(event.Error)
		return
	}
	m.setStatus(statusFor(event))
}

func statusFor(event *types.NoteEvent) string {
	switch event.Type {
	case types.EventTypePlaceholderInserted:
		return "Placeholder inserted"
	case types.EventTypeWorkerInserted:
		return "Worker cell inserted"
	case types.EventTypeWorkerRunning:
		return "Waiting for AI output..."
	case types.EventTypeHarvested:
		return fmt.Sprintf("Harvested %d characters", len(event.Content))
	case types.EventTypeTimedOut:
		return fmt.Sprintf("No output after %v", event.Metadata["timeout"])
	case types.EventTypeConsolidated:
		return "AI note written: " + markdown.Title(event.Content)
	case types.EventTypeLeftForInspection:
		return "Placeholder and worker left for inspection"
	case types.EventTypeNoteInserted:
		return "Markdown note inserted"
	case types.EventTypeBusy:
		return "An AI note is already in progress"
	default:
		return string(event.Type)
	}
}
