package types

import (
	"errors"
	"testing"
	"time"
)

func TestNoteEventType(t *testing.T) {
	tests := []struct {
		eventType NoteEventType
		name      string
		expected  string
	}{
		{name: "placeholder_inserted", eventType: EventTypePlaceholderInserted, expected: "placeholder_inserted"},
		{name: "worker_inserted", eventType: EventTypeWorkerInserted, expected: "worker_inserted"},
		{name: "worker_running", eventType: EventTypeWorkerRunning, expected: "worker_running"},
		{name: "harvested", eventType: EventTypeHarvested, expected: "harvested"},
		{name: "timed_out", eventType: EventTypeTimedOut, expected: "timed_out"},
		{name: "consolidated", eventType: EventTypeConsolidated, expected: "consolidated"},
		{name: "left_for_inspection", eventType: EventTypeLeftForInspection, expected: "left_for_inspection"},
		{name: "note_inserted", eventType: EventTypeNoteInserted, expected: "note_inserted"},
		{name: "busy", eventType: EventTypeBusy, expected: "busy"},
		{name: "error", eventType: EventTypeError, expected: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.eventType) != tt.expected {
				t.Errorf("EventType = %v, want %v", tt.eventType, tt.expected)
			}
		})
	}
}

func TestNewHarvestedEvent(t *testing.T) {
	e := NewHarvestedEvent("nb", "w1", "### Summary")
	if e.Type != EventTypeHarvested {
		t.Errorf("Harvested type = %v, want %v", e.Type, EventTypeHarvested)
	}
	if e.Panel != "nb" || e.CellID != "w1" {
		t.Errorf("Harvested panel/cell = %v/%v, want nb/w1", e.Panel, e.CellID)
	}
	if e.Content != "### Summary" {
		t.Errorf("Harvested content = %v, want '### Summary'", e.Content)
	}
	if e.Time.IsZero() {
		t.Error("Harvested time should be set")
	}
	if e.IsTerminal() {
		t.Error("Harvested should not be terminal")
	}
}

func TestNewTimedOutEvent(t *testing.T) {
	e := NewTimedOutEvent("nb", "w1", 30*time.Second)
	if e.Metadata["timeout"] != "30s" {
		t.Errorf("TimedOut timeout = %v, want 30s", e.Metadata["timeout"])
	}
}

func TestNewLeftForInspectionEvent(t *testing.T) {
	e := NewLeftForInspectionEvent("nb", "p1", "w1")
	if e.CellID != "p1" {
		t.Errorf("LeftForInspection cell = %v, want p1", e.CellID)
	}
	if e.Metadata["worker_id"] != "w1" {
		t.Errorf("LeftForInspection worker_id = %v, want w1", e.Metadata["worker_id"])
	}
	if !e.IsTerminal() {
		t.Error("LeftForInspection should be terminal")
	}
}

func TestNewConsolidatedEvent(t *testing.T) {
	e := NewConsolidatedEvent("nb", "p1", "note")
	if !e.IsTerminal() {
		t.Error("Consolidated should be terminal")
	}
	if e.Content != "note" {
		t.Errorf("Consolidated content = %v, want note", e.Content)
	}
}

func TestNewErrorEvent(t *testing.T) {
	err := errors.New("boom")
	e := NewErrorEvent("nb", err)
	if !e.IsErrorEvent() {
		t.Error("expected error event")
	}
	if !errors.Is(e.Error, err) {
		t.Errorf("Error = %v, want %v", e.Error, err)
	}
	if !e.IsTerminal() {
		t.Error("Error should be terminal")
	}
}

func TestWithMetadata(t *testing.T) {
	e := &NoteEvent{Type: EventTypeBusy}
	e.WithMetadata("a", 1).WithMetadata("b", "two")
	if len(e.Metadata) != 2 {
		t.Errorf("Metadata length = %d, want 2", len(e.Metadata))
	}
	if e.Metadata["b"] != "two" {
		t.Errorf("Metadata[b] = %v, want two", e.Metadata["b"])
	}
}

func TestIsTerminal(t *testing.T) {
	nonTerminal := []*NoteEvent{
		NewPlaceholderInsertedEvent("nb", "p"),
		NewWorkerInsertedEvent("nb", "w"),
		NewWorkerRunningEvent("nb", "w"),
		NewTimedOutEvent("nb", "w", time.Second),
		NewNoteInsertedEvent("nb", "n", "## Notes"),
	}
	for _, e := range nonTerminal {
		if e.IsTerminal() {
			t.Errorf("%s should not be terminal", e.Type)
		}
	}
	if !NewBusyEvent("nb").IsTerminal() {
		t.Error("Busy should be terminal")
	}
}
