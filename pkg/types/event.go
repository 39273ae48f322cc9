package types

import "time"

// NoteEventType defines the type of event emitted while a note is inserted.
type NoteEventType string

const (
	EventTypePlaceholderInserted NoteEventType = "placeholder_inserted" // EventTypePlaceholderInserted indicates the Markdown placeholder cell was created.
	EventTypeWorkerInserted      NoteEventType = "worker_inserted"      // EventTypeWorkerInserted indicates the temporary code cell holding the prompt was created.
	EventTypeWorkerRunning       NoteEventType = "worker_running"       // EventTypeWorkerRunning indicates the worker cell was sent to the kernel.
	EventTypeHarvested           NoteEventType = "harvested"            // EventTypeHarvested indicates usable text appeared in the worker's outputs.
	EventTypeTimedOut            NoteEventType = "timed_out"            // EventTypeTimedOut indicates no usable text appeared before the deadline.
	EventTypeConsolidated        NoteEventType = "consolidated"         // EventTypeConsolidated indicates the placeholder holds the note and the worker was removed.
	EventTypeLeftForInspection   NoteEventType = "left_for_inspection"  // EventTypeLeftForInspection indicates both cells were kept so the user can inspect the worker.
	EventTypeNoteInserted        NoteEventType = "note_inserted"        // EventTypeNoteInserted indicates a plain Markdown note stub was inserted.
	EventTypeBusy                NoteEventType = "busy"                 // EventTypeBusy indicates an AI note request was refused because one is in flight.
	EventTypeError               NoteEventType = "error"                // EventTypeError indicates a host command failed.
)

// NoteEvent represents a step of a note insertion.
type NoteEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Type indicates the kind of event.
	Type NoteEventType

	// Panel is the name of the notebook panel the note belongs to.
	Panel string

	// CellID identifies the cell the event is about: the placeholder, or the
	// worker for worker events.
	CellID string

	// Content holds the harvested or inserted note text.
	Content string

	// Time is when the event was created.
	Time time.Time
}

func newNoteEvent(t NoteEventType, panel, cellID string) *NoteEvent {
	return &NoteEvent{
		Type:     t,
		Panel:    panel,
		CellID:   cellID,
		Time:     time.Now(),
		Metadata: make(map[string]interface{}),
	}
}

// NewPlaceholderInsertedEvent creates an event for a new placeholder cell.
func NewPlaceholderInsertedEvent(panel, cellID string) *NoteEvent {
	return newNoteEvent(EventTypePlaceholderInserted, panel, cellID)
}

// NewWorkerInsertedEvent creates an event for a new worker cell.
func NewWorkerInsertedEvent(panel, cellID string) *NoteEvent {
	return newNoteEvent(EventTypeWorkerInserted, panel, cellID)
}

// NewWorkerRunningEvent creates an event for a worker sent to the kernel.
func NewWorkerRunningEvent(panel, cellID string) *NoteEvent {
	return newNoteEvent(EventTypeWorkerRunning, panel, cellID)
}

// NewHarvestedEvent creates an event carrying the harvested text.
func NewHarvestedEvent(panel, cellID, text string) *NoteEvent {
	e := newNoteEvent(EventTypeHarvested, panel, cellID)
	e.Content = text
	return e
}

// NewTimedOutEvent creates an event for a harvest that hit its deadline.
func NewTimedOutEvent(panel, cellID string, timeout time.Duration) *NoteEvent {
	return newNoteEvent(EventTypeTimedOut, panel, cellID).WithMetadata("timeout", timeout.String())
}

// NewConsolidatedEvent creates an event for a finished AI note.
func NewConsolidatedEvent(panel, cellID, note string) *NoteEvent {
	e := newNoteEvent(EventTypeConsolidated, panel, cellID)
	e.Content = note
	return e
}

// NewLeftForInspectionEvent creates an event for an AI note that produced no
// text. workerID is recorded in the metadata.
func NewLeftForInspectionEvent(panel, placeholderID, workerID string) *NoteEvent {
	return newNoteEvent(EventTypeLeftForInspection, panel, placeholderID).WithMetadata("worker_id", workerID)
}

// NewNoteInsertedEvent creates an event for an inserted note stub.
func NewNoteInsertedEvent(panel, cellID, stub string) *NoteEvent {
	e := newNoteEvent(EventTypeNoteInserted, panel, cellID)
	e.Content = stub
	return e
}

// NewBusyEvent creates an event for a refused AI note request.
func NewBusyEvent(panel string) *NoteEvent {
	return newNoteEvent(EventTypeBusy, panel, "")
}

// NewErrorEvent creates an error event.
func NewErrorEvent(panel string, err error) *NoteEvent {
	e := newNoteEvent(EventTypeError, panel, "")
	e.Error = err
	return e
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *NoteEvent) WithMetadata(key string, value interface{}) *NoteEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsTerminal reports whether the event ends an AI note request.
func (e *NoteEvent) IsTerminal() bool {
	switch e.Type {
	case EventTypeConsolidated, EventTypeLeftForInspection, EventTypeBusy, EventTypeError:
		return true
	}
	return false
}

// IsErrorEvent returns true if this is an error event.
func (e *NoteEvent) IsErrorEvent() bool {
	return e.Type == EventTypeError
}

// EventEmitter receives note events. Implementations must not block.
type EventEmitter func(*NoteEvent)
