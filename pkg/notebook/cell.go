// Package notebook models a Jupyter notebook as an ordered sequence of cells.
//
// Cells have a stable identity but no stored position: a cell's index is
// only meaningful at the moment it is observed, because inserting or
// deleting a sibling shifts every later cell. Callers that need a position
// after any mutation must look it up again with Notebook.IndexOf.
package notebook

import (
	"sync"

	"github.com/google/uuid"
)

// CellKind is the nbformat cell_type.
type CellKind string

const (
	KindCode     CellKind = "code"
	KindMarkdown CellKind = "markdown"
	KindRaw      CellKind = "raw"
)

// Cell is a single notebook cell.
type Cell struct {
	id      string
	mu      sync.RWMutex
	kind    CellKind
	source  string
	outputs *Outputs

	// executionCount is nil for code cells that never ran.
	executionCount *int

	// Metadata is carried through load/save untouched.
	Metadata map[string]any
}

// NewCell creates a cell with a fresh identity.
func NewCell(kind CellKind, source string) *Cell {
	return newCellWithID(uuid.New().String(), kind, source)
}

func newCellWithID(id string, kind CellKind, source string) *Cell {
	c := &Cell{
		id:       id,
		kind:     kind,
		source:   source,
		Metadata: make(map[string]any),
	}
	if kind == KindCode {
		c.outputs = NewOutputs()
	}
	return c
}

// ID returns the cell's stable identity.
func (c *Cell) ID() string {
	return c.id
}

// Kind returns the cell type.
func (c *Cell) Kind() CellKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kind
}

// SetKind changes the cell type. Converting to code attaches an empty
// output collection; converting away from code drops it.
func (c *Cell) SetKind(kind CellKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind == kind {
		return
	}
	c.kind = kind
	if kind == KindCode {
		c.outputs = NewOutputs()
	} else {
		c.outputs = nil
		c.executionCount = nil
	}
}

// Source returns the cell text.
func (c *Cell) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// SetSource replaces the cell text.
func (c *Cell) SetSource(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

// Outputs returns the output collection of a code cell, or nil.
func (c *Cell) Outputs() *Outputs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outputs
}

// ExecutionCount returns the kernel execution counter of a code cell, if any.
func (c *Cell) ExecutionCount() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.executionCount == nil {
		return 0, false
	}
	return *c.executionCount, true
}

// SetExecutionCount records the execution counter. It is ignored for
// non-code cells.
func (c *Cell) SetExecutionCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind != KindCode {
		return
	}
	c.executionCount = &n
}
