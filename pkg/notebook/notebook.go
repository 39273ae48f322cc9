package notebook

import (
	"sync"
)

// Mode is the notebook interaction mode.
type Mode string

const (
	ModeCommand Mode = "command"
	ModeEdit    Mode = "edit"
)

// Notebook is an ordered, mutable sequence of cells with an active cursor.
// It is safe for concurrent use.
type Notebook struct {
	mu       sync.RWMutex
	cells    []*Cell
	active   int
	mode     Mode
	Metadata map[string]any
}

// New creates a notebook holding the given cells. The first cell, if any,
// becomes active.
func New(cells ...*Cell) *Notebook {
	nb := &Notebook{
		cells:    append([]*Cell(nil), cells...),
		active:   -1,
		mode:     ModeCommand,
		Metadata: make(map[string]any),
	}
	if len(nb.cells) > 0 {
		nb.active = 0
	}
	return nb
}

// Len returns the number of cells.
func (nb *Notebook) Len() int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return len(nb.cells)
}

// Cells returns a copy of the cell list.
func (nb *Notebook) Cells() []*Cell {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return append([]*Cell(nil), nb.cells...)
}

// Cell returns the cell at index i, or nil when out of range.
func (nb *Notebook) Cell(i int) *Cell {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if i < 0 || i >= len(nb.cells) {
		return nil
	}
	return nb.cells[i]
}

// IndexOf returns the current index of the cell with the given id, or -1.
func (nb *Notebook) IndexOf(id string) int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	for i, c := range nb.cells {
		if c.ID() == id {
			return i
		}
	}
	return -1
}

// Lookup returns the cell with the given id.
func (nb *Notebook) Lookup(id string) (*Cell, bool) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	for _, c := range nb.cells {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// ActiveIndex returns the active cell index, or -1 when there is none.
func (nb *Notebook) ActiveIndex() int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.active
}

// SetActiveIndex moves the cursor, clamping to the valid range.
func (nb *Notebook) SetActiveIndex(i int) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.active = clamp(i, len(nb.cells))
}

// ActiveCell returns the active cell, or nil.
func (nb *Notebook) ActiveCell() *Cell {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if nb.active < 0 || nb.active >= len(nb.cells) {
		return nil
	}
	return nb.cells[nb.active]
}

// Select makes the cell with the given id active. It reports whether the
// cell was found.
func (nb *Notebook) Select(id string) bool {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	for i, c := range nb.cells {
		if c.ID() == id {
			nb.active = i
			return true
		}
	}
	return false
}

// InsertAt inserts cell so that it ends up at index i (clamped to [0, Len]).
func (nb *Notebook) InsertAt(i int, cell *Cell) int {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > len(nb.cells) {
		i = len(nb.cells)
	}
	nb.cells = append(nb.cells, nil)
	copy(nb.cells[i+1:], nb.cells[i:])
	nb.cells[i] = cell
	return i
}

// RemoveAt deletes the cell at index i and returns it. The active index is
// kept in range.
func (nb *Notebook) RemoveAt(i int) (*Cell, bool) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i < 0 || i >= len(nb.cells) {
		return nil, false
	}
	removed := nb.cells[i]
	nb.cells = append(nb.cells[:i], nb.cells[i+1:]...)
	nb.active = clamp(nb.active, len(nb.cells))
	return removed, true
}

// Mode returns the interaction mode.
func (nb *Notebook) Mode() Mode {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.mode
}

// SetMode changes the interaction mode.
func (nb *Notebook) SetMode(mode Mode) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.mode = mode
}

func clamp(i, n int) int {
	if n == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
